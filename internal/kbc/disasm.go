package kbc

import (
	"fmt"
	"strings"

	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// opcodeNames mirrors the opcode table of spec §4.4.3/§6.2 for
// human-readable disassembly. Kept local to kbc: kvalue.Opcode itself
// carries no String() method since the VM's hot path never formats it.
var opcodeNames = map[kvalue.Opcode]string{
	kvalue.OpPopTop: "POP_TOP", kvalue.OpRotTwo: "ROT_TWO", kvalue.OpRotThree: "ROT_THREE",
	kvalue.OpDupTop: "DUP_TOP", kvalue.OpDupTopTwo: "DUP_TOP_TWO", kvalue.OpCopyTop: "COPY_TOP", kvalue.OpNop: "NOP",
	kvalue.OpUnaryPositive: "UNARY_POSITIVE", kvalue.OpUnaryNegative: "UNARY_NEGATIVE",
	kvalue.OpUnaryInvert: "UNARY_INVERT", kvalue.OpUnaryNot: "UNARY_NOT",
	kvalue.OpBinaryAdd: "BINARY_ADD", kvalue.OpBinarySubtract: "BINARY_SUBTRACT",
	kvalue.OpBinaryMultiply: "BINARY_MULTIPLY", kvalue.OpBinaryDivide: "BINARY_DIVIDE",
	kvalue.OpBinaryFloorDivide: "BINARY_FLOOR_DIVIDE", kvalue.OpBinaryModulo: "BINARY_MODULO",
	kvalue.OpBinaryPower: "BINARY_POWER", kvalue.OpBinaryLShift: "BINARY_LSHIFT",
	kvalue.OpBinaryRShift: "BINARY_RSHIFT", kvalue.OpBinaryAnd: "BINARY_AND",
	kvalue.OpBinaryOr: "BINARY_OR", kvalue.OpBinaryXor: "BINARY_XOR",
	kvalue.OpCompareEqual: "COMPARE_EQUAL", kvalue.OpCompareNotEqual: "COMPARE_NOT_EQUAL",
	kvalue.OpCompareLess: "COMPARE_LESS", kvalue.OpCompareLessEqual: "COMPARE_LESS_EQUAL",
	kvalue.OpCompareGreater: "COMPARE_GREATER", kvalue.OpCompareGreaterEqual: "COMPARE_GREATER_EQUAL",
	kvalue.OpCompareIn: "COMPARE_IN", kvalue.OpCompareNotIn: "COMPARE_NOT_IN",
	kvalue.OpCompareIs: "COMPARE_IS", kvalue.OpCompareIsNot: "COMPARE_IS_NOT",
	kvalue.OpBinaryLogicAnd: "BINARY_LOGIC_AND", kvalue.OpBinaryLogicOr: "BINARY_LOGIC_OR",
	kvalue.OpMemberShipAs: "MEMBER_SHIP_AS",
	kvalue.OpReturnValue: "RETURN_VALUE", kvalue.OpReturnLastValue: "RETURN_LAST_VALUE",
	kvalue.OpRaiseVarargs: "RAISE_VARARGS", kvalue.OpRaiseCheck: "RAISE_CHECK",
	kvalue.OpBuildList: "BUILD_LIST", kvalue.OpBuildMap: "BUILD_MAP", kvalue.OpBuildSlice: "BUILD_SLICE",
	kvalue.OpBuildSchemaConfig: "BUILD_SCHEMA_CONFIG", kvalue.OpStoreMap: "STORE_MAP",
	kvalue.OpStoreSchemaConfig: "STORE_SCHEMA_CONFIG",
	kvalue.OpLoadConst: "LOAD_CONST", kvalue.OpLoadName: "LOAD_NAME", kvalue.OpStoreName: "STORE_NAME",
	kvalue.OpStoreGlobal: "STORE_GLOBAL", kvalue.OpLoadLocal: "LOAD_LOCAL", kvalue.OpStoreLocal: "STORE_LOCAL",
	kvalue.OpLoadFree: "LOAD_FREE", kvalue.OpLoadClosure: "LOAD_CLOSURE", kvalue.OpLoadBuiltin: "LOAD_BUILT_IN",
	kvalue.OpLoadAttr: "LOAD_ATTR", kvalue.OpStoreAttr: "STORE_ATTR",
	kvalue.OpJumpForward: "JUMP_FORWARD", kvalue.OpJumpAbsolute: "JUMP_ABSOLUTE",
	kvalue.OpPopJumpIfTrue: "POP_JUMP_IF_TRUE", kvalue.OpPopJumpIfFalse: "POP_JUMP_IF_FALSE",
	kvalue.OpJumpIfTrueOrPop: "JUMP_IF_TRUE_OR_POP", kvalue.OpJumpIfFalseOrPop: "JUMP_IF_FALSE_OR_POP",
	kvalue.OpGetIter: "GET_ITER", kvalue.OpForIter: "FOR_ITER",
	kvalue.OpListAppend: "LIST_APPEND", kvalue.OpMapAdd: "MAP_ADD", kvalue.OpDeleteItem: "DELETE_ITEM",
	kvalue.OpCallFunction: "CALL_FUNCTION", kvalue.OpMakeFunction: "MAKE_FUNCTION", kvalue.OpMakeClosure: "MAKE_CLOSURE",
	kvalue.OpMakeSchema: "MAKE_SCHEMA", kvalue.OpBuildSchema: "BUILD_SCHEMA", kvalue.OpSchemaAttr: "SCHEMA_ATTR",
	kvalue.OpSchemaUpdateAttr: "SCHEMA_UPDATE_ATTR", kvalue.OpSchemaLoadAttr: "SCHEMA_LOAD_ATTR",
	kvalue.OpSchemaNop: "SCHEMA_NOP",
	kvalue.OpImportName: "IMPORT_NAME",
	kvalue.OpFormatValues: "FORMAT_VALUES",
}

func opName(op kvalue.Opcode) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("OP<%d>", op)
}

// Disasm renders a CodeObject's instruction stream as a readable
// listing: one line per instruction, offset, mnemonic, operand (for
// arg-carrying opcodes, resolved against the names/constants table
// where that disambiguates), and source position.
func Disasm(code *kvalue.CodeObject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (pkg %s, file %s)\n", code.Name, code.Pkgpath, code.Filename)
	for i, inst := range code.Instructions {
		fmt.Fprintf(&b, "%4d %-22s", i, opName(inst.Op))
		if kvalue.HasArgument(inst.Op) {
			fmt.Fprintf(&b, " %-6d", inst.Arg)
			if extra := operandHint(code, inst); extra != "" {
				fmt.Fprintf(&b, " (%s)", extra)
			}
		} else {
			b.WriteString("       ")
		}
		fmt.Fprintf(&b, "  %s:%d:%d\n", inst.Pos.Filename, inst.Pos.Line, inst.Pos.Column)
	}
	return b.String()
}

func operandHint(code *kvalue.CodeObject, inst kvalue.Instruction) string {
	idx := int(inst.Arg)
	switch inst.Op {
	case kvalue.OpLoadConst:
		if idx >= 0 && idx < len(code.Constants) {
			return code.Constants[idx].String()
		}
	case kvalue.OpLoadName, kvalue.OpStoreName, kvalue.OpStoreGlobal, kvalue.OpLoadLocal, kvalue.OpStoreLocal,
		kvalue.OpLoadFree, kvalue.OpLoadClosure, kvalue.OpLoadBuiltin, kvalue.OpLoadAttr, kvalue.OpStoreAttr,
		kvalue.OpImportName:
		if idx >= 0 && idx < len(code.Names) {
			return code.Names[idx]
		}
	}
	return ""
}
