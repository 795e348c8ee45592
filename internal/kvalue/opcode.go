package kvalue

// Opcode enumerates the bytecode instruction set of spec §4.4.3/§6.2.
// HaveArgument is the boundary: opcodes greater than it carry a 24-bit
// operand.
type Opcode int

const HaveArgument Opcode = 99

const (
	// Stack (no operand)
	OpPopTop Opcode = iota + 1
	OpRotTwo
	OpRotThree
	OpDupTop
	OpDupTopTwo
	OpCopyTop
	OpNop

	// Unary arithmetic
	OpUnaryPositive
	OpUnaryNegative
	OpUnaryInvert
	OpUnaryNot

	// Binary arithmetic / comparison
	OpBinaryAdd
	OpBinarySubtract
	OpBinaryMultiply
	OpBinaryDivide
	OpBinaryFloorDivide
	OpBinaryModulo
	OpBinaryPower
	OpBinaryLShift
	OpBinaryRShift
	OpBinaryAnd
	OpBinaryOr
	OpBinaryXor
	OpCompareEqual
	OpCompareNotEqual
	OpCompareLess
	OpCompareLessEqual
	OpCompareGreater
	OpCompareGreaterEqual

	// Membership / identity
	OpCompareIn
	OpCompareNotIn
	OpCompareIs
	OpCompareIsNot

	// Logical (short-circuit handled via jump opcodes below)
	OpBinaryLogicAnd
	OpBinaryLogicOr

	// Type cast
	OpMemberShipAs

	// Calls & functions, return (no-operand variants)
	OpReturnValue
	OpReturnLastValue

	// Assertions / raise (no-operand marker before payload pop, kept
	// for symmetry with the arg form below)
	OpRaiseVarargs
	OpRaiseCheck

	// ---- opcodes at/above HaveArgument carry a 24-bit operand ----

	// Collection build
	OpBuildList Opcode = iota + 100
	OpBuildMap
	OpBuildSlice
	OpBuildSchemaConfig
	OpStoreMap
	OpStoreSchemaConfig

	// Names & scoping
	OpLoadConst
	OpLoadName
	OpStoreName
	OpStoreGlobal
	OpLoadLocal
	OpStoreLocal
	OpLoadFree
	OpLoadClosure
	OpLoadBuiltin
	OpLoadAttr
	OpStoreAttr

	// Control flow
	OpJumpForward
	OpJumpAbsolute
	OpPopJumpIfTrue
	OpPopJumpIfFalse
	OpJumpIfTrueOrPop
	OpJumpIfFalseOrPop

	// Iteration
	OpGetIter
	OpForIter

	// Comprehensions
	OpListAppend
	OpMapAdd
	OpDeleteItem

	// Calls & functions
	OpCallFunction
	OpMakeFunction
	OpMakeClosure

	// Schema
	OpMakeSchema
	OpBuildSchema
	OpSchemaAttr
	OpSchemaUpdateAttr
	OpSchemaLoadAttr
	OpSchemaNop

	// Import
	OpImportName

	// String formatting
	OpFormatValues
)

// HasArgument reports whether op carries a 24-bit operand.
func HasArgument(op Opcode) bool { return op > HaveArgument }
