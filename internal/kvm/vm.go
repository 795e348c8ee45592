// Package kvm implements the bytecode virtual machine of spec §4.4: the
// push-down frame stack, opcode dispatcher, calling convention and
// import loader. It implements kschema.Runner so the schema runtime
// (component E) can execute a body/check CodeObject against an
// in-progress instance without importing this package.
package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/klazy"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// PackageLoader resolves a user package's top-level CodeObject for
// IMPORT_NAME (spec §4.4.5); supplied by the host (cmd/kclvm), since
// compiling a package is out of this engine's scope.
type PackageLoader func(pkgpath string) (*kvalue.CodeObject, error)

// VM is the engine's mutable runtime state: one VM instance corresponds
// to one running program (spec §9 "Global mutable state" made explicit
// and instance-scoped so two programs never collide).
type VM struct {
	globals  map[string]*kvalue.Dict
	modules  map[string]*kvalue.Module
	builtins map[string]*kvalue.BuiltinFunction
	plugins  map[string]*kvalue.BuiltinFunction
	registry *kschema.Registry
	loader   PackageLoader

	pkgpathStack []string
	warnings     []*kerrors.Diagnostic

	resolvers map[*kvalue.Schema]*klazy.Resolver

	// Trace, when set, is invoked once per executed instruction (used by
	// cmd/kclvm's --trace flag); never set on the hot path by default.
	Trace func(pkgpath string, inst kvalue.Instruction)
}

func New(registry *kschema.Registry) *VM {
	return &VM{
		globals:   make(map[string]*kvalue.Dict),
		modules:   make(map[string]*kvalue.Module),
		builtins:  make(map[string]*kvalue.BuiltinFunction),
		plugins:   make(map[string]*kvalue.BuiltinFunction),
		registry:  registry,
		resolvers: make(map[*kvalue.Schema]*klazy.Resolver),
	}
}

// RegisterBuiltin adds a host function to the builtin/system module
// registry consulted by LOAD_BUILT_IN and IMPORT_NAME (spec §4.4.5).
func (vm *VM) RegisterBuiltin(name string, fn kvalue.NativeFunc) {
	vm.builtins[name] = &kvalue.BuiltinFunction{Name: name, Fn: fn}
}

// RegisterPlugin adds a host function to the plugin registry.
func (vm *VM) RegisterPlugin(name string, fn kvalue.NativeFunc) {
	vm.plugins[name] = &kvalue.BuiltinFunction{Name: name, Fn: fn}
}

// SetLoader installs the user-package resolver used by IMPORT_NAME.
func (vm *VM) SetLoader(l PackageLoader) { vm.loader = l }

// Warnings returns every non-fatal diagnostic recorded so far (spec §7's
// warning side channel). The schema runtime does not record decorator
// warnings here: a non-strict `deprecated` decorator's warning is
// discarded.
func (vm *VM) Warnings() []*kerrors.Diagnostic { return vm.warnings }

func (vm *VM) warn(d *kerrors.Diagnostic) { vm.warnings = append(vm.warnings, d) }

// Globals returns (creating if absent) the shared globals table for a
// package (spec §4.4.2 "all frames with the same pkgpath share a
// globals table held by the VM state").
func (vm *VM) Globals(pkgpath string) *kvalue.Dict {
	g, ok := vm.globals[pkgpath]
	if !ok {
		g = kvalue.NewDict()
		vm.globals[pkgpath] = g
	}
	return g
}

// Run executes a package's top-level CodeObject and returns the value
// its RETURN_VALUE yields, or None when it ends without one.
func (vm *VM) Run(code *kvalue.CodeObject, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
	frame := newFrame(code, vm.Globals(code.Pkgpath), nil)
	bindParams(frame, code.Params, args, kwargs)
	return vm.runFrame(frame)
}

// control-flow sentinels returned internally by the dispatch loop.
type frameSignal int

const (
	signalNone frameSignal = iota
	signalReturn
)

func (vm *VM) runFrame(f *Frame) (kvalue.Value, error) {
	var retVal kvalue.Value = kvalue.None
	for f.isp < len(f.codes) {
		instr := f.codes[f.isp]
		if vm.Trace != nil {
			vm.Trace(f.pkgpath, instr)
		}
		sig, val, err := vm.step(f, instr)
		if err != nil {
			return nil, vm.attachFrame(err, f)
		}
		if sig == signalReturn {
			retVal = val
			break
		}
		f.isp++
	}
	return retVal, nil
}

func (vm *VM) attachFrame(err error, f *Frame) error {
	if d, ok := kerrors.AsDiagnostic(err); ok {
		pos := f.currentPos()
		return d.WithFrame(kerrors.PosFrame{Filename: pos.Filename, Line: pos.Line, Column: pos.Column})
	}
	return err
}

// step executes one instruction, returning a signal telling runFrame
// whether to keep looping, and (for signalReturn) the value to yield.
func (vm *VM) step(f *Frame, instr kvalue.Instruction) (frameSignal, kvalue.Value, error) {
	switch instr.Op {
	// ---- stack ----
	case kvalue.OpPopTop:
		f.pop()
	case kvalue.OpRotTwo:
		a, b := f.pop(), f.pop()
		f.push(a)
		f.push(b)
	case kvalue.OpRotThree:
		a, b, c := f.pop(), f.pop(), f.pop()
		f.push(a)
		f.push(c)
		f.push(b)
	case kvalue.OpDupTop:
		f.push(f.peek())
	case kvalue.OpDupTopTwo:
		a, b := f.peekAt(1), f.peekAt(0)
		f.push(a)
		f.push(b)
	case kvalue.OpCopyTop:
		f.push(kvalue.Clone(f.peek()))
	case kvalue.OpNop:
		// no-op

	// ---- unary arithmetic ----
	case kvalue.OpUnaryPositive, kvalue.OpUnaryNegative, kvalue.OpUnaryInvert, kvalue.OpUnaryNot:
		v, err := evalUnary(instr.Op, f.pop())
		if err != nil {
			return signalNone, nil, err
		}
		f.push(v)

	// ---- binary arithmetic / comparison / membership / logical / cast ----
	case kvalue.OpBinaryAdd, kvalue.OpBinarySubtract, kvalue.OpBinaryMultiply, kvalue.OpBinaryDivide,
		kvalue.OpBinaryFloorDivide, kvalue.OpBinaryModulo, kvalue.OpBinaryPower,
		kvalue.OpBinaryLShift, kvalue.OpBinaryRShift, kvalue.OpBinaryAnd, kvalue.OpBinaryOr, kvalue.OpBinaryXor,
		kvalue.OpCompareEqual, kvalue.OpCompareNotEqual, kvalue.OpCompareLess, kvalue.OpCompareLessEqual,
		kvalue.OpCompareGreater, kvalue.OpCompareGreaterEqual:
		rhs, lhs := f.pop(), f.pop()
		v, err := evalBinary(instr.Op, lhs, rhs)
		if err != nil {
			return signalNone, nil, err
		}
		f.push(v)
	case kvalue.OpCompareIn, kvalue.OpCompareNotIn:
		rhs, lhs := f.pop(), f.pop()
		v, err := evalMembership(instr.Op, lhs, rhs)
		if err != nil {
			return signalNone, nil, err
		}
		f.push(v)
	case kvalue.OpCompareIs, kvalue.OpCompareIsNot:
		rhs, lhs := f.pop(), f.pop()
		f.push(evalIdentity(instr.Op, lhs, rhs))
	case kvalue.OpBinaryLogicAnd, kvalue.OpBinaryLogicOr:
		rhs, lhs := f.pop(), f.pop()
		var r bool
		if instr.Op == kvalue.OpBinaryLogicAnd {
			r = kvalue.Truthy(lhs) && kvalue.Truthy(rhs)
		} else {
			r = kvalue.Truthy(lhs) || kvalue.Truthy(rhs)
		}
		f.push(kvalue.NewBool(r))
	case kvalue.OpMemberShipAs:
		typeVal := f.pop()
		v := f.pop()
		out, err := typeConvert(v, typeVal)
		if err != nil {
			return signalNone, nil, err
		}
		f.push(out)

	// ---- assertions / raise ----
	case kvalue.OpRaiseVarargs:
		msg := f.pop()
		return signalNone, nil, kerrors.New(kerrors.ClassAssertion, kerrors.VM006, msg.String())
	case kvalue.OpRaiseCheck:
		msg := f.pop()
		d := kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH007, msg.String())
		if f.keyName != "" {
			d = d.WithData("key", f.keyName)
		}
		return signalNone, nil, d

	// ---- control flow ----
	// runFrame advances isp after every step, so an absolute jump to
	// target T leaves isp at T-1.
	case kvalue.OpJumpForward:
		f.isp += int(instr.Arg)
		return signalNone, nil, nil
	case kvalue.OpJumpAbsolute:
		f.isp = int(instr.Arg) - 1
		return signalNone, nil, nil
	case kvalue.OpPopJumpIfTrue:
		if kvalue.Truthy(f.pop()) {
			f.isp = int(instr.Arg) - 1
			return signalNone, nil, nil
		}
	case kvalue.OpPopJumpIfFalse:
		if !kvalue.Truthy(f.pop()) {
			f.isp = int(instr.Arg) - 1
			return signalNone, nil, nil
		}
	case kvalue.OpJumpIfTrueOrPop:
		if kvalue.Truthy(f.peek()) {
			f.isp = int(instr.Arg) - 1
			return signalNone, nil, nil
		}
		f.pop()
	case kvalue.OpJumpIfFalseOrPop:
		if !kvalue.Truthy(f.peek()) {
			f.isp = int(instr.Arg) - 1
			return signalNone, nil, nil
		}
		f.pop()

	// ---- iteration ----
	case kvalue.OpGetIter:
		v := f.pop()
		it, err := buildIterator(v, int(instr.Arg))
		if err != nil {
			return signalNone, nil, err
		}
		f.push(it)
	case kvalue.OpForIter:
		it := f.peek().(*kvalue.Iterator)
		vals, ok := it.Next()
		if !ok {
			f.pop()
			f.isp = int(instr.Arg) - 1
			return signalNone, nil, nil
		}
		for i := len(vals) - 1; i >= 0; i-- {
			f.push(vals[i])
		}

	// ---- comprehensions ----
	case kvalue.OpListAppend:
		v := f.pop()
		l := f.peekAt(int(instr.Arg)).(*kvalue.List)
		l.Elements = append(l.Elements, v)
	case kvalue.OpMapAdd:
		v, k := f.pop(), f.pop()
		d := f.peekAt(int(instr.Arg)).(*kvalue.Dict)
		if err := d.Set(k, v); err != nil {
			return signalNone, nil, err
		}
	case kvalue.OpDeleteItem:
		k := f.pop()
		switch c := f.peekAt(int(instr.Arg)).(type) {
		case *kvalue.Dict:
			c.Delete(k)
		case *kvalue.List:
			for i, e := range c.Elements {
				if kvalue.Equals(e, k) {
					c.Elements = append(c.Elements[:i], c.Elements[i+1:]...)
					break
				}
			}
		}

	default:
		return vm.stepExtended(f, instr)
	}
	return signalNone, nil, nil
}

// stepExtended dispatches the remaining opcode groups: collection
// build, names & scoping, calls & functions, schema, import, and
// string formatting (spec §4.4.3).
func (vm *VM) stepExtended(f *Frame, instr kvalue.Instruction) (frameSignal, kvalue.Value, error) {
	switch instr.Op {
	case kvalue.OpBuildList, kvalue.OpBuildMap, kvalue.OpBuildSlice, kvalue.OpBuildSchemaConfig,
		kvalue.OpStoreMap, kvalue.OpStoreSchemaConfig:
		return signalNone, nil, vm.stepCollectionBuild(f, instr)

	case kvalue.OpLoadConst, kvalue.OpLoadName, kvalue.OpStoreName, kvalue.OpStoreGlobal,
		kvalue.OpLoadLocal, kvalue.OpStoreLocal, kvalue.OpLoadFree, kvalue.OpLoadClosure,
		kvalue.OpLoadBuiltin, kvalue.OpLoadAttr, kvalue.OpStoreAttr:
		return signalNone, nil, vm.stepNamesAndScoping(f, instr)

	case kvalue.OpCallFunction, kvalue.OpMakeFunction, kvalue.OpMakeClosure,
		kvalue.OpReturnValue, kvalue.OpReturnLastValue:
		return vm.stepCallsAndFunctions(f, instr)

	case kvalue.OpMakeSchema, kvalue.OpBuildSchema, kvalue.OpSchemaAttr,
		kvalue.OpSchemaUpdateAttr, kvalue.OpSchemaLoadAttr, kvalue.OpSchemaNop:
		return signalNone, nil, vm.stepSchema(f, instr)

	case kvalue.OpImportName:
		return signalNone, nil, vm.stepImport(f, instr)

	case kvalue.OpFormatValues:
		return signalNone, nil, vm.stepFormat(f, instr)
	}
	return signalNone, nil, kerrors.New(kerrors.ClassCompile, kerrors.VM001, "unknown opcode")
}
