package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// bindParams implements the positional/keyword/defaults part of spec
// §4.4.4 step 2: bind positional params by index, apply defaults for
// missing params, bind kwargs by name; unknown kwarg is a diagnostic.
func bindParams(f *Frame, params []kvalue.ParamSpec, args []kvalue.Value, kwargs map[string]kvalue.Value) error {
	bound := make(map[string]bool, len(params))
	for i, p := range params {
		if i < len(args) {
			f.locals[p.Name] = args[i]
			bound[p.Name] = true
		}
	}
	for name, v := range kwargs {
		found := false
		for _, p := range params {
			if p.Name == name {
				found = true
				break
			}
		}
		if !found {
			return kerrors.New(kerrors.ClassIllegalArgument, kerrors.VM002, "unknown keyword argument '"+name+"'").WithData("name", name)
		}
		f.locals[name] = v
		bound[name] = true
	}
	for _, p := range params {
		if !bound[p.Name] {
			if p.HasDefault {
				f.locals[p.Name] = p.Default
			} else {
				f.locals[p.Name] = kvalue.Undefined
			}
		}
	}
	return nil
}

// stepCallsAndFunctions implements spec §4.4.3's calls/functions group
// and §4.4.4's calling convention.
func (vm *VM) stepCallsAndFunctions(f *Frame, instr kvalue.Instruction) (frameSignal, kvalue.Value, error) {
	switch instr.Op {
	case kvalue.OpCallFunction:
		nargs := int(instr.Arg) & 0xFF
		nkwargs := (int(instr.Arg) >> 8) & 0xFF
		kwargs := make(map[string]kvalue.Value, nkwargs)
		for i := 0; i < nkwargs; i++ {
			value := f.pop()
			name := f.pop()
			kwargs[name.String()] = value
		}
		args := f.popN(nargs)
		callee := f.pop()
		result, err := vm.call(callee, args, kwargs)
		if err != nil {
			return signalNone, nil, err
		}
		f.push(result)
		return signalNone, nil, nil

	case kvalue.OpMakeFunction:
		nameVal := f.pop().(*kvalue.String)
		codeVal := f.pop().(*kvalue.CodeValue)
		f.push(&kvalue.CompiledFunction{Code: namedCode(codeVal.Code, nameVal.Value)})
		return signalNone, nil, nil

	case kvalue.OpMakeClosure:
		nameVal := f.pop().(*kvalue.String)
		codeVal := f.pop().(*kvalue.CodeValue)
		free := f.popN(int(instr.Arg))
		f.push(&kvalue.CompiledFunction{Code: namedCode(codeVal.Code, nameVal.Value), FreeVars: free})
		return signalNone, nil, nil

	case kvalue.OpReturnValue:
		return signalReturn, f.pop(), nil

	case kvalue.OpReturnLastValue:
		if f.lastLocal == "" {
			return signalReturn, kvalue.None, nil
		}
		return signalReturn, f.locals[f.lastLocal], nil
	}
	return signalNone, nil, nil
}

func namedCode(code *kvalue.CodeObject, name string) *kvalue.CodeObject {
	if code.Name != "" {
		return code
	}
	clone := *code
	clone.Name = name
	return &clone
}

// call implements spec §4.4.4: dispatch on the callable's kind.
func (vm *VM) call(callee kvalue.Value, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
	switch c := callee.(type) {
	case kvalue.NoneValue, kvalue.UndefinedValue:
		return callee, nil // step 5: silent no-op
	case *kvalue.BuiltinFunction:
		return c.Fn(args, kwargs)
	case *kvalue.MemberFunction:
		boundArgs := append([]kvalue.Value{c.Receiver}, args...)
		return vm.call(c.Func, boundArgs, kwargs)
	case *kvalue.CompiledFunction:
		frame := newFrame(c.Code, vm.Globals(c.Code.Pkgpath), c.FreeVars)
		if err := bindParams(frame, c.Code.Params, args, kwargs); err != nil {
			return nil, err
		}
		return vm.runFrame(frame)
	case *SchemaDefValue:
		return vm.buildSchema(c.Type, kvalue.NewSchemaConfig(), kvalue.NewDict(), args, kwargs)
	}
	return nil, kerrors.New(kerrors.ClassType, kerrors.VM004, "value of type "+kvalue.TypeStr(callee)+" is not callable")
}
