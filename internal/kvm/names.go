package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/klazy"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// fallbacksFor returns the locals->globals->builtins->modules scope chain used by
// SCHEMA_LOAD_ATTR fallback resolution (spec §4.6), rooted at f.
func (vm *VM) fallbacksFor(f *Frame) klazy.Fallbacks {
	return klazy.Fallbacks{
		Locals: []func(string) (kvalue.Value, bool){
			func(n string) (kvalue.Value, bool) { v, ok := f.locals[n]; return v, ok },
		},
		Globals: func(n string) (kvalue.Value, bool) { return f.globals.GetStr(n) },
		Builtins: func(n string) (kvalue.Value, bool) { b, ok := vm.builtins[n]; return b, ok },
		Modules: func(n string) (kvalue.Value, bool) { m, ok := vm.modules[n]; return m, ok },
	}
}

func nameAt(f *Frame, code []string, idx int32) string {
	if int(idx) < 0 || int(idx) >= len(code) {
		return ""
	}
	return code[idx]
}

func (vm *VM) stepNamesAndScoping(f *Frame, instr kvalue.Instruction) error {
	names := f.names
	switch instr.Op {
	case kvalue.OpLoadConst:
		f.push(f.consts[instr.Arg])
	case kvalue.OpLoadName:
		name := nameAt(f, names, instr.Arg)
		if v, ok := f.globals.GetStr(name); ok {
			f.push(v)
			return nil
		}
		return kerrors.New(kerrors.ClassName, kerrors.VM001, "name '"+name+"' is not defined").WithData("name", name)
	case kvalue.OpStoreName:
		name := nameAt(f, names, instr.Arg)
		v := f.pop()
		f.globals.SetStr(name, v)
	case kvalue.OpStoreGlobal:
		name := nameAt(f, names, instr.Arg)
		v := f.pop()
		f.globals.SetStr(name, v)
	case kvalue.OpLoadLocal:
		name := nameAt(f, names, instr.Arg)
		if v, ok := f.locals[name]; ok {
			f.push(v)
			return nil
		}
		return kerrors.New(kerrors.ClassName, kerrors.VM001, "local '"+name+"' is not defined").WithData("name", name)
	case kvalue.OpStoreLocal:
		name := nameAt(f, names, instr.Arg)
		f.locals[name] = f.pop()
		f.lastLocal = name
	case kvalue.OpLoadFree, kvalue.OpLoadClosure:
		if int(instr.Arg) >= 0 && int(instr.Arg) < len(f.freeVars) {
			f.push(f.freeVars[instr.Arg])
			return nil
		}
		return kerrors.New(kerrors.ClassName, kerrors.VM001, "free variable index out of range")
	case kvalue.OpLoadBuiltin:
		name := nameAt(f, names, instr.Arg)
		b, ok := vm.builtins[name]
		if !ok {
			return kerrors.New(kerrors.ClassName, kerrors.VM001, "builtin '"+name+"' is not defined").WithData("name", name)
		}
		f.push(b)
	case kvalue.OpLoadAttr:
		name := nameAt(f, names, instr.Arg)
		obj := f.pop()
		v, err := vm.loadAttr(f, obj, name)
		if err != nil {
			return err
		}
		f.push(v)
	case kvalue.OpStoreAttr:
		name := nameAt(f, names, instr.Arg)
		v := f.pop()
		obj := f.pop()
		return vm.storeAttr(f, obj, name, v)
	}
	return nil
}

func (vm *VM) loadAttr(f *Frame, obj kvalue.Value, name string) (kvalue.Value, error) {
	switch t := obj.(type) {
	case *kvalue.Dict:
		if v, ok := t.GetStr(name); ok {
			return v, nil
		}
		return nil, kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "key '"+name+"' not found").WithData("name", name)
	case *kvalue.Module:
		if v, ok := t.Exports.GetStr(name); ok {
			return v, nil
		}
		return nil, kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "module has no member '"+name+"'").WithData("name", name)
	case *kvalue.Schema:
		r := vm.resolverFor(t)
		return r.Load(name, t, false, vm.fallbacksFor(f))
	}
	return nil, kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "cannot load attribute on "+kvalue.TypeStr(obj))
}

func (vm *VM) storeAttr(f *Frame, obj kvalue.Value, name string, v kvalue.Value) error {
	switch t := obj.(type) {
	case *kvalue.Dict:
		t.SetStr(name, v)
		return nil
	case *kvalue.Schema:
		t.Attrs.SetStr(name, v)
		if r, ok := vm.resolvers[t]; ok {
			r.RecordWrite(name, v, true)
		}
		return nil
	}
	return kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "STORE_ATTR target must be a dict or schema, got "+kvalue.TypeStr(obj))
}

// resolverFor lazily creates the back-tracking resolver for an instance
// the first time one of its attributes is loaded (spec §4.6).
func (vm *VM) resolverFor(inst *kvalue.Schema) *klazy.Resolver {
	if r, ok := vm.resolvers[inst]; ok {
		return r
	}
	var placeholders map[string][]kschema.Placeholder
	if typ := vm.registry.Lookup(inst.RuntimeType); typ != nil {
		placeholders = kschema.Placeholders(vm.registry, typ)
	}
	r := klazy.NewResolver(vm, placeholders)
	vm.resolvers[inst] = r
	return r
}
