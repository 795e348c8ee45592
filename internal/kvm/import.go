package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// stepImport implements spec §4.4.5: IMPORT_NAME resolves a path
// against the builtin/plugin registries or, for a user package,
// recursively runs the VM on it and caches the resulting globals.
func (vm *VM) stepImport(f *Frame, instr kvalue.Instruction) error {
	path := f.names[instr.Arg]
	mod, err := vm.importPath(path)
	if err != nil {
		return err
	}
	f.push(mod)
	return nil
}

func (vm *VM) importPath(path string) (*kvalue.Module, error) {
	if mod, ok := vm.modules[path]; ok {
		return mod, nil
	}
	if fn, ok := vm.builtins[path]; ok {
		mod := kvalue.NewModule(path)
		mod.Exports.SetStr(path, fn)
		vm.modules[path] = mod
		return mod, nil
	}
	if fn, ok := vm.plugins[path]; ok {
		mod := kvalue.NewModule(path)
		mod.Exports.SetStr(path, fn)
		vm.modules[path] = mod
		return mod, nil
	}
	if vm.loader == nil {
		return nil, kerrors.New(kerrors.ClassName, kerrors.VM001, "package '"+path+"' not found").WithData("path", path)
	}
	for _, p := range vm.pkgpathStack {
		if p == path {
			return nil, kerrors.New(kerrors.ClassRecursiveLoad, kerrors.VM003, "recursive import of '"+path+"'").WithData("path", path)
		}
	}
	code, err := vm.loader(path)
	if err != nil {
		return nil, err
	}
	vm.pkgpathStack = append(vm.pkgpathStack, path)
	defer func() { vm.pkgpathStack = vm.pkgpathStack[:len(vm.pkgpathStack)-1] }()

	if _, err := vm.Run(code, nil, nil); err != nil {
		return nil, err
	}
	mod := kvalue.NewModule(path)
	mod.Exports = vm.Globals(path)
	vm.modules[path] = mod
	return mod, nil
}
