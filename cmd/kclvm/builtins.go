package main

import (
	"fmt"
	"io"

	"github.com/kcl-lang/kclvm-core/internal/kvalue"
	"github.com/kcl-lang/kclvm-core/internal/kvm"
)

// registerDemoBuiltins wires the host function registry a real compiler
// would populate far more richly (spec §1: plugin dispatch and the
// bytecode compiler's builtin surface are external collaborators). The
// demonstration CLI only needs enough to let a hand-assembled program
// print values while exercising the VM's calling convention.
func registerDemoBuiltins(vm *kvm.VM, out io.Writer) {
	vm.RegisterBuiltin("print", func(args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
		parts := make([]any, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(out, parts...)
		return kvalue.None, nil
	})
	vm.RegisterBuiltin("len", func(args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("len() takes exactly one argument, got %d", len(args))
		}
		switch t := args[0].(type) {
		case *kvalue.List:
			return kvalue.NewInt(int64(len(t.Elements))), nil
		case *kvalue.Dict:
			return kvalue.NewInt(int64(t.Len())), nil
		case *kvalue.String:
			return kvalue.NewInt(int64(len(t.Value))), nil
		default:
			return nil, fmt.Errorf("len() unsupported for %s", args[0].Kind())
		}
	})
}
