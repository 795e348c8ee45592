package kvm

import (
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

func instr(op kvalue.Opcode, arg int32) kvalue.Instruction {
	return kvalue.Instruction{Op: op, Arg: arg}
}

func runProgram(t *testing.T, code *kvalue.CodeObject) kvalue.Value {
	t.Helper()
	vm := New(kschema.NewRegistry())
	v, err := vm.Run(code, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return v
}

// (2 + 3) * 4 == 20
func TestArithmeticAndReturn(t *testing.T) {
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Constants: []kvalue.Value{
			kvalue.NewInt(2), kvalue.NewInt(3), kvalue.NewInt(4),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpBinaryAdd, 0),
			instr(kvalue.OpLoadConst, 2),
			instr(kvalue.OpBinaryMultiply, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	got := runProgram(t, code)
	i, ok := got.(*kvalue.Int)
	if !ok || i.Value != 20 {
		t.Fatalf("got %#v, want Int(20)", got)
	}
}

// division by zero raises a diagnostic, not a panic.
func TestDivisionByZeroRaises(t *testing.T) {
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Constants: []kvalue.Value{
			kvalue.NewInt(1), kvalue.NewInt(0),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpBinaryFloorDivide, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	vm := New(kschema.NewRegistry())
	_, err := vm.Run(code, nil, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// STORE_LOCAL/LOAD_LOCAL round trip plus a name lookup failure.
func TestLocalsAndUndefinedName(t *testing.T) {
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Names:   []string{"x"},
		Constants: []kvalue.Value{
			kvalue.NewString("hello"),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpStoreLocal, 0),
			instr(kvalue.OpLoadLocal, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	got := runProgram(t, code)
	s, ok := got.(*kvalue.String)
	if !ok || s.Value != "hello" {
		t.Fatalf("got %#v, want String(hello)", got)
	}

	bad := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Names:   []string{"nope"},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadName, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	vm := New(kschema.NewRegistry())
	if _, err := vm.Run(bad, nil, nil); err == nil {
		t.Fatal("expected a name-not-defined error")
	}
}

// calling a compiled function through CALL_FUNCTION: add(a, b).
func TestCallCompiledFunction(t *testing.T) {
	addCode := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "add",
		Params: []kvalue.ParamSpec{
			{Name: "a"}, {Name: "b"},
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadLocal, 0),
			instr(kvalue.OpLoadLocal, 1),
			instr(kvalue.OpBinaryAdd, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	addCode.Names = []string{"a", "b"}

	main := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Constants: []kvalue.Value{
			&kvalue.CompiledFunction{Code: addCode},
			kvalue.NewInt(7),
			kvalue.NewInt(35),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpLoadConst, 2),
			instr(kvalue.OpCallFunction, 2), // nargs=2, nkwargs=0
			instr(kvalue.OpReturnValue, 0),
		},
	}
	got := runProgram(t, main)
	i, ok := got.(*kvalue.Int)
	if !ok || i.Value != 42 {
		t.Fatalf("got %#v, want Int(42)", got)
	}
}

// GET_ITER/FOR_ITER/LIST_APPEND over [1,2,3] doubling each element.
func TestForIterListAppend(t *testing.T) {
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Names:   []string{"n"},
		Constants: []kvalue.Value{
			kvalue.NewList(kvalue.NewInt(1), kvalue.NewInt(2), kvalue.NewInt(3)),
			kvalue.NewInt(2),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpBuildList, 0),      // 0: result list
			instr(kvalue.OpLoadConst, 0),      // 1: source list
			instr(kvalue.OpGetIter, 1),        // 2: iterator, arity 1
			instr(kvalue.OpForIter, 8),        // 3: push next n, or pop iter and jump to 8
			instr(kvalue.OpLoadConst, 1),      // 4: push 2
			instr(kvalue.OpBinaryMultiply, 0), // 5: n*2
			instr(kvalue.OpListAppend, 1),     // 6: append to result (depth 1: skip iterator)
			instr(kvalue.OpJumpAbsolute, 3),   // 7: loop
			instr(kvalue.OpReturnValue, 0),    // 8: return result
		},
	}
	got := runProgram(t, code)
	l, ok := got.(*kvalue.List)
	if !ok || len(l.Elements) != 3 {
		t.Fatalf("got %#v, want a 3-element list", got)
	}
	want := []int64{2, 4, 6}
	for i, e := range l.Elements {
		iv, ok := e.(*kvalue.Int)
		if !ok || iv.Value != want[i] {
			t.Fatalf("element %d = %#v, want %d", i, e, want[i])
		}
	}
}

func TestFormatValuesJSON(t *testing.T) {
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Constants: []kvalue.Value{
			kvalue.NewString("#json"),
			kvalue.NewInt(5),
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpFormatValues, 1),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	got := runProgram(t, code)
	s, ok := got.(*kvalue.String)
	if !ok || s.Value != "5" {
		t.Fatalf("got %#v, want String(5)", got)
	}
}

func TestImportNameBuiltin(t *testing.T) {
	vm := New(kschema.NewRegistry())
	vm.RegisterBuiltin("math", nil)
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Names:   []string{"math"},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpImportName, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	v, err := vm.Run(code, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	mod, ok := v.(*kvalue.Module)
	if !ok || mod.Name != "math" {
		t.Fatalf("got %#v, want module 'math'", v)
	}
}

func TestImportNameRecursiveRejected(t *testing.T) {
	vm := New(kschema.NewRegistry())
	vm.SetLoader(func(pkgpath string) (*kvalue.CodeObject, error) {
		return &kvalue.CodeObject{
			Pkgpath: pkgpath,
			Name:    "__init__",
			Names:   []string{pkgpath},
			Instructions: []kvalue.Instruction{
				instr(kvalue.OpImportName, 0),
				instr(kvalue.OpReturnValue, 0),
			},
		}, nil
	})
	code := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Names:   []string{"cyclic"},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpImportName, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}
	if _, err := vm.Run(code, nil, nil); err == nil {
		t.Fatal("expected a recursive-import error")
	}
}
