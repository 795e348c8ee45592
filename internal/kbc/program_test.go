package kbc

import (
	"strings"
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

func TestDecodeRoundTrip(t *testing.T) {
	fb := &FuncBytecode{
		Name:     "$main",
		Filename: "main.k",
		Pkgpath:  "__main__",
		Names:    []string{"x"},
		Constants: []NativeConst{
			{Value: int64(2)}, {Value: int64(3)},
		},
		Instructions: []RawInstruction{
			{Op: kvalue.OpLoadConst, Arg: 0, Pos: PosMeta{Filename: "main.k", Line: 1, Column: 1}},
			{Op: kvalue.OpLoadConst, Arg: 1, Pos: PosMeta{Filename: "main.k", Line: 1, Column: 5}},
			{Op: kvalue.OpBinaryAdd, Pos: PosMeta{Filename: "main.k", Line: 1, Column: 3}},
			{Op: kvalue.OpStoreName, Arg: 0, Pos: PosMeta{Filename: "main.k", Line: 1, Column: 0}},
			{Op: kvalue.OpReturnValue, Pos: PosMeta{Filename: "main.k", Line: 1, Column: 0}},
		},
	}
	code, err := Decode(fb)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(code.Instructions) != 5 {
		t.Fatalf("expected 5 instructions, got %d", len(code.Instructions))
	}
	if code.Instructions[0].Op != kvalue.OpLoadConst || code.Instructions[0].Arg != 0 {
		t.Fatalf("unexpected first instruction: %+v", code.Instructions[0])
	}
	ci, ok := code.Constants[0].(*kvalue.Int)
	if !ok || ci.Value != 2 {
		t.Fatalf("expected constant 0 to decode to Int(2), got %#v", code.Constants[0])
	}
}

func TestDecodePackageRequiresMain(t *testing.T) {
	pb := &PackageBytecode{Funcs: map[string]*FuncBytecode{
		"helper": {Name: "helper", Pkgpath: "p"},
	}}
	if _, _, err := DecodePackage(pb); err == nil {
		t.Fatalf("expected error for package bytecode missing $main")
	}
}

func TestProgramLoaderCachesDecodedPackages(t *testing.T) {
	prog := &Program{
		MainPkgpath: "__main__",
		Pkgs: map[string]*PackageBytecode{
			"pkg.sub": {Funcs: map[string]*FuncBytecode{
				"$main": {Name: "$main", Pkgpath: "pkg.sub"},
			}},
		},
	}
	loader := prog.Loader()
	first, err := loader("pkg.sub")
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	second, err := loader("pkg.sub")
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	if first != second {
		t.Fatalf("expected loader to cache decoded package across calls")
	}
	if _, err := loader("missing.pkg"); err == nil {
		t.Fatalf("expected error for unknown package")
	}
}

func TestDisasmRendersMnemonicsAndOperandHints(t *testing.T) {
	code := &kvalue.CodeObject{
		Name:      "$main",
		Pkgpath:   "__main__",
		Names:     []string{"x"},
		Constants: []kvalue.Value{kvalue.NewInt(42)},
		Instructions: []kvalue.Instruction{
			{Op: kvalue.OpLoadConst, Arg: 0},
			{Op: kvalue.OpStoreName, Arg: 0},
			{Op: kvalue.OpReturnValue},
		},
	}
	out := Disasm(code)
	if !strings.Contains(out, "LOAD_CONST") || !strings.Contains(out, "42") {
		t.Fatalf("expected disasm to show LOAD_CONST with resolved constant, got:\n%s", out)
	}
	if !strings.Contains(out, "STORE_NAME") || !strings.Contains(out, "x") {
		t.Fatalf("expected disasm to show STORE_NAME with resolved name, got:\n%s", out)
	}
}
