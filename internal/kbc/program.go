// Package kbc implements the compiled-program external interface of
// spec §6.2: the `{root_dir, main_pkgpath, pkgs}` program container, the
// raw instruction word format (opcode + 24-bit little-endian operand +
// position metadata), and decoding into the kvalue.CodeObject the VM
// consumes. The bytecode compiler that produces this format is an
// external collaborator (spec §1); this package only decodes its
// output.
package kbc

import (
	"fmt"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// PosMeta is the (filename, line, column) triple carried by every
// logical instruction (spec §6.2).
type PosMeta struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// RawInstruction is one logical instruction exactly as the compiler
// emits it: a no-arg form `[opcode, position_meta]` or an arg form
// `[opcode, arg_lo, arg_mid, arg_hi, position_meta]` (spec §6.2). The
// JSON wire shape collapses the three operand bytes into a single
// 24-bit integer for readability; Words() reconstructs the little-endian
// triple when a caller needs the literal word stream.
type RawInstruction struct {
	Op  kvalue.Opcode `json:"op"`
	Arg int32         `json:"arg"`
	Pos PosMeta       `json:"pos"`
}

// Words returns the little-endian operand triple for an arg-carrying
// instruction, mirroring the wire layout of spec §6.2.
func (r RawInstruction) Words() (lo, mid, hi byte) {
	u := uint32(r.Arg)
	return byte(u), byte(u >> 8), byte(u >> 16)
}

// FuncBytecode is the compiled body of one function or schema method:
// names table, constant pool, and instruction stream (spec §6.2
// `Bytecode = {names, constants, instructions}`).
type FuncBytecode struct {
	Name         string            `json:"name"`
	Filename     string            `json:"filename"`
	Pkgpath      string            `json:"pkgpath"`
	Params       []kvalue.ParamSpec `json:"params,omitempty"`
	Names        []string          `json:"names"`
	Constants    []NativeConst     `json:"constants"`
	Instructions []RawInstruction  `json:"instructions"`
}

// NativeConst is a constant-pool entry, represented as tagged host-native
// data for JSON round-tripping through kvalue.FromNative/ToNative.
type NativeConst struct {
	Value any `json:"value"`
}

// PackageBytecode holds every compiled function of one package, keyed
// by function name, with "$main" conventionally the package's top-level
// body.
type PackageBytecode struct {
	Funcs map[string]*FuncBytecode `json:"funcs"`
}

// Program is the compiled-program format of spec §6.2:
// `{root_dir, main_pkgpath, pkgs: Map<pkgpath, Bytecode>}`.
type Program struct {
	RootDir     string                      `json:"root_dir"`
	MainPkgpath string                      `json:"main_pkgpath"`
	Pkgs        map[string]*PackageBytecode `json:"pkgs"`
}

// Decode converts one compiled function's wire representation into the
// kvalue.CodeObject the VM executes.
func Decode(fb *FuncBytecode) (*kvalue.CodeObject, error) {
	code := &kvalue.CodeObject{
		Name:         fb.Name,
		Filename:     fb.Filename,
		Pkgpath:      fb.Pkgpath,
		Params:       fb.Params,
		Names:        append([]string(nil), fb.Names...),
		Constants:    make([]kvalue.Value, len(fb.Constants)),
		Instructions: make([]kvalue.Instruction, len(fb.Instructions)),
	}
	for i, c := range fb.Constants {
		v, err := kvalue.FromNative(c.Value)
		if err != nil {
			return nil, kerrors.New(kerrors.ClassCompile, kerrors.VAL001, fmt.Sprintf("constant %d: %s", i, err))
		}
		code.Constants[i] = v
	}
	for i, inst := range fb.Instructions {
		code.Instructions[i] = kvalue.Instruction{
			Op:  inst.Op,
			Arg: inst.Arg,
			Pos: kvalue.Position{Filename: inst.Pos.Filename, Line: inst.Pos.Line, Column: inst.Pos.Column},
		}
	}
	return code, nil
}

// DecodePackage decodes every function in a package's bytecode,
// returning the package's "$main" CodeObject and a lookup of the rest
// (schema/rule bodies, nested functions) by name for callers that need
// direct access outside the closure-capture path.
func DecodePackage(pb *PackageBytecode) (main *kvalue.CodeObject, all map[string]*kvalue.CodeObject, err error) {
	all = make(map[string]*kvalue.CodeObject, len(pb.Funcs))
	for name, fb := range pb.Funcs {
		c, derr := Decode(fb)
		if derr != nil {
			return nil, nil, derr
		}
		all[name] = c
	}
	main = all["$main"]
	if main == nil {
		return nil, nil, kerrors.New(kerrors.ClassCompile, kerrors.VAL001, "package bytecode has no $main entry")
	}
	return main, all, nil
}

// Loader builds a kvm.PackageLoader-compatible function (the VM package
// only depends on the function-type shape, not on kbc, so this stays a
// plain closure factory to avoid an import cycle).
func (p *Program) Loader() func(pkgpath string) (*kvalue.CodeObject, error) {
	cache := make(map[string]*kvalue.CodeObject)
	return func(pkgpath string) (*kvalue.CodeObject, error) {
		if c, ok := cache[pkgpath]; ok {
			return c, nil
		}
		pb, ok := p.Pkgs[pkgpath]
		if !ok {
			return nil, kerrors.New(kerrors.ClassName, kerrors.VM001, "unknown package '"+pkgpath+"'").WithData("pkgpath", pkgpath)
		}
		main, _, err := DecodePackage(pb)
		if err != nil {
			return nil, err
		}
		cache[pkgpath] = main
		return main, nil
	}
}

// Main decodes and returns the main package's entry CodeObject.
func (p *Program) Main() (*kvalue.CodeObject, error) {
	pb, ok := p.Pkgs[p.MainPkgpath]
	if !ok {
		return nil, kerrors.New(kerrors.ClassName, kerrors.VM001, "main package '"+p.MainPkgpath+"' not found")
	}
	main, _, err := DecodePackage(pb)
	return main, err
}
