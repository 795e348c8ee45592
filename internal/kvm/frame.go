package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// Frame is one activation record on the VM's push-down frame stack
// (spec §4.4.2). Globals are shared per package; locals, free vars and
// the operand stack are private to the frame.
type Frame struct {
	isp      int
	pkgpath  string
	name     string
	filename string
	lineno   int
	colno    int

	locals   map[string]kvalue.Value
	globals  *kvalue.Dict
	freeVars []kvalue.Value
	codes    []kvalue.Instruction
	names    []string
	consts   []kvalue.Value

	stack        []kvalue.Value
	lastLocal    string // name of the most recently STORE_LOCAL'd local, for RETURN_LAST_VALUE

	// schemaInst/schemaType/configMeta are set only for frames running a
	// schema body or check-block (spec §4.5.2 step 9, §4.5.4), so the
	// SCHEMA_* opcodes know which in-progress instance/type they act on.
	schemaInst *kvalue.Schema
	schemaType *kschema.SchemaType
	configMeta *kvalue.Dict
	keyName    string
	keyValue   kvalue.Value

	// currentAttr is the name of the attribute whose SCHEMA_NOP-
	// delimited fragment the frame is currently executing (spec §4.6,
	// §9 "Back-tracking via re-entrant execution"); "" outside any
	// attribute fragment. Updated as OpSchemaNop instructions are
	// stepped, and pinned for the life of a place-holder sub-frame.
	currentAttr string
}

func newFrame(code *kvalue.CodeObject, globals *kvalue.Dict, freeVars []kvalue.Value) *Frame {
	return &Frame{
		pkgpath:  code.Pkgpath,
		name:     code.Name,
		filename: code.Filename,
		locals:   make(map[string]kvalue.Value),
		globals:  globals,
		freeVars: freeVars,
		codes:    code.Instructions,
		names:    code.Names,
		consts:   code.Constants,
	}
}

func (f *Frame) push(v kvalue.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() kvalue.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *Frame) peek() kvalue.Value { return f.stack[len(f.stack)-1] }

func (f *Frame) peekAt(depth int) kvalue.Value { return f.stack[len(f.stack)-1-depth] }

// popN pops n values and returns them in original (push) order.
func (f *Frame) popN(n int) []kvalue.Value {
	if n == 0 {
		return nil
	}
	out := make([]kvalue.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = f.pop()
	}
	return out
}

func (f *Frame) currentPos() kvalue.Position {
	if f.isp >= 0 && f.isp < len(f.codes) {
		return f.codes[f.isp].Pos
	}
	return kvalue.Position{Filename: f.filename, Line: f.lineno, Column: f.colno}
}
