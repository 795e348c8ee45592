package kvm

import (
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// buildPersonBody compiles a schema body equivalent to:
//
//	schema Person:
//	    name: str = "unknown"
func buildPersonBody() *kvalue.CodeObject {
	consts := []kvalue.Value{
		kvalue.NewInt(int64(kvalue.OpUnion)), // 0: attribute operation
		kvalue.NewString("name"),             // 1: attribute name
		kvalue.NewBool(false),                // 2: isOptional / isFinal
		kvalue.NewBool(true),                 // 3: hasDefault
		kvalue.NewString("unknown"),          // 4: default value
		kvalue.None,                          // 5: type annotation / return value
	}
	return &kvalue.CodeObject{
		Pkgpath:   "__main__",
		Name:      "",
		Names:     []string{"name"},
		Constants: consts,
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0), // opCode
			instr(kvalue.OpLoadConst, 1), // name
			instr(kvalue.OpLoadConst, 2), // isOptional=false
			instr(kvalue.OpLoadConst, 2), // isFinal=false
			instr(kvalue.OpLoadConst, 3), // hasDefault=true
			instr(kvalue.OpLoadConst, 4), // default="unknown"
			instr(kvalue.OpLoadConst, 5), // type annotation=None
			instr(kvalue.OpSchemaAttr, 0),
			instr(kvalue.OpLoadConst, 5), // None
			instr(kvalue.OpReturnValue, 0),
		},
	}
}

// TestMakeSchemaAndBuildSchema exercises MAKE_SCHEMA/BUILD_SCHEMA end to
// end: a config override on a defaulted attribute must win, and the
// instance must come back as a *kvalue.Schema.
func TestMakeSchemaAndBuildSchema(t *testing.T) {
	bodyCode := buildPersonBody()

	config := kvalue.NewSchemaConfig()
	config.Set("name", kvalue.NewString("Alice"), kvalue.OpOverride, -1)

	main := &kvalue.CodeObject{
		Pkgpath: "__main__",
		Name:    "__init__",
		Constants: []kvalue.Value{
			kvalue.NewString("Person"),          // 0: schema name
			kvalue.None,                         // 1: parent
			&kvalue.CodeValue{Code: bodyCode},   // 2: body code
			kvalue.NewString("body"),            // 3: body fn name
			kvalue.None,                         // 4: check fn
			kvalue.None,                         // 5: index signature
			config,                              // 6: build config
			kvalue.NewDict(),                    // 7: config meta
			kvalue.NewList(),                    // 8: args
			kvalue.NewDict(),                    // 9: kwargs
		},
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpLoadConst, 2),
			instr(kvalue.OpLoadConst, 3),
			instr(kvalue.OpMakeFunction, 0),
			instr(kvalue.OpLoadConst, 4),
			instr(kvalue.OpLoadConst, 5),
			instr(kvalue.OpMakeSchema, 0),
			instr(kvalue.OpLoadConst, 6),
			instr(kvalue.OpLoadConst, 7),
			instr(kvalue.OpLoadConst, 8),
			instr(kvalue.OpLoadConst, 9),
			instr(kvalue.OpBuildSchema, 0),
			instr(kvalue.OpReturnValue, 0),
		},
	}

	vm := New(kschema.NewRegistry())
	got, err := vm.Run(main, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	inst, ok := got.(*kvalue.Schema)
	if !ok {
		t.Fatalf("got %#v, want *kvalue.Schema", got)
	}
	if inst.Name != "Person" {
		t.Fatalf("instance name = %q, want Person", inst.Name)
	}
	v, ok := inst.Attrs.GetStr("name")
	if !ok {
		t.Fatal("attribute 'name' not set on the instance")
	}
	s, ok := v.(*kvalue.String)
	if !ok || s.Value != "Alice" {
		t.Fatalf("name = %#v, want String(Alice) (config override should win over the default)", v)
	}
}

// TestSchemaLoadAttrFallsBackToGlobal exercises SCHEMA_LOAD_ATTR's
// fallback chain for a name the instance never sets (spec §4.6).
func TestSchemaLoadAttrFallsBackToGlobal(t *testing.T) {
	vm := New(kschema.NewRegistry())
	inst := kvalue.NewSchema("Widget", "__main__", "__main__.Widget")
	frame := newFrame(&kvalue.CodeObject{Pkgpath: "__main__", Name: "body"}, vm.Globals("__main__"), nil)
	frame.schemaInst = inst
	vm.Globals("__main__").SetStr("shared", kvalue.NewInt(99))

	frame.push(kvalue.NewString("shared"))
	frame.names = []string{}
	if err := vm.opSchemaLoadAttr(frame); err != nil {
		t.Fatalf("opSchemaLoadAttr: %v", err)
	}
	got := frame.pop()
	i, ok := got.(*kvalue.Int)
	if !ok || i.Value != 99 {
		t.Fatalf("got %#v, want Int(99) from the package-global fallback", got)
	}
}

// buildCrossRefBody compiles a schema body equivalent to:
//
//	schema Pair:
//	    a = b + 1
//	    b = b_value
//
// split into two SCHEMA_NOP-delimited fragments, b's value given by
// constIdx (spec §4.6, §9 back-tracking via re-entrant execution).
func buildCrossRefBody(bValueConstIdx int32) *kvalue.CodeObject {
	consts := []kvalue.Value{
		kvalue.NewString("a"), // 0
		kvalue.NewString("b"), // 1
		kvalue.NewInt(1),      // 2
		kvalue.None,           // 3
	}
	return &kvalue.CodeObject{
		Pkgpath:   "__main__",
		Name:      "body",
		Names:     []string{"a", "b"},
		Constants: consts,
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpSchemaNop, 1), // announces "a" (names[0])
			instr(kvalue.OpLoadConst, 0), // "a" (update-attr name)
			instr(kvalue.OpLoadConst, 1), // "b" (load-attr name)
			instr(kvalue.OpSchemaLoadAttr, 0),
			instr(kvalue.OpLoadConst, 2), // 1
			instr(kvalue.OpBinaryAdd, 0),
			instr(kvalue.OpSchemaUpdateAttr, 0),
			instr(kvalue.OpSchemaNop, 2), // announces "b" (names[1])
			instr(kvalue.OpLoadConst, 1), // "b" (update-attr name)
			instr(kvalue.OpLoadConst, bValueConstIdx),
			instr(kvalue.OpSchemaUpdateAttr, 0),
			instr(kvalue.OpLoadConst, 3), // None
			instr(kvalue.OpReturnValue, 0),
		},
	}
}

// TestBackTrackingResolvesForwardAttributeReference exercises the real
// SCHEMA_NOP splitter end to end: `a = b + 1` reads `b` before the
// body's forward pass reaches b's own statement, so it must resolve
// through back-tracking rather than seeing the zero value (spec §4.6,
// §9).
func TestBackTrackingResolvesForwardAttributeReference(t *testing.T) {
	vm := New(kschema.NewRegistry())
	typ := &kschema.SchemaType{
		Name:        "Pair",
		Pkgpath:     "__main__",
		RuntimeType: "__main__.Pair",
		Attrs:       map[string]*kschema.AttrDef{},
		Func:        buildCrossRefBody(2), // b = 1
	}
	if err := vm.registry.MakeSchema(typ); err != nil {
		t.Fatalf("MakeSchema: %v", err)
	}

	inst, err := kschema.Instantiate(vm.registry, typ, nil, kvalue.NewDict(), nil, nil, vm, false)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	a, ok := inst.Attrs.GetStr("a")
	if !ok {
		t.Fatal("attribute 'a' not set")
	}
	ai, ok := a.(*kvalue.Int)
	if !ok || ai.Value != 2 {
		t.Fatalf("a = %#v, want Int(2) (b's value of 1, resolved by back-tracking, plus 1)", a)
	}
	b, ok := inst.Attrs.GetStr("b")
	if !ok {
		t.Fatal("attribute 'b' not set")
	}
	bi, ok := b.(*kvalue.Int)
	if !ok || bi.Value != 1 {
		t.Fatalf("b = %#v, want Int(1)", b)
	}
}

// buildMutualRecursionBody compiles `a = b + 1` and `b = a + 1` with no
// base case (spec §8 scenario 5): resolving either must raise a
// recursion error once the back-tracking depth is exhausted.
func buildMutualRecursionBody() *kvalue.CodeObject {
	consts := []kvalue.Value{
		kvalue.NewString("a"), // 0
		kvalue.NewString("b"), // 1
		kvalue.NewInt(1),      // 2
		kvalue.None,           // 3
	}
	return &kvalue.CodeObject{
		Pkgpath:   "__main__",
		Name:      "body",
		Names:     []string{"a", "b"},
		Constants: consts,
		Instructions: []kvalue.Instruction{
			instr(kvalue.OpSchemaNop, 1), // announces "a"
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpSchemaLoadAttr, 0),
			instr(kvalue.OpLoadConst, 2),
			instr(kvalue.OpBinaryAdd, 0),
			instr(kvalue.OpSchemaUpdateAttr, 0),
			instr(kvalue.OpSchemaNop, 2), // announces "b"
			instr(kvalue.OpLoadConst, 1),
			instr(kvalue.OpLoadConst, 0),
			instr(kvalue.OpSchemaLoadAttr, 0),
			instr(kvalue.OpLoadConst, 2),
			instr(kvalue.OpBinaryAdd, 0),
			instr(kvalue.OpSchemaUpdateAttr, 0),
			instr(kvalue.OpLoadConst, 3),
			instr(kvalue.OpReturnValue, 0),
		},
	}
}

// TestBackTrackingDetectsMutualRecursion is spec §8 scenario 5: `a = b
// + 1`, `b = a + 1`, no base case, must raise a recursion error naming
// whichever attribute was entered first.
func TestBackTrackingDetectsMutualRecursion(t *testing.T) {
	vm := New(kschema.NewRegistry())
	typ := &kschema.SchemaType{
		Name:        "Cycle",
		Pkgpath:     "__main__",
		RuntimeType: "__main__.Cycle",
		Attrs:       map[string]*kschema.AttrDef{},
		Func:        buildMutualRecursionBody(),
	}
	if err := vm.registry.MakeSchema(typ); err != nil {
		t.Fatalf("MakeSchema: %v", err)
	}

	_, err := kschema.Instantiate(vm.registry, typ, nil, kvalue.NewDict(), nil, nil, vm, false)
	if err == nil {
		t.Fatal("expected a recursion error, got nil")
	}
	d, ok := kerrors.AsDiagnostic(err)
	if !ok || d.Class != kerrors.ClassRecursion {
		t.Fatalf("got %#v, want a ClassRecursion diagnostic", err)
	}
}
