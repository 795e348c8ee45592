package kschema

import "testing"

func baseSchema(name, rt string) *SchemaType {
	return &SchemaType{Name: name, Pkgpath: "app", RuntimeType: rt, Attrs: map[string]*AttrDef{}}
}

func TestMakeSchemaRejectsReservedName(t *testing.T) {
	reg := NewRegistry()
	err := reg.MakeSchema(baseSchema("int", "rt:int"))
	if err == nil {
		t.Fatalf("expected error reusing reserved name 'int'")
	}
}

func TestMakeSchemaRejectsBadMixinName(t *testing.T) {
	reg := NewRegistry()
	mixin := baseSchema("Foo", "rt:Foo")
	mixin.IsMixin = true
	if err := reg.MakeSchema(mixin); err == nil {
		t.Fatalf("expected error for mixin not named *Mixin")
	}
}

func TestMakeSchemaDetectsCycle(t *testing.T) {
	reg := NewRegistry()
	a := baseSchema("A", "rt:A")
	if err := reg.MakeSchema(a); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	b := baseSchema("B", "rt:B")
	b.BaseRT = "rt:A"
	if err := reg.MakeSchema(b); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	// Now make A inherit from B, closing the cycle.
	a2 := baseSchema("A", "rt:A")
	a2.BaseRT = "rt:B"
	if err := reg.MakeSchema(a2); err == nil {
		t.Fatalf("expected cycle-inherit error")
	}
}

func TestMakeSchemaRejectsInheritingMixin(t *testing.T) {
	reg := NewRegistry()
	mixin := baseSchema("FooMixin", "rt:FooMixin")
	mixin.IsMixin = true
	if err := reg.MakeSchema(mixin); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	child := baseSchema("Child", "rt:Child")
	child.BaseRT = "rt:FooMixin"
	if err := reg.MakeSchema(child); err == nil {
		t.Fatalf("expected error inheriting from a mixin")
	}
}
