package kvalue

import "testing"

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"none", None, false},
		{"undefined", Undefined, false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero int", NewInt(0), false},
		{"nonzero int", NewInt(1), true},
		{"zero float", NewFloat(0), false},
		{"empty string", NewString(""), false},
		{"nonempty string", NewString("x"), true},
		{"empty list", NewList(), false},
		{"nonempty list", NewList(NewInt(1)), true},
		{"empty dict", NewDict(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestNumberMultiplier(t *testing.T) {
	nm, err := NewNumberMultiplier(4, "Ki")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := nm.Value(); got != 4*1024 {
		t.Errorf("Value() = %d, want %d", got, 4*1024)
	}
	if _, err := NewNumberMultiplier(1, "bogus"); err == nil {
		t.Fatalf("expected error for unknown suffix")
	}
}

func TestDictInsertionOrder(t *testing.T) {
	d := NewDict()
	d.SetStr("b", NewInt(2))
	d.SetStr("a", NewInt(1))
	d.SetStr("b", NewInt(20)) // update, must not move position

	keys := d.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].String() != "b" || keys[1].String() != "a" {
		t.Errorf("insertion order not preserved: %v", keys)
	}
	v, ok := d.GetStr("b")
	if !ok || v.(*Int).Value != 20 {
		t.Errorf("update did not take effect: %v", v)
	}
}

func TestEqualsStructural(t *testing.T) {
	a := NewList(NewInt(1), NewString("x"))
	b := NewList(NewInt(1), NewString("x"))
	if !Equals(a, b) {
		t.Errorf("expected structurally equal lists to be Equals")
	}
	c := NewList(NewInt(1), NewString("y"))
	if Equals(a, c) {
		t.Errorf("expected different lists to not be Equals")
	}
	// int/float cross-kind numeric equality
	if !Equals(NewInt(2), NewFloat(2.0)) {
		t.Errorf("expected int 2 == float 2.0")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewList(NewList(NewInt(1)))
	clone := Clone(orig).(*List)
	inner := clone.Elements[0].(*List)
	inner.Elements[0] = NewInt(99)

	origInner := orig.Elements[0].(*List)
	if origInner.Elements[0].(*Int).Value == 99 {
		t.Errorf("Clone did not deep-copy nested list")
	}
}
