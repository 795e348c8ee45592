package ktypes

import "testing"

func TestSubsumesLiterals(t *testing.T) {
	if !Subsumes(Int, IntLitType{Value: 5}) {
		t.Errorf("int should subsume IntLit(5)")
	}
	if !Subsumes(Float, IntLitType{Value: 5}) {
		t.Errorf("float should subsume IntLit(5) (int promotes to float)")
	}
	if Subsumes(Str, IntLitType{Value: 5}) {
		t.Errorf("str should not subsume IntLit(5)")
	}
}

func TestSubsumesUnion(t *testing.T) {
	u := &UnionType{Arms: []Type{Int, Str}}
	if !Subsumes(u, IntLitType{Value: 1}) {
		t.Errorf("union on the right: any arm suffices")
	}
	if Subsumes(u, Bool) {
		t.Errorf("union should not subsume an unrelated arm")
	}

	left := &UnionType{Arms: []Type{Any}}
	if !Subsumes(left, Int) {
		t.Errorf("union on the left containing Any must subsume everything")
	}
}

func TestSchemaSubsumption(t *testing.T) {
	base := &SchemaRef{Name: "Base", RuntimeType: "rt:Base"}
	mid := &SchemaRef{Name: "Mid", RuntimeType: "rt:Mid"}
	child := &SchemaRef{Name: "Child", RuntimeType: "rt:Child"}
	lookup := func(rt string) *SchemaRef {
		switch rt {
		case "rt:Child":
			return mid
		case "rt:Mid":
			return base
		default:
			return nil
		}
	}
	base.BaseLookup, mid.BaseLookup, child.BaseLookup = lookup, lookup, lookup

	baseT := &SchemaType{Ref: base}
	childT := &SchemaType{Ref: child}

	if !Subsumes(baseT, childT) {
		t.Errorf("Base should subsume Child via Mid")
	}
	if Subsumes(childT, baseT) {
		t.Errorf("Child should not subsume Base")
	}
}

func TestSup(t *testing.T) {
	got := Sup([]Type{IntLitType{Value: 1}, Int, IntLitType{Value: 2}})
	if got.String() != Int.String() {
		t.Errorf("Sup of int literals and int should collapse to int, got %s", got.String())
	}

	got2 := Sup([]Type{Int, Str})
	union, ok := got2.(*UnionType)
	if !ok || len(union.Arms) != 2 {
		t.Errorf("Sup of unrelated types should be a 2-arm union, got %v", got2)
	}
}

func TestAssignableTo(t *testing.T) {
	if !AssignableTo(IntLitType{Value: 3}, Int) {
		t.Errorf("IntLit(3) should be assignable to int")
	}
	if AssignableTo(Str, Int) {
		t.Errorf("str should not be assignable to int")
	}
	if !AssignableTo(Int, Any) {
		t.Errorf("anything should be assignable to any")
	}
}

func TestInferToVariableType(t *testing.T) {
	got := InferToVariableType(IntLitType{Value: 5})
	if got.String() != Int.String() {
		t.Errorf("literal int should widen to int, got %s", got.String())
	}
	listGot := InferToVariableType(&ListType{Elem: StrLitType{Value: "x"}})
	lt, ok := listGot.(*ListType)
	if !ok || lt.Elem.String() != Str.String() {
		t.Errorf("list element literal should widen, got %v", listGot)
	}
}
