// Package ktypes implements the structural type system of spec §3.2:
// kinds, subsumption, and the sup/assignability operators consumed by
// the runtime pack at every value-to-attribute binding point.
package ktypes

import (
	"fmt"
	"strings"
)

// Type is the common interface every type-system node satisfies.
type Type interface {
	String() string
	Equals(Type) bool
}

// Any subsumes everything and is subsumed by everything for assignment
// checks (spec §3.2).
type AnyType struct{}

func (AnyType) String() string    { return "any" }
func (AnyType) Equals(o Type) bool { _, ok := o.(AnyType); return ok }

var Any = AnyType{}

type NoneType struct{}

func (NoneType) String() string    { return "None" }
func (NoneType) Equals(o Type) bool { _, ok := o.(NoneType); return ok }

var None = NoneType{}

type VoidType struct{}

func (VoidType) String() string    { return "void" }
func (VoidType) Equals(o Type) bool { _, ok := o.(VoidType); return ok }

var Void = VoidType{}

type BoolType struct{}

func (BoolType) String() string    { return "bool" }
func (BoolType) Equals(o Type) bool { _, ok := o.(BoolType); return ok }

var Bool = BoolType{}

type IntType struct{}

func (IntType) String() string    { return "int" }
func (IntType) Equals(o Type) bool { _, ok := o.(IntType); return ok }

var Int = IntType{}

type FloatType struct{}

func (FloatType) String() string    { return "float" }
func (FloatType) Equals(o Type) bool { _, ok := o.(FloatType); return ok }

var Float = FloatType{}

type StrType struct{}

func (StrType) String() string    { return "str" }
func (StrType) Equals(o Type) bool { _, ok := o.(StrType); return ok }

var Str = StrType{}

// Literal types store the primitive value directly (never a kvalue
// reference) so the type system has no dependency on the value model;
// kvalue depends on ktypes, not the reverse (resolves the A/B coupling
// spec §9 leaves implicit — see DESIGN.md).

type BoolLitType struct{ Value bool }

func (t BoolLitType) String() string { return fmt.Sprintf("%v", t.Value) }
func (t BoolLitType) Equals(o Type) bool {
	ot, ok := o.(BoolLitType)
	return ok && ot.Value == t.Value
}

type IntLitType struct{ Value int64 }

func (t IntLitType) String() string { return fmt.Sprintf("%d", t.Value) }
func (t IntLitType) Equals(o Type) bool {
	ot, ok := o.(IntLitType)
	return ok && ot.Value == t.Value
}

type FloatLitType struct{ Value float64 }

func (t FloatLitType) String() string { return fmt.Sprintf("%v", t.Value) }
func (t FloatLitType) Equals(o Type) bool {
	ot, ok := o.(FloatLitType)
	return ok && ot.Value == t.Value
}

type StrLitType struct{ Value string }

func (t StrLitType) String() string { return fmt.Sprintf("%q", t.Value) }
func (t StrLitType) Equals(o Type) bool {
	ot, ok := o.(StrLitType)
	return ok && ot.Value == t.Value
}

// ListType is a homogeneous list of Elem.
type ListType struct{ Elem Type }

func (t *ListType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ListType) Equals(o Type) bool {
	ot, ok := o.(*ListType)
	return ok && t.Elem.Equals(ot.Elem)
}

// DictType is a mapping from Key to Value types.
type DictType struct {
	Key   Type
	Value Type
}

func (t *DictType) String() string { return fmt.Sprintf("{%s:%s}", t.Key.String(), t.Value.String()) }
func (t *DictType) Equals(o Type) bool {
	ot, ok := o.(*DictType)
	return ok && t.Key.Equals(ot.Key) && t.Value.Equals(ot.Value)
}

// UnionType is a set of alternative arms (deduplicated by Sup, see
// subsumption.go).
type UnionType struct{ Arms []Type }

func (t *UnionType) String() string {
	parts := make([]string, len(t.Arms))
	for i, a := range t.Arms {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}
func (t *UnionType) Equals(o Type) bool {
	ot, ok := o.(*UnionType)
	if !ok || len(ot.Arms) != len(t.Arms) {
		return false
	}
	// Set equality (spec §9): with the same arm count, each arm on one
	// side must Equal some arm on the other.
	for _, a := range t.Arms {
		found := false
		for _, b := range ot.Arms {
			if a.Equals(b) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SchemaRef is a lightweight reference to a schema type, held by its
// runtime-type string rather than a pointer (spec §9 "avoid raw
// back-pointers"); the schema registry resolves it on demand.
type SchemaRef struct {
	Name        string
	RuntimeType string
	BaseLookup  func(runtimeType string) *SchemaRef // resolves base for subsumption walks
}

// SchemaType is "schema instance of S"; SchemaDefType is "the type S
// itself" (used for schema-valued variables / the type object).
type SchemaType struct{ Ref *SchemaRef }

func (t *SchemaType) String() string { return t.Ref.Name }
func (t *SchemaType) Equals(o Type) bool {
	ot, ok := o.(*SchemaType)
	return ok && ot.Ref.RuntimeType == t.Ref.RuntimeType
}

type SchemaDefType struct{ Ref *SchemaRef }

func (t *SchemaDefType) String() string { return "type[" + t.Ref.Name + "]" }
func (t *SchemaDefType) Equals(o Type) bool {
	ot, ok := o.(*SchemaDefType)
	return ok && ot.Ref.RuntimeType == t.Ref.RuntimeType
}

// NumberMultiplierType with Literal=true compares by (value, suffix);
// non-literal subsumes any literal of the kind (spec §3.2).
type NumberMultiplierType struct {
	Literal bool
	Value   int64
	Suffix  string
}

func (t *NumberMultiplierType) String() string {
	if !t.Literal {
		return "units.NumberMultiplier"
	}
	return fmt.Sprintf("%d%s", t.Value, t.Suffix)
}
func (t *NumberMultiplierType) Equals(o Type) bool {
	ot, ok := o.(*NumberMultiplierType)
	if !ok || ot.Literal != t.Literal {
		return false
	}
	if !t.Literal {
		return true
	}
	return ot.Value == t.Value && ot.Suffix == t.Suffix
}

type ModuleType struct{ Name string }

func (t *ModuleType) String() string    { return "module[" + t.Name + "]" }
func (t *ModuleType) Equals(o Type) bool { ot, ok := o.(*ModuleType); return ok && ot.Name == t.Name }

// NamedType is a pre-resolution placeholder the type resolver leaves
// behind for names it hasn't bound yet (spec §3.2); the engine never
// sees one at runtime in a fully linked program.
type NamedType struct{ Name string }

func (t *NamedType) String() string    { return t.Name }
func (t *NamedType) Equals(o Type) bool { ot, ok := o.(*NamedType); return ok && ot.Name == t.Name }

// FunctionType captures a callable's parameter and return types.
type FunctionType struct {
	Params []Type
	Return Type
}

func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + t.Return.String()
}
func (t *FunctionType) Equals(o Type) bool {
	ot, ok := o.(*FunctionType)
	if !ok || len(ot.Params) != len(t.Params) || !t.Return.Equals(ot.Return) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(ot.Params[i]) {
			return false
		}
	}
	return true
}
