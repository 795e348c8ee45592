// Package kschema implements the schema runtime of spec §3.3, §3.4 and
// §4.5: schema type construction, instance materialization by merging
// inheritance, mixins and configuration, decorator/optional/final
// enforcement, and check-block execution.
package kschema

import "github.com/kcl-lang/kclvm-core/internal/kvalue"
import "github.com/kcl-lang/kclvm-core/internal/ktypes"

// AttrDef is the per-attribute metadata recorded on a SchemaType (spec §3.3).
type AttrDef struct {
	Name       string
	Type       ktypes.Type
	IsOptional bool
	IsFinal    bool
	HasDefault bool
	Default    kvalue.Value
	Decorators []*kvalue.DecoratorObject
}

// IndexSignature governs attributes not statically declared (spec §3.3).
type IndexSignature struct {
	KeyName      string
	HasKeyName   bool
	KeyType      ktypes.Type // Str, Int, or Float
	ValueType    ktypes.Type
	AnyOther     bool
	DefaultValue kvalue.Value
}

// Placeholder is one source of an attribute's value: a priority and the
// bytecode slice that produces its contribution (spec §4.6, glossary
// "Place-holder"). Priorities ascend per spec §4.6 (later wins):
// 1 base default, 2 base templating, 3 base mixin, 4 sub default, 5 sub
// templating, 6 sub mixin, 7 config.
type Placeholder struct {
	Priority int
	Name     string             // attribute this place-holder contributes to
	Code     *kvalue.CodeObject // nil for a config-literal placeholder
	Config   kvalue.Value       // set when Priority == PriorityConfig
}

const (
	PriorityBaseDefault = iota + 1
	PriorityBaseTemplating
	PriorityBaseMixin
	PrioritySubDefault
	PrioritySubTemplating
	PrioritySubMixin
	PriorityConfig
)

// SchemaType is the schema type object of spec §3.3. Base/mixins/
// protocol are held by RuntimeType string and resolved through the
// owning Registry (spec §9 "avoid raw back-pointers").
type SchemaType struct {
	Name        string
	Pkgpath     string
	Filename    string
	Doc         string
	AttrList    []string // declaration order; never shrinks
	Attrs       map[string]*AttrDef
	BaseRT      string // runtime_type of parent, "" if none
	MixinRTs    []string
	ProtocolRT  string
	IndexSig    *IndexSignature
	Decorators  []*kvalue.DecoratorObject
	Func        *kvalue.CodeObject // body run during instantiation
	CheckFn     *kvalue.CodeObject
	Settings    kvalue.Settings
	RuntimeType string
	IsMixin     bool
	relaxedDeclared bool // schema body declared with the relaxed (`...`) marker

	// Placeholders is populated once, lazily, the first time the body
	// is split at SCHEMA_NOP boundaries (spec §9 "one-time
	// preprocessing step per type").
	Placeholders map[string][]Placeholder

	instances []*kvalue.Schema
}

// SetRelaxed marks the schema as declared with the relaxed (`...`) marker.
func (s *SchemaType) SetRelaxed(v bool) { s.relaxedDeclared = v }

// AttrByName looks up a declared attribute.
func (s *SchemaType) AttrByName(name string) (*AttrDef, bool) {
	a, ok := s.Attrs[name]
	return a, ok
}

// RecordInstance appends to the weak registry backing instances() (spec §3.3).
func (s *SchemaType) RecordInstance(inst *kvalue.Schema) {
	s.instances = append(s.instances, inst)
}

// Instances returns every instance constructed of this type so far.
func (s *SchemaType) Instances() []*kvalue.Schema {
	return s.instances
}
