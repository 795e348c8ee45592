package kschema

import (
	"strings"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/ktypes"
)

// reservedTypeNames may never be reused as a schema name (spec §4.5.1).
var reservedTypeNames = map[string]bool{
	"int": true, "float": true, "str": true, "bool": true, "any": true,
}

// Registry is the process-wide (per VM-state lifetime) schema-type
// registry (spec §9 "Global mutable state"). It is passed explicitly
// rather than held in a package global so two concurrent programs can
// coexist.
type Registry struct {
	byRuntimeType map[string]*SchemaType
	byName        map[string]*SchemaType // within a single pkgpath namespace: "pkgpath.Name"
}

func NewRegistry() *Registry {
	return &Registry{
		byRuntimeType: make(map[string]*SchemaType),
		byName:        make(map[string]*SchemaType),
	}
}

func nameKey(pkgpath, name string) string { return pkgpath + "." + name }

// Lookup resolves a schema type by its runtime_type string (spec §9).
func (r *Registry) Lookup(runtimeType string) *SchemaType {
	return r.byRuntimeType[runtimeType]
}

// LookupByName resolves a schema type within a package's namespace.
func (r *Registry) LookupByName(pkgpath, name string) (*SchemaType, bool) {
	t, ok := r.byName[nameKey(pkgpath, name)]
	return t, ok
}

// MakeSchema registers a new schema type, applying the validation rules
// of spec §4.5.1: mixin naming, no inheriting from a mixin, no reserved
// names, and DAG-only inheritance (cycle detected by DFS over the
// parent graph).
func (r *Registry) MakeSchema(t *SchemaType) error {
	if reservedTypeNames[t.Name] {
		return kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH004,
			"schema name '"+t.Name+"' reuses a reserved type name")
	}
	if t.IsMixin && !strings.HasSuffix(t.Name, "Mixin") {
		return kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH002,
			"mixin schema '"+t.Name+"' must have a name ending in 'Mixin'")
	}
	if t.BaseRT != "" {
		base := r.Lookup(t.BaseRT)
		if base == nil {
			return kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009,
				"base schema for '"+t.Name+"' not found")
		}
		if base.IsMixin {
			return kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH003,
				"schema '"+t.Name+"' cannot inherit from mixin '"+base.Name+"'")
		}
	}
	for _, mrt := range t.MixinRTs {
		m := r.Lookup(mrt)
		if m == nil {
			return kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009,
				"mixin for '"+t.Name+"' not found")
		}
		if !strings.HasSuffix(m.Name, "Mixin") {
			return kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH002,
				"mixin '"+m.Name+"' included by '"+t.Name+"' does not end in 'Mixin'")
		}
	}

	r.byRuntimeType[t.RuntimeType] = t
	r.byName[nameKey(t.Pkgpath, t.Name)] = t

	if t.BaseRT != "" && r.hasCycle(t.RuntimeType, map[string]bool{}) {
		delete(r.byRuntimeType, t.RuntimeType)
		delete(r.byName, nameKey(t.Pkgpath, t.Name))
		return kerrors.New(kerrors.ClassCycleInherit, kerrors.SCH001,
			"cyclic inheritance detected at schema '"+t.Name+"'")
	}
	return nil
}

func (r *Registry) hasCycle(runtimeType string, visiting map[string]bool) bool {
	if visiting[runtimeType] {
		return true
	}
	visiting[runtimeType] = true
	t := r.byRuntimeType[runtimeType]
	if t == nil || t.BaseRT == "" {
		return false
	}
	return r.hasCycle(t.BaseRT, visiting)
}

// SchemaRef builds a ktypes.SchemaRef bound to this registry, for use
// in subsumption checks (spec §3.2) without leaking a pointer to the
// SchemaType itself.
func (r *Registry) SchemaRef(t *SchemaType) *ktypes.SchemaRef {
	return &ktypes.SchemaRef{
		Name:        t.Name,
		RuntimeType: t.RuntimeType,
		BaseLookup: func(rt string) *ktypes.SchemaRef {
			cur := r.Lookup(rt)
			if cur == nil || cur.BaseRT == "" {
				return nil
			}
			base := r.Lookup(cur.BaseRT)
			if base == nil {
				return nil
			}
			return r.SchemaRef(base)
		},
	}
}
