package kschema

import "github.com/kcl-lang/kclvm-core/internal/kvalue"

// AttrRange is one SCHEMA_NOP-delimited fragment of a compiled body,
// tagged with the attribute it writes (spec §4.6, §9 "Back-tracking via
// re-entrant execution").
type AttrRange struct {
	Start, End int
	Name       string
}

// ResolveNopName decodes the attribute a SCHEMA_NOP instruction
// announces for the fragment that follows it: arg is 1 + the index of
// the attribute's name in the code object's names table, 0 meaning the
// statements up to the next boundary do not belong to any attribute
// (e.g. a bare assert inside the body).
func ResolveNopName(arg int32, names []string) string {
	if arg <= 0 {
		return ""
	}
	idx := int(arg) - 1
	if idx < 0 || idx >= len(names) {
		return ""
	}
	return names[idx]
}

// SplitAttrRanges partitions code's instruction stream into per-
// attribute fragments at SCHEMA_NOP boundaries (spec §9): each
// SCHEMA_NOP announces the attribute written by the statements up to
// the next boundary (or end of stream).
func SplitAttrRanges(code *kvalue.CodeObject) []AttrRange {
	var ranges []AttrRange
	pending := ""
	start := 0
	for i, instr := range code.Instructions {
		if instr.Op != kvalue.OpSchemaNop {
			continue
		}
		if pending != "" {
			ranges = append(ranges, AttrRange{Start: start, End: i, Name: pending})
		}
		pending = ResolveNopName(instr.Arg, code.Names)
		start = i + 1
	}
	if pending != "" && start < len(code.Instructions) {
		ranges = append(ranges, AttrRange{Start: start, End: len(code.Instructions), Name: pending})
	}
	return ranges
}

// sliceCode builds a standalone, re-enterable CodeObject for one
// fragment, sharing the parent's names/constants tables (spec §9
// "execute ranges on demand by entering sub-frames").
func sliceCode(code *kvalue.CodeObject, rng AttrRange) *kvalue.CodeObject {
	return &kvalue.CodeObject{
		Name:         code.Name,
		Filename:     code.Filename,
		Pkgpath:      code.Pkgpath,
		Params:       code.Params,
		Names:        code.Names,
		Constants:    code.Constants,
		Instructions: code.Instructions[rng.Start:rng.End],
	}
}

// isDefaultFragment reports whether a fragment is a declarative
// SCHEMA_ATTR binding (the "default" tier) rather than an imperative
// SCHEMA_UPDATE_ATTR re-assignment (the "templating" tier), the
// distinction spec §4.6's priority list draws within one body.
func isDefaultFragment(code *kvalue.CodeObject, rng AttrRange) bool {
	for _, instr := range code.Instructions[rng.Start:rng.End] {
		if instr.Op == kvalue.OpSchemaUpdateAttr {
			return false
		}
	}
	return true
}

// appendBodyPlaceholders splits a schema/mixin body and appends one
// place-holder per fragment, picking defaultPriority or
// templatingPriority per fragment's kind.
func appendBodyPlaceholders(out map[string][]Placeholder, code *kvalue.CodeObject, defaultPriority, templatingPriority int) {
	if code == nil {
		return
	}
	for _, rng := range SplitAttrRanges(code) {
		priority := templatingPriority
		if isDefaultFragment(code, rng) {
			priority = defaultPriority
		}
		out[rng.Name] = append(out[rng.Name], Placeholder{
			Priority: priority,
			Name:     rng.Name,
			Code:     sliceCode(code, rng),
		})
	}
}

// appendMixinPlaceholders splits a mixin body and appends every
// fragment at a single "mixin" tier: spec §4.6's priority list does not
// distinguish default from templating within a mixin.
func appendMixinPlaceholders(out map[string][]Placeholder, code *kvalue.CodeObject, priority int) {
	if code == nil {
		return
	}
	for _, rng := range SplitAttrRanges(code) {
		out[rng.Name] = append(out[rng.Name], Placeholder{
			Priority: priority,
			Name:     rng.Name,
			Code:     sliceCode(code, rng),
		})
	}
}

// funcOf returns t.Func, or nil for a nil type (lookup miss).
func funcOf(t *SchemaType) *kvalue.CodeObject {
	if t == nil {
		return nil
	}
	return t.Func
}

// buildPlaceholders walks the base chain, collapsed to the "base" tier
// (priorities 1-3, processed root-to-parent so later-appended ancestors
// shadow earlier ones per spec §4.6), then the type's own body/mixins
// at the "sub" tier (priorities 4-6).
func buildPlaceholders(reg *Registry, typ *SchemaType) map[string][]Placeholder {
	out := make(map[string][]Placeholder)

	var walkBase func(t *SchemaType)
	walkBase = func(t *SchemaType) {
		if t == nil || t.BaseRT == "" {
			return
		}
		base := reg.Lookup(t.BaseRT)
		if base == nil {
			return
		}
		walkBase(base)
		appendBodyPlaceholders(out, base.Func, PriorityBaseDefault, PriorityBaseTemplating)
		for _, mrt := range base.MixinRTs {
			appendMixinPlaceholders(out, funcOf(reg.Lookup(mrt)), PriorityBaseMixin)
		}
	}
	walkBase(typ)

	appendBodyPlaceholders(out, typ.Func, PrioritySubDefault, PrioritySubTemplating)
	for _, mrt := range typ.MixinRTs {
		appendMixinPlaceholders(out, funcOf(reg.Lookup(mrt)), PrioritySubMixin)
	}

	return out
}

// Placeholders returns typ's per-attribute back-tracking place-holder
// lists, splitting and caching them on first use (spec §9 "one-time
// preprocessing step per type").
func Placeholders(reg *Registry, typ *SchemaType) map[string][]Placeholder {
	if typ.Placeholders != nil {
		return typ.Placeholders
	}
	typ.Placeholders = buildPlaceholders(reg, typ)
	return typ.Placeholders
}
