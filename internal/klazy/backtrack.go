// Package klazy implements the Lazy Eval Context of spec §4.6: resolving
// attribute reads that may be assigned later in the same schema body, a
// mixin, or a sub-schema, by back-tracking along the attribute's
// ordered place-holder list.
package klazy

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// Executor runs one place-holder's bytecode slice against inst and
// returns the value it produces (implemented by the VM so this package
// never imports it directly).
type Executor interface {
	ExecPlaceholder(ph kschema.Placeholder, inst *kvalue.Schema) (kvalue.Value, error)
}

// Fallbacks supplies the ordered scopes consulted when no place-holder
// resolves a name (spec §4.6): instance attrs first (handled by the
// Resolver itself), then frame locals innermost-to-outward, then
// package globals, then builtins, then `@`-prefixed package modules.
type Fallbacks struct {
	Locals   []func(name string) (kvalue.Value, bool)
	Globals  func(name string) (kvalue.Value, bool)
	Builtins func(name string) (kvalue.Value, bool)
	Modules  func(name string) (kvalue.Value, bool)
}

// Resolver tracks back-tracking depth and the per-attribute value cache
// for a single instance under construction.
type Resolver struct {
	exec         Executor
	placeholders map[string][]kschema.Placeholder
	depth        map[string]int
	cache        map[string]kvalue.Value
}

func NewResolver(exec Executor, placeholders map[string][]kschema.Placeholder) *Resolver {
	return &Resolver{
		exec:         exec,
		placeholders: placeholders,
		depth:        make(map[string]int),
		cache:        make(map[string]kvalue.Value),
	}
}

// Load implements the SCHEMA_LOAD_ATTR read protocol of spec §4.6.
// writingNow reports whether the currently executing body is inside
// name's own place-holder range (a direct self-write-in-progress read).
func (r *Resolver) Load(name string, inst *kvalue.Schema, writingNow bool, fb Fallbacks) (kvalue.Value, error) {
	if writingNow {
		if v, ok := inst.Attrs.GetStr(name); ok {
			return v, nil
		}
	}
	if v, ok := r.cache[name]; ok {
		return v, nil
	}

	phs := r.placeholders[name]
	if len(phs) > 0 {
		d := r.depth[name]
		if d >= len(phs) {
			return nil, kerrors.New(kerrors.ClassRecursion, kerrors.LAZ001,
				"recursion error resolving attribute '"+name+"'").WithData("attribute", name)
		}
		r.depth[name] = d + 1
		defer func() { r.depth[name]-- }()

		// Tail (most recent / highest priority) backwards.
		idx := len(phs) - 1 - d
		ph := phs[idx]
		val, err := r.exec.ExecPlaceholder(ph, inst)
		if err != nil {
			return nil, err
		}
		if idx == len(phs)-1 {
			r.cache[name] = val
		}
		return val, nil
	}

	if v, ok := inst.Attrs.GetStr(name); ok && !isUndefined(v) {
		return v, nil
	}
	for _, lookup := range fb.Locals {
		if v, ok := lookup(name); ok {
			return v, nil
		}
	}
	if fb.Globals != nil {
		if v, ok := fb.Globals(name); ok {
			return v, nil
		}
	}
	if fb.Builtins != nil {
		if v, ok := fb.Builtins(name); ok {
			return v, nil
		}
	}
	if fb.Modules != nil {
		if v, ok := fb.Modules(name); ok {
			return v, nil
		}
	}
	return nil, kerrors.New(kerrors.ClassName, kerrors.LAZ002, "name '"+name+"' is not defined").WithData("name", name)
}

// RecordWrite updates the cache when the write falls inside the
// attribute's only (or tail) place-holder byte range (spec §4.6
// "Writes update ... and, when the write falls inside the attribute's
// only (or tail) place-holder's byte range, update the cache").
func (r *Resolver) RecordWrite(name string, value kvalue.Value, insideTailRange bool) {
	if insideTailRange {
		r.cache[name] = value
	}
}

func isUndefined(v kvalue.Value) bool {
	_, ok := v.(kvalue.UndefinedValue)
	return ok
}
