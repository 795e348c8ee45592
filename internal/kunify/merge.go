// Package kunify implements the configuration merge (unification)
// engine of spec §4.3: deterministic merging of nested mappings, lists,
// and schemas under the union/override/insert operators, plus the
// idempotence, unique-key, and value-subsumption checks the schema
// runtime and VM rely on.
package kunify

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// Options controls a Union call (spec §4.3).
type Options struct {
	ListOverride    bool // replace lists wholesale instead of element-wise union
	IdempotentCheck bool // reject non-subsuming same-key conflicts
	ConfigResolve   bool // not read by Union: the per-key Tags of a SchemaConfig or Schema delta always govern the operator
}

// keyOperation resolves the operator that should apply for a given key
// when merging into a dict: SchemaConfig entries carry an explicit tag;
// plain dicts default to union.
func keyOperation(delta kvalue.Value, key kvalue.Value) kvalue.Operation {
	if cfg, ok := delta.(*kvalue.SchemaConfig); ok {
		if tag, found := cfg.Tags[key.String()]; found {
			return tag.Operation
		}
	}
	return kvalue.OpUnion
}

func deltaEntries(delta kvalue.Value) (*kvalue.Dict, map[string]kvalue.AttrTag) {
	switch d := delta.(type) {
	case *kvalue.SchemaConfig:
		return d.Entries, d.Tags
	case *kvalue.Dict:
		return d, nil
	case *kvalue.Schema:
		return d.Attrs, d.AttrTags
	}
	return nil, nil
}

// Union merges delta into obj per the table in spec §4.3. It never
// mutates its arguments; callers receive a new Value.
func Union(obj, delta kvalue.Value, opts Options) (kvalue.Value, error) {
	switch {
	case isNullable(obj) && !isNullable(delta):
		return kvalue.Clone(delta), nil
	case isNullable(delta):
		return kvalue.Clone(obj), nil
	}

	switch o := obj.(type) {
	case *kvalue.List:
		d, ok := delta.(*kvalue.List)
		if !ok {
			return nil, mergeTypeError(obj, delta)
		}
		return unionLists(o, d, opts)

	case *kvalue.Dict:
		entries, tags := deltaEntries(delta)
		if entries == nil {
			return nil, mergeTypeError(obj, delta)
		}
		return unionDictLike(o, entries, tags, opts)

	case *kvalue.Schema:
		switch delta.(type) {
		case *kvalue.Dict, *kvalue.Schema, *kvalue.SchemaConfig:
			entries, tags := deltaEntries(delta)
			merged, err := unionDictLike(o.Attrs, entries, tags, opts)
			if err != nil {
				return nil, err
			}
			out := o.Clone()
			out.Attrs = merged
			if entries != nil {
				_ = entries.Each(func(k, _ kvalue.Value) error {
					out.ConfigKeys[k.String()] = struct{}{}
					return nil
				})
			}
			return out, nil
		default:
			return nil, mergeTypeError(obj, delta)
		}

	default:
		// scalar vs scalar (same kind): delta wins. scalar vs
		// list/dict/schema is a type error.
		switch delta.(type) {
		case *kvalue.List, *kvalue.Dict, *kvalue.Schema, *kvalue.SchemaConfig:
			return nil, mergeTypeError(obj, delta)
		}
		return kvalue.Clone(delta), nil
	}
}

func unionLists(obj, delta *kvalue.List, opts Options) (kvalue.Value, error) {
	if opts.ListOverride {
		return delta.Clone(), nil
	}
	n := len(obj.Elements)
	if len(delta.Elements) > n {
		n = len(delta.Elements)
	}
	out := make([]kvalue.Value, n)
	for i := 0; i < n; i++ {
		var o, d kvalue.Value = kvalue.None, kvalue.None
		if i < len(obj.Elements) {
			o = obj.Elements[i]
		}
		if i < len(delta.Elements) {
			d = delta.Elements[i]
		}
		merged, err := Union(o, d, opts)
		if err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return &kvalue.List{Elements: out}, nil
}

func unionDictLike(obj *kvalue.Dict, entries *kvalue.Dict, tags map[string]kvalue.AttrTag, opts Options) (*kvalue.Dict, error) {
	out := obj.Clone()
	if entries == nil {
		return out, nil
	}
	err := entries.Each(func(k, dv kvalue.Value) error {
		op := kvalue.OpUnion
		insertIndex := -1
		if tags != nil {
			if tag, ok := tags[k.String()]; ok {
				op = tag.Operation
				insertIndex = tag.InsertIndex
			}
		}
		existing, hadKey := out.Get(k)
		var merged kvalue.Value
		var mErr error
		switch op {
		case kvalue.OpOverride:
			merged = Override(existing, dv, insertIndex)
		case kvalue.OpInsert:
			merged, mErr = Insert(existing, dv, insertIndex)
		case kvalue.OpUnique:
			if hadKey && !isNullable(existing) && !isNullable(dv) && !kvalue.Equals(existing, dv) {
				return kerrors.New(kerrors.ClassUniqueKey, kerrors.UNI002,
					"unique violation on key '"+k.String()+"'").
					WithData("key", k.String())
			}
			merged = dv
		case kvalue.OpUnification:
			if !ValueSubsumes(existing, dv) {
				return kerrors.New(kerrors.ClassValue, kerrors.UNI003,
					"unification conflict on key '"+k.String()+"': delta does not subsume existing value").
					WithData("key", k.String())
			}
			merged = dv
		default: // union
			merged, mErr = Union(existing, dv, opts)
		}
		if mErr != nil {
			return mErr
		}
		if opts.IdempotentCheck && hadKey && !valuesCompatible(existing, merged) {
			return kerrors.New(kerrors.ClassValue, kerrors.UNI001,
				"conflicting values on the attribute '"+k.String()+"'").
				WithData("key", k.String()).
				WithData("left", existing.String()).
				WithData("right", dv.String())
		}
		return out.Set(k, merged)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Override implements `=`: delta replaces obj at the key, or at
// insertIndex when obj is a list (spec §4.3).
func Override(obj, delta kvalue.Value, insertIndex int) kvalue.Value {
	if insertIndex < 0 {
		return kvalue.Clone(delta)
	}
	list, ok := obj.(*kvalue.List)
	if !ok {
		return kvalue.Clone(delta)
	}
	out := list.Clone()
	if insertIndex >= 0 && insertIndex < len(out.Elements) {
		out.Elements[insertIndex] = kvalue.Clone(delta)
	}
	return out
}

// Insert implements `+=`: delta is appended into obj.Value (must be
// List), either at tail or at insertIndex (spec §4.3).
func Insert(obj, delta kvalue.Value, insertIndex int) (kvalue.Value, error) {
	list, ok := obj.(*kvalue.List)
	if !ok {
		if isNullable(obj) {
			list = kvalue.NewList()
		} else {
			return nil, kerrors.New(kerrors.ClassType, kerrors.UNI004, "insert (+=) target is not a list")
		}
	}
	out := list.Clone()
	add := toElements(delta)
	if insertIndex < 0 || insertIndex >= len(out.Elements) {
		out.Elements = append(out.Elements, add...)
		return out, nil
	}
	merged := make([]kvalue.Value, 0, len(out.Elements)+len(add))
	merged = append(merged, out.Elements[:insertIndex]...)
	merged = append(merged, add...)
	merged = append(merged, out.Elements[insertIndex:]...)
	out.Elements = merged
	return out, nil
}

func toElements(delta kvalue.Value) []kvalue.Value {
	if l, ok := delta.(*kvalue.List); ok {
		out := make([]kvalue.Value, len(l.Elements))
		copy(out, l.Elements)
		return out
	}
	return []kvalue.Value{delta}
}

func mergeTypeError(obj, delta kvalue.Value) error {
	return kerrors.New(kerrors.ClassType, kerrors.UNI004,
		"cannot merge "+obj.Kind().String()+" with "+delta.Kind().String())
}
