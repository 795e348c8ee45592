package kschema

import (
	"github.com/kcl-lang/kclvm-core/internal/ktypes"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// runtimeTypeOf derives the structural type of a runtime value for a
// value-to-attribute assignability check (spec §4.2 type_pack_and_check),
// widening to base kinds rather than literal types since the value is
// already bound, not being inferred for a `let`.
func runtimeTypeOf(v kvalue.Value) ktypes.Type {
	switch t := v.(type) {
	case kvalue.NoneValue, kvalue.UndefinedValue:
		return ktypes.None
	case *kvalue.Bool:
		return ktypes.Bool
	case *kvalue.Int:
		return ktypes.Int
	case *kvalue.Float:
		return ktypes.Float
	case *kvalue.String:
		return ktypes.Str
	case *kvalue.List:
		elems := make([]ktypes.Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = runtimeTypeOf(e)
		}
		return &ktypes.ListType{Elem: ktypes.Sup(elems)}
	case *kvalue.Dict:
		var keys, vals []ktypes.Type
		_ = t.Each(func(k, v kvalue.Value) error {
			keys = append(keys, runtimeTypeOf(k))
			vals = append(vals, runtimeTypeOf(v))
			return nil
		})
		return &ktypes.DictType{Key: ktypes.Sup(keys), Value: ktypes.Sup(vals)}
	case *kvalue.Schema:
		return &ktypes.SchemaType{Ref: &ktypes.SchemaRef{Name: t.Name, RuntimeType: t.RuntimeType}}
	default:
		return ktypes.Any
	}
}
