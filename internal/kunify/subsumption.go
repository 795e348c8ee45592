package kunify

import "github.com/kcl-lang/kclvm-core/internal/kvalue"

// ValueSubsumes reports whether delta ⊑ obj at the value level (spec
// §4.3 Unification operator, §8 idempotence law): structural, nullable
// on either side (None/Undefined are compatible with anything), and
// recursing through lists/dicts/schemas.
func ValueSubsumes(obj, delta kvalue.Value) bool {
	if isNullable(obj) || isNullable(delta) {
		return true
	}
	switch o := obj.(type) {
	case *kvalue.List:
		d, ok := delta.(*kvalue.List)
		if !ok || len(o.Elements) != len(d.Elements) {
			return false
		}
		for i := range o.Elements {
			if !ValueSubsumes(o.Elements[i], d.Elements[i]) {
				return false
			}
		}
		return true
	case *kvalue.Dict:
		d, ok := delta.(*kvalue.Dict)
		if !ok {
			return false
		}
		ok2 := true
		_ = d.Each(func(k, dv kvalue.Value) error {
			ov, found := o.Get(k)
			if found && !ValueSubsumes(ov, dv) {
				ok2 = false
			}
			return nil
		})
		return ok2
	case *kvalue.Schema:
		d, ok := delta.(*kvalue.Schema)
		if !ok || o.RuntimeType != d.RuntimeType {
			return false
		}
		return ValueSubsumes(o.Attrs, d.Attrs)
	default:
		return kvalue.Equals(obj, delta)
	}
}

func isNullable(v kvalue.Value) bool {
	switch v.(type) {
	case kvalue.NoneValue, kvalue.UndefinedValue:
		return true
	default:
		return v == nil
	}
}

// valuesCompatible reports whether a and b are in a value-subsumption
// relation in either direction, i.e. not "conflicting" under the
// idempotence check.
func valuesCompatible(a, b kvalue.Value) bool {
	return ValueSubsumes(a, b) || ValueSubsumes(b, a)
}
