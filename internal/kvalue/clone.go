package kvalue

// Clone deep-clones a value (spec §4.1). Scalars are immutable and
// returned as-is; collections and schema instances recurse so that
// mutating the clone never touches the original (used by COPY_TOP and
// by the unification engine before mutating either operand).
func Clone(v Value) Value {
	switch t := v.(type) {
	case *List:
		return t.Clone()
	case *Dict:
		return t.Clone()
	case *Schema:
		return t.Clone()
	default:
		return v
	}
}

// Equals implements structural equality (spec §8 "s1 ≡ s2"). Scalars
// compare by value; lists compare element-wise in order, dicts key by
// key regardless of insertion order, and schemas by runtime type plus
// attrs.
func Equals(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case UndefinedValue:
		_, ok := b.(UndefinedValue)
		return ok
	case *Bool:
		bv, ok := b.(*Bool)
		return ok && av.Value == bv.Value
	case *Int:
		if bv, ok := b.(*Int); ok {
			return av.Value == bv.Value
		}
		if bv, ok := b.(*Float); ok {
			return float64(av.Value) == bv.Value
		}
		return false
	case *Float:
		if bv, ok := b.(*Float); ok {
			return av.Value == bv.Value
		}
		if bv, ok := b.(*Int); ok {
			return av.Value == float64(bv.Value)
		}
		return false
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *NumberMultiplier:
		bv, ok := b.(*NumberMultiplier)
		return ok && av.Value() == bv.Value()
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equals(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		eq := true
		_ = av.Each(func(k, v Value) error {
			ov, found := bv.Get(k)
			if !found || !Equals(v, ov) {
				eq = false
			}
			return nil
		})
		return eq
	case *Schema:
		bv, ok := b.(*Schema)
		return ok && av.RuntimeType == bv.RuntimeType && Equals(av.Attrs, bv.Attrs)
	default:
		return a == b
	}
}
