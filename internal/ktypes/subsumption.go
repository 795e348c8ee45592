package ktypes

// Subsumes implements T1 ⊑ T2 ("T1 is an upper bound of T2") per spec
// §3.2. Schema subsumption walks the base chain via SchemaRef.BaseLookup
// rather than following a pointer, keeping the type system free of
// back-references into the schema registry.
func Subsumes(t1, t2 Type) bool {
	if _, ok := t1.(AnyType); ok {
		return true
	}
	if _, ok := t2.(AnyType); ok {
		// Any on the right is only subsumed by Any itself for
		// assignment purposes (caller decides direction); treat
		// strictly here.
		_, t1Any := t1.(AnyType)
		return t1Any
	}

	if u2, ok := t2.(*UnionType); ok {
		// Union on the right (the lower bound): every arm must be
		// subsumed by the left.
		for _, arm := range u2.Arms {
			if !Subsumes(t1, arm) {
				return false
			}
		}
		return true
	}
	if u1, ok := t1.(*UnionType); ok {
		// Union on the left (the upper bound): any arm suffices.
		for _, arm := range u1.Arms {
			if Subsumes(arm, t2) {
				return true
			}
		}
		return false
	}

	switch a := t1.(type) {
	case IntType:
		if _, ok := t2.(IntLitType); ok {
			return true
		}
		_, ok := t2.(IntType)
		return ok
	case FloatType:
		switch t2.(type) {
		case FloatLitType, IntLitType, IntType:
			return true
		}
		_, ok := t2.(FloatType)
		return ok
	case StrType:
		if _, ok := t2.(StrLitType); ok {
			return true
		}
		_, ok := t2.(StrType)
		return ok
	case BoolType:
		if _, ok := t2.(BoolLitType); ok {
			return true
		}
		_, ok := t2.(BoolType)
		return ok
	case IntLitType:
		b, ok := t2.(IntLitType)
		return ok && b.Value == a.Value
	case FloatLitType:
		b, ok := t2.(FloatLitType)
		return ok && b.Value == a.Value
	case StrLitType:
		b, ok := t2.(StrLitType)
		return ok && b.Value == a.Value
	case BoolLitType:
		b, ok := t2.(BoolLitType)
		return ok && b.Value == a.Value
	case *ListType:
		b, ok := t2.(*ListType)
		return ok && Subsumes(a.Elem, b.Elem)
	case *DictType:
		b, ok := t2.(*DictType)
		return ok && Subsumes(a.Key, b.Key) && Subsumes(a.Value, b.Value)
	case *SchemaType:
		return schemaSubsumes(a.Ref, t2)
	case *SchemaDefType:
		b, ok := t2.(*SchemaDefType)
		return ok && b.Ref.RuntimeType == a.Ref.RuntimeType
	case *NumberMultiplierType:
		b, ok := t2.(*NumberMultiplierType)
		if !ok {
			return false
		}
		if !a.Literal {
			return true // non-literal subsumes any literal of the kind
		}
		return b.Literal && b.Value == a.Value && b.Suffix == a.Suffix
	case *ModuleType:
		b, ok := t2.(*ModuleType)
		return ok && b.Name == a.Name
	case *FunctionType:
		b, ok := t2.(*FunctionType)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Subsumes(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Subsumes(a.Return, b.Return)
	case NoneType:
		_, ok := t2.(NoneType)
		return ok
	case VoidType:
		_, ok := t2.(VoidType)
		return ok
	case *NamedType:
		b, ok := t2.(*NamedType)
		return ok && a.Name == b.Name
	}
	return t1.Equals(t2)
}

// schemaSubsumes implements "schema S subsumes T iff walking T.base
// reaches S" (spec §3.2). T may be a SchemaType or a schema-literal
// type whose Ref chain we walk.
func schemaSubsumes(s *SchemaRef, t2 Type) bool {
	var ref *SchemaRef
	switch b := t2.(type) {
	case *SchemaType:
		ref = b.Ref
	case *SchemaDefType:
		ref = b.Ref
	default:
		return false
	}
	for ref != nil {
		if ref.RuntimeType == s.RuntimeType {
			return true
		}
		if ref.BaseLookup == nil {
			return false
		}
		ref = ref.BaseLookup(ref.RuntimeType)
	}
	return false
}

// Sup computes the minimal upper bound of ts: a union type deduplicated
// and stripped of arms subsumed by another arm in the set (spec §3.2).
// A single-element result collapses to that element rather than a
// one-arm union.
func Sup(ts []Type) Type {
	if len(ts) == 0 {
		return Any
	}
	kept := make([]Type, 0, len(ts))
	for _, t := range ts {
		subsumedByKept := false
		for i := 0; i < len(kept); i++ {
			if Subsumes(kept[i], t) {
				subsumedByKept = true
				break
			}
			if Subsumes(t, kept[i]) {
				kept[i] = t
				subsumedByKept = true
				break
			}
		}
		if !subsumedByKept {
			kept = append(kept, t)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &UnionType{Arms: kept}
}

// AssignableTo is the assignment-site check used at every value-to-
// attribute binding (spec §4.2): can a value of type src be stored
// where dst is declared? Any on either side always succeeds.
func AssignableTo(src, dst Type) bool {
	if _, ok := dst.(AnyType); ok {
		return true
	}
	if _, ok := src.(AnyType); ok {
		return true
	}
	return Subsumes(dst, src)
}

// InferToVariableType widens literal arms to their base kinds when
// promoting an inferred value type to a declarable variable type (spec
// §4.2 infer_to_variable_type).
func InferToVariableType(t Type) Type {
	switch v := t.(type) {
	case IntLitType:
		return Int
	case FloatLitType:
		return Float
	case StrLitType:
		return Str
	case BoolLitType:
		return Bool
	case *ListType:
		return &ListType{Elem: InferToVariableType(v.Elem)}
	case *DictType:
		return &DictType{Key: InferToVariableType(v.Key), Value: InferToVariableType(v.Value)}
	case *UnionType:
		arms := make([]Type, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = InferToVariableType(a)
		}
		return Sup(arms)
	case *NumberMultiplierType:
		if v.Literal {
			return &NumberMultiplierType{Literal: false}
		}
		return v
	default:
		return t
	}
}
