package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// buildIterator implements GET_ITER n (spec §4.4.3): n selects the
// tuple arity yielded per FOR_ITER step.
func buildIterator(v kvalue.Value, arity int) (*kvalue.Iterator, error) {
	switch t := v.(type) {
	case *kvalue.List:
		return kvalue.NewListIterator(t, arity), nil
	case *kvalue.Dict:
		return kvalue.NewDictIterator(t, arity), nil
	case *kvalue.String:
		return kvalue.NewStringIterator(t, arity), nil
	case *kvalue.Schema:
		return kvalue.NewDictIterator(t.Attrs, arity), nil
	}
	return nil, kerrors.New(kerrors.ClassType, kerrors.VM004, "value of type "+kvalue.TypeStr(v)+" is not iterable")
}

// typeConvert implements MEMBER_SHIP_AS (spec §4.4.3): Int<->Float,
// Any passthrough, List/Dict recurse per element, else error. A Schema
// value is returned unchanged; its attributes are not converted.
func typeConvert(v kvalue.Value, typeVal kvalue.Value) (kvalue.Value, error) {
	tv, ok := typeVal.(*kvalue.TypeValue)
	if !ok {
		return nil, kerrors.New(kerrors.ClassType, kerrors.VM004, "MEMBER_SHIP_AS operand is not a type value")
	}
	switch tv.Type.String() {
	case "any":
		return v, nil
	case "int":
		switch t := v.(type) {
		case *kvalue.Int:
			return t, nil
		case *kvalue.Float:
			return kvalue.NewInt(int64(t.Value)), nil
		}
	case "float":
		switch t := v.(type) {
		case *kvalue.Float:
			return t, nil
		case *kvalue.Int:
			return kvalue.NewFloat(float64(t.Value)), nil
		}
	case "str":
		if t, ok := v.(*kvalue.String); ok {
			return t, nil
		}
	case "bool":
		if t, ok := v.(*kvalue.Bool); ok {
			return t, nil
		}
	}
	switch t := v.(type) {
	case *kvalue.List:
		out := make([]kvalue.Value, len(t.Elements))
		for i, e := range t.Elements {
			conv, err := typeConvert(e, typeVal)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return kvalue.NewList(out...), nil
	case *kvalue.Dict:
		out := kvalue.NewDict()
		err := t.Each(func(k, ev kvalue.Value) error {
			conv, err := typeConvert(ev, typeVal)
			if err != nil {
				return err
			}
			return out.Set(k, conv)
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case *kvalue.Schema:
		return t, nil
	}
	return nil, kerrors.New(kerrors.ClassType, kerrors.VM004,
		"cannot convert "+kvalue.TypeStr(v)+" to "+tv.Type.String())
}
