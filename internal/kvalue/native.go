package kvalue

import "fmt"

// Reserved keys used to recognize a host dict as a schema instance on
// the way in, and to carry identity back out (spec §4.1).
const (
	ReservedSettingsKey   = "__settings__"
	ReservedSchemaTypeKey = "__schema_type__"
	ReservedSchemaNameKey = "__schema_name__"
	ReservedPkgPathKey    = "__pkg_path__"
)

// FromNative converts host-language native data into a Value (spec
// §4.1): None -> None, int/float/bool/string -> scalars, []any -> List,
// map[string]any -> Schema if it carries a __settings__ key
// (reconstructing name/pkgpath/runtime_type from the reserved fields),
// else Dict.
func FromNative(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return None, nil
	case bool:
		return NewBool(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case float64:
		return NewFloat(t), nil
	case string:
		return NewString(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			conv, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			elems[i] = conv
		}
		return NewList(elems...), nil
	case map[string]any:
		return fromNativeMap(t)
	default:
		return nil, fmt.Errorf("unsupported native conversion from %T", v)
	}
}

func fromNativeMap(m map[string]any) (Value, error) {
	if _, ok := m[ReservedSettingsKey]; !ok {
		return fromNativeDict(m)
	}
	name, _ := m[ReservedSchemaNameKey].(string)
	runtimeType, _ := m[ReservedSchemaTypeKey].(string)
	pkgpath, _ := m[ReservedPkgPathKey].(string)
	inst := NewSchema(name, pkgpath, runtimeType)
	for k, v := range m {
		switch k {
		case ReservedSettingsKey, ReservedSchemaNameKey, ReservedSchemaTypeKey, ReservedPkgPathKey:
			continue
		}
		conv, err := FromNative(v)
		if err != nil {
			return nil, err
		}
		inst.Attrs.SetStr(k, conv)
	}
	return inst, nil
}

func fromNativeDict(m map[string]any) (Value, error) {
	d := NewDict()
	for k, v := range m {
		conv, err := FromNative(v)
		if err != nil {
			return nil, err
		}
		d.SetStr(k, conv)
	}
	return d, nil
}

// ToNative converts a Value back to host-native data for builtin
// function calls (spec §4.1). Functions/iterators/types have no native
// representation and are returned as their String().
func ToNative(v Value) (any, error) {
	switch t := v.(type) {
	case NoneValue, UndefinedValue:
		return nil, nil
	case *Bool:
		return t.Value, nil
	case *Int:
		return t.Value, nil
	case *Float:
		return t.Value, nil
	case *String:
		return t.Value, nil
	case *NumberMultiplier:
		return t.Value(), nil
	case *List:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			conv, err := ToNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case *Dict:
		out := make(map[string]any, t.Len())
		var err error
		_ = t.Each(func(k, v Value) error {
			var conv any
			conv, err = ToNative(v)
			if err != nil {
				return err
			}
			out[k.String()] = conv
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case *Schema:
		out := make(map[string]any, t.Attrs.Len()+4)
		_ = t.Attrs.Each(func(k, v Value) error {
			conv, err := ToNative(v)
			if err != nil {
				return err
			}
			out[k.String()] = conv
			return nil
		})
		out[ReservedSettingsKey] = int(t.Settings)
		out[ReservedSchemaNameKey] = t.Name
		out[ReservedSchemaTypeKey] = t.RuntimeType
		out[ReservedPkgPathKey] = t.Pkgpath
		return out, nil
	default:
		return v.String(), nil
	}
}
