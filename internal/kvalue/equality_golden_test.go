package kvalue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// instanceSnapshot flattens a Value tree into plain Go data so cmp can
// diff two constructed instances structurally (spec §8: "for any two
// constructed instances s1, s2 of the same type instantiated from the
// same config literal, s1 ≡ s2").
func instanceSnapshot(v Value) any {
	switch t := v.(type) {
	case *Int:
		return t.Value
	case *Float:
		return t.Value
	case *String:
		return t.Value
	case *Bool:
		return t.Value
	case NoneValue:
		return nil
	case *List:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = instanceSnapshot(e)
		}
		return out
	case *Dict:
		out := make(map[string]any, t.Len())
		_ = t.Each(func(k, val Value) error {
			out[k.String()] = instanceSnapshot(val)
			return nil
		})
		return out
	case *Schema:
		return map[string]any{
			"name":  t.Name,
			"rt":    t.RuntimeType,
			"attrs": instanceSnapshot(t.Attrs),
		}
	default:
		return v.String()
	}
}

func buildSamplePort(value int64) *Schema {
	s := NewSchema("Port", "__main__", "Port_abc123")
	s.Attrs.SetStr("number", NewInt(value))
	s.Attrs.SetStr("protocol", NewString("TCP"))
	return s
}

// TestStructuralEqualityGolden exercises the go-cmp-based golden
// comparison the DOMAIN STACK wiring promises for kvalue: two instances
// built from the same logical config must be structurally identical.
func TestStructuralEqualityGolden(t *testing.T) {
	a := buildSamplePort(8080)
	b := buildSamplePort(8080)

	if diff := cmp.Diff(instanceSnapshot(a), instanceSnapshot(b), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("instances from identical config diverged (-want +got):\n%s", diff)
	}
	if !Equals(a, b) {
		t.Fatalf("Equals disagreed with structural snapshot diff")
	}

	c := buildSamplePort(9090)
	if diff := cmp.Diff(instanceSnapshot(a), instanceSnapshot(c)); diff == "" {
		t.Fatalf("expected a diff between differing instances, got none")
	}
	if Equals(a, c) {
		t.Fatalf("Equals should not treat differing instances as equal")
	}
}
