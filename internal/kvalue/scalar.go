package kvalue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// None is the singleton null value; Undefined marks an attribute that
// has never been assigned (distinct from an explicit None per §3.1).
type NoneValue struct{}

func (NoneValue) Kind() Kind     { return KindNone }
func (NoneValue) String() string { return "None" }

var None = NoneValue{}

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind     { return KindUndefined }
func (UndefinedValue) String() string { return "Undefined" }

var Undefined = UndefinedValue{}

type Bool struct{ Value bool }

func (b *Bool) Kind() Kind { return KindBool }
func (b *Bool) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

func NewBool(v bool) *Bool { return &Bool{Value: v} }

type Int struct{ Value int64 }

func (i *Int) Kind() Kind     { return KindInt }
func (i *Int) String() string { return strconv.FormatInt(i.Value, 10) }

func NewInt(v int64) *Int { return &Int{Value: v} }

type Float struct{ Value float64 }

func (f *Float) Kind() Kind     { return KindFloat }
func (f *Float) String() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

func NewFloat(v float64) *Float { return &Float{Value: v} }

type String struct{ Value string }

func (s *String) Kind() Kind     { return KindString }
func (s *String) String() string { return s.Value }

func NewString(v string) *String { return &String{Value: v} }

// multiplierSuffixes is the fixed suffix table from spec §3.1.
var multiplierSuffixes = map[string]int64{
	"n": 1, "u": 1, "m": 1, "k": 1000, "K": 1024,
	"M": 1000 * 1000, "G": 1000 * 1000 * 1000, "T": 1000 * 1000 * 1000 * 1000, "P": 1000 * 1000 * 1000 * 1000 * 1000,
	"Ki": 1024, "Mi": 1024 * 1024, "Gi": 1024 * 1024 * 1024, "Ti": 1024 * 1024 * 1024 * 1024, "Pi": 1024 * 1024 * 1024 * 1024 * 1024,
}

// NumberMultiplier holds an integer magnitude and a unit suffix drawn
// from the fixed set in spec §3.1 (n,u,m,k,K,M,G,T,P,Ki,Mi,Gi,Ti,Pi).
type NumberMultiplier struct {
	Raw    int64
	Suffix string
}

func NewNumberMultiplier(raw int64, suffix string) (*NumberMultiplier, error) {
	if _, ok := multiplierSuffixes[suffix]; !ok {
		return nil, fmt.Errorf("unknown number-multiplier suffix %q", suffix)
	}
	return &NumberMultiplier{Raw: raw, Suffix: suffix}, nil
}

func (n *NumberMultiplier) Kind() Kind     { return KindNumberMultiplier }
func (n *NumberMultiplier) String() string { return fmt.Sprintf("%d%s", n.Raw, n.Suffix) }

// Value is the expanded integer value (raw * unit factor).
func (n *NumberMultiplier) Value() int64 {
	return n.Raw * multiplierSuffixes[n.Suffix]
}

// Truthy implements the truthiness rule of spec §3.1: False, None,
// Undefined, numeric zero, and empty string/list/dict/schema are falsy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case NoneValue, UndefinedValue:
		return false
	case *Bool:
		return t.Value
	case *Int:
		return t.Value != 0
	case *Float:
		return t.Value != 0
	case *String:
		return t.Value != ""
	case *NumberMultiplier:
		return t.Value() != 0
	case *List:
		return len(t.Elements) != 0
	case *Dict:
		return t.Len() != 0
	case *Schema:
		return t.Attrs.Len() != 0
	default:
		return true
	}
}

// TypeStr renders the human-readable type name used in diagnostics.
func TypeStr(v Value) string {
	switch t := v.(type) {
	case *List:
		if len(t.Elements) == 0 {
			return "[any]"
		}
		return "[" + TypeStr(t.Elements[0]) + "]"
	case *Schema:
		return t.Name
	case *NumberMultiplier:
		return "number_multiplier"
	default:
		return v.Kind().String()
	}
}

// FormatSuffixes returns the suffix table keys, sorted, for diagnostics
// and documentation; not on the hot path.
func FormatSuffixes() string {
	keys := make([]string, 0, len(multiplierSuffixes))
	for k := range multiplierSuffixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
