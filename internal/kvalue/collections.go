package kvalue

import (
	"fmt"
	"strings"
)

// List is an ordered, growable sequence of values (spec §3.1).
type List struct {
	Elements []Value
}

func NewList(elems ...Value) *List { return &List{Elements: elems} }

func (l *List) Kind() Kind { return KindList }
func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Clone returns a deep copy; element values are cloned recursively.
func (l *List) Clone() *List {
	out := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		out[i] = Clone(e)
	}
	return &List{Elements: out}
}

// dictKey canonicalizes a String/Int/Float key into a comparable Go map
// key while retaining the original Value for iteration/printing.
type dictKey string

func canonicalKey(k Value) (dictKey, error) {
	switch t := k.(type) {
	case *String:
		return dictKey("s:" + t.Value), nil
	case *Int:
		return dictKey(fmt.Sprintf("i:%d", t.Value)), nil
	case *Float:
		return dictKey(fmt.Sprintf("f:%v", t.Value)), nil
	default:
		return "", fmt.Errorf("dict key must be str/int/float, got %s", k.Kind())
	}
}

// Dict is an insertion-ordered mapping of String/Int/Float keys to
// values (spec §3.1). Order is preserved across Set/Delete so that
// iteration and re-serialization are deterministic.
type Dict struct {
	order  []dictKey
	keys   map[dictKey]Value
	values map[dictKey]Value
}

func NewDict() *Dict {
	return &Dict{keys: make(map[dictKey]Value), values: make(map[dictKey]Value)}
}

// Set inserts or updates key->value, preserving first-insertion order.
func (d *Dict) Set(key, value Value) error {
	ck, err := canonicalKey(key)
	if err != nil {
		return err
	}
	if _, exists := d.values[ck]; !exists {
		d.order = append(d.order, ck)
	}
	d.keys[ck] = key
	d.values[ck] = value
	return nil
}

// SetStr is a convenience for the common String-keyed case (schema
// attrs and config keys are always strings).
func (d *Dict) SetStr(key string, value Value) {
	_ = d.Set(NewString(key), value)
}

func (d *Dict) Get(key Value) (Value, bool) {
	ck, err := canonicalKey(key)
	if err != nil {
		return nil, false
	}
	v, ok := d.values[ck]
	return v, ok
}

func (d *Dict) GetStr(key string) (Value, bool) {
	return d.Get(NewString(key))
}

func (d *Dict) Delete(key Value) {
	ck, err := canonicalKey(key)
	if err != nil {
		return
	}
	if _, ok := d.values[ck]; !ok {
		return
	}
	delete(d.values, ck)
	delete(d.keys, ck)
	for i, k := range d.order {
		if k == ck {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *Dict) Len() int { return len(d.order) }

// Keys returns keys in insertion order.
func (d *Dict) Keys() []Value {
	out := make([]Value, 0, len(d.order))
	for _, ck := range d.order {
		out = append(out, d.keys[ck])
	}
	return out
}

// Each iterates key/value pairs in insertion order.
func (d *Dict) Each(fn func(key, value Value) error) error {
	for _, ck := range d.order {
		if err := fn(d.keys[ck], d.values[ck]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dict) Kind() Kind { return KindDict }
func (d *Dict) String() string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	_ = d.Each(func(k, v Value) error {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(v.String())
		return nil
	})
	b.WriteString("}")
	return b.String()
}

// Clone returns a deep copy; values are cloned recursively, order and
// key identity are preserved.
func (d *Dict) Clone() *Dict {
	out := NewDict()
	_ = d.Each(func(k, v Value) error {
		return out.Set(k, Clone(v))
	})
	return out
}
