package kvalue

import "fmt"

// CodeValue wraps a compiled CodeObject so MAKE_FUNCTION/MAKE_CLOSURE can
// carry a not-yet-bound function body through the constant pool and the
// operand stack like any other value (spec §4.4.3 MAKE_FUNCTION).
type CodeValue struct {
	Code *CodeObject
}

func (c *CodeValue) Kind() Kind     { return KindCode }
func (c *CodeValue) String() string { return fmt.Sprintf("<code %s>", c.Code.Name) }

// CompiledFunction is a closure over a CodeObject: the free variables
// captured by LOAD_CLOSURE/MAKE_CLOSURE (spec §4.4.2/§4.4.3).
type CompiledFunction struct {
	Code     *CodeObject
	FreeVars []Value
}

func (f *CompiledFunction) Kind() Kind     { return KindFunction }
func (f *CompiledFunction) String() string { return fmt.Sprintf("<function %s>", f.Code.Name) }

// NativeFunc is the host-callable signature builtins implement; args
// and kwargs have already been converted from host-native data on the
// way in (spec §4.1).
type NativeFunc func(args []Value, kwargs map[string]Value) (Value, error)

type BuiltinFunction struct {
	Name string
	Fn   NativeFunc
}

func (b *BuiltinFunction) Kind() Kind     { return KindBuiltin }
func (b *BuiltinFunction) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// MemberFunction is a function value bound to a receiver (spec §3.1),
// e.g. a schema instance method or `instances()` reflection call.
type MemberFunction struct {
	Receiver Value
	Func     Value // *CompiledFunction or *BuiltinFunction
}

func (m *MemberFunction) Kind() Kind { return KindMemberFunction }
func (m *MemberFunction) String() string {
	return fmt.Sprintf("<bound method of %s>", TypeStr(m.Receiver))
}

// DecoratorTarget is where a decorator is attached (spec §4.5.4).
type DecoratorTarget int

const (
	DecoratorTargetSchema DecoratorTarget = iota
	DecoratorTargetAttribute
)

// DecoratorObject is a named host routine resolved through a factory at
// declaration time (spec §4.5.4), e.g. deprecated(version, reason, strict).
type DecoratorObject struct {
	Name   string
	Args   []Value
	Kwargs map[string]Value
	Target DecoratorTarget
}

func (d *DecoratorObject) Kind() Kind     { return KindDecorator }
func (d *DecoratorObject) String() string { return fmt.Sprintf("<decorator %s>", d.Name) }

// Iterator is an opaque cursor over a list/dict/schema/string with a
// declared arity: 1 yields element or key, 2 yields (index,elt) or
// (key,value) (spec §3.1, §4.4.3 GET_ITER/FOR_ITER).
type Iterator struct {
	Arity int
	Next  func() ([]Value, bool) // false when exhausted
}

func (it *Iterator) Kind() Kind     { return KindIterator }
func (it *Iterator) String() string { return "<iterator>" }

// NewListIterator builds an arity-n iterator over a list: arity 1
// yields elements, arity 2 yields (index, element).
func NewListIterator(l *List, arity int) *Iterator {
	i := 0
	return &Iterator{
		Arity: arity,
		Next: func() ([]Value, bool) {
			if i >= len(l.Elements) {
				return nil, false
			}
			elem := l.Elements[i]
			idx := i
			i++
			if arity == 1 {
				return []Value{elem}, true
			}
			return []Value{NewInt(int64(idx)), elem}, true
		},
	}
}

// NewDictIterator builds an arity-n iterator over a dict in insertion
// order: arity 1 yields keys, arity 2 yields (key, value).
func NewDictIterator(d *Dict, arity int) *Iterator {
	keys := d.Keys()
	i := 0
	return &Iterator{
		Arity: arity,
		Next: func() ([]Value, bool) {
			if i >= len(keys) {
				return nil, false
			}
			k := keys[i]
			i++
			if arity == 1 {
				return []Value{k}, true
			}
			v, _ := d.Get(k)
			return []Value{k, v}, true
		},
	}
}

// NewStringIterator walks a string by rune.
func NewStringIterator(s *String, arity int) *Iterator {
	runes := []rune(s.Value)
	i := 0
	return &Iterator{
		Arity: arity,
		Next: func() ([]Value, bool) {
			if i >= len(runes) {
				return nil, false
			}
			r := runes[i]
			idx := i
			i++
			elem := NewString(string(r))
			if arity == 1 {
				return []Value{elem}, true
			}
			return []Value{NewInt(int64(idx)), elem}, true
		},
	}
}
