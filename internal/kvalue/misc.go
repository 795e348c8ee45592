package kvalue

import (
	"fmt"

	"github.com/kcl-lang/kclvm-core/internal/ktypes"
)

// TypeValue is the runtime reflection of the type system (spec §3.1,
// §3.2): a first-class value wrapping a ktypes.Type, produced by
// `type()` expressions and consumed by MEMBER_SHIP_AS.
type TypeValue struct {
	Type ktypes.Type
}

func (t *TypeValue) Kind() Kind     { return KindType }
func (t *TypeValue) String() string { return t.Type.String() }

// Module is a named mapping from export name to Value (spec §3.1),
// produced by IMPORT_NAME.
type Module struct {
	Name    string
	Exports *Dict
}

func NewModule(name string) *Module {
	return &Module{Name: name, Exports: NewDict()}
}

func (m *Module) Kind() Kind     { return KindModule }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.Name) }

// Slice is a {start, stop, step} bundle built by BUILD_SLICE; each
// component may be nil (unspecified).
type Slice struct {
	Start *Value
	Stop  *Value
	Step  *Value
}

func (s *Slice) Kind() Kind { return KindSlice }
func (s *Slice) String() string {
	fmt1 := func(v *Value) string {
		if v == nil {
			return ""
		}
		return (*v).String()
	}
	return fmt.Sprintf("%s:%s:%s", fmt1(s.Start), fmt1(s.Stop), fmt1(s.Step))
}

// UnpackStars is the spread arity: single (*) or double (**).
type UnpackStars int

const (
	UnpackSingle UnpackStars = 1
	UnpackDouble UnpackStars = 2
)

// Unpack wraps a value being spread with * or ** (spec §3.1).
type Unpack struct {
	Value Value
	Stars UnpackStars
}

func (u *Unpack) Kind() Kind { return KindUnpack }
func (u *Unpack) String() string {
	if u.Stars == UnpackDouble {
		return "**" + u.Value.String()
	}
	return "*" + u.Value.String()
}
