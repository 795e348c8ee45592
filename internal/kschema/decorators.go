package kschema

import (
	"fmt"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// DecoratorFunc is a host routine bound to a schema type or attribute
// (spec §4.5.4). It receives the instance and the attribute name (empty
// for a schema-level decorator) and may mutate inst.Attrs (e.g.
// deprecated nulling a referenced attribute) or append a warning.
type DecoratorFunc func(inst *kvalue.Schema, attrName string, args []kvalue.Value, kwargs map[string]kvalue.Value) (*kerrors.Diagnostic, error)

// DecoratorFactory resolves a decorator by name at declaration time
// (spec §4.5.4); the engine also consults it at instantiation time in
// case of dynamic construction (spec §9).
type DecoratorFactory struct {
	funcs map[string]DecoratorFunc
}

func NewDecoratorFactory() *DecoratorFactory {
	f := &DecoratorFactory{funcs: make(map[string]DecoratorFunc)}
	f.Register("deprecated", deprecatedDecorator)
	f.Register("info", infoDecorator)
	return f
}

func (f *DecoratorFactory) Register(name string, fn DecoratorFunc) { f.funcs[name] = fn }

func (f *DecoratorFactory) Lookup(name string) (DecoratorFunc, bool) {
	fn, ok := f.funcs[name]
	return fn, ok
}

// deprecatedDecorator implements spec §4.5.4: with strict=true it
// raises; otherwise it emits a warning and, if the attribute is
// referenced (i.e. present with a non-None value), sets it to None.
func deprecatedDecorator(inst *kvalue.Schema, attrName string, args []kvalue.Value, kwargs map[string]kvalue.Value) (*kerrors.Diagnostic, error) {
	version := "unknown"
	reason := ""
	strict := false
	if len(args) > 0 {
		version = args[0].String()
	}
	if len(args) > 1 {
		reason = args[1].String()
	}
	if v, ok := kwargs["strict"]; ok {
		if b, ok := v.(*kvalue.Bool); ok {
			strict = b.Value
		}
	}
	msg := fmt.Sprintf("attribute '%s' is deprecated since %s: %s", attrName, version, reason)
	if strict {
		return nil, kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH008, msg)
	}
	warn := kerrors.NewWarning(kerrors.ClassSchemaCheck, kerrors.SCH008, msg)
	if v, ok := inst.Attrs.GetStr(attrName); ok && !isNoneOrUndefined(v) {
		inst.Attrs.SetStr(attrName, kvalue.None)
	}
	return warn, nil
}

func infoDecorator(inst *kvalue.Schema, attrName string, args []kvalue.Value, kwargs map[string]kvalue.Value) (*kerrors.Diagnostic, error) {
	return nil, nil
}

// runAttributeDecorators runs every attribute decorator in declaration
// order, the last stage of materialization (spec §3.4 step 7, §4.5.2
// step 17). A warning returned by a decorator is discarded.
func runAttributeDecorators(typ *SchemaType, inst *kvalue.Schema) error {
	factory := NewDecoratorFactory()
	for _, name := range typ.AttrList {
		def := typ.Attrs[name]
		if def == nil {
			continue
		}
		for _, d := range def.Decorators {
			fn, ok := factory.Lookup(d.Name)
			if !ok {
				return kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH008, "unknown decorator '"+d.Name+"'")
			}
			if _, err := fn(inst, name, d.Args, d.Kwargs); err != nil {
				return err
			}
		}
	}
	return nil
}
