package kvm

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kunify"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// SchemaDefValue is the runtime value produced by MAKE_SCHEMA: the
// schema type itself, callable to build an instance (spec §4.4.4 step
// 4, §4.5.1).
type SchemaDefValue struct {
	Type *kschema.SchemaType
}

// Kind reuses the reflective "type" tag: a schema-def value is, from
// the value model's perspective, a first-class type object.
func (s *SchemaDefValue) Kind() kvalue.Kind { return kvalue.KindType }
func (s *SchemaDefValue) String() string    { return "<schema " + s.Type.Name + ">" }

// stepSchema implements spec §4.4.3's schema group.
func (vm *VM) stepSchema(f *Frame, instr kvalue.Instruction) error {
	switch instr.Op {
	case kvalue.OpMakeSchema:
		return vm.opMakeSchema(f, instr.Arg)
	case kvalue.OpBuildSchema:
		return vm.opBuildSchema(f)
	case kvalue.OpSchemaAttr:
		return vm.opSchemaAttr(f, int(instr.Arg))
	case kvalue.OpSchemaUpdateAttr:
		return vm.opSchemaUpdateAttr(f)
	case kvalue.OpSchemaLoadAttr:
		return vm.opSchemaLoadAttr(f)
	case kvalue.OpSchemaNop:
		// marks an attribute-statement boundary: records which
		// attribute's fragment comes next so SCHEMA_LOAD_ATTR can tell
		// a self-read from a back-tracking one (spec §4.6, §9).
		f.currentAttr = kschema.ResolveNopName(instr.Arg, f.names)
	}
	return nil
}

// opMakeSchema assembles and registers a schema type from stack slots
// {self-type stub, parent, mixins, body fn, check fn, decorators, index
// signature} (spec §4.4.3 MAKE_SCHEMA). decorator_count/mixin_count are
// packed into Arg the same way CALL_FUNCTION packs nargs/nkwargs.
func (vm *VM) opMakeSchema(f *Frame, arg int32) error {
	decoratorCount := int(arg) & 0xFF
	mixinCount := (int(arg) >> 8) & 0xFF

	indexSigVal := f.pop()
	decorators := make([]*kvalue.DecoratorObject, decoratorCount)
	for i := decoratorCount - 1; i >= 0; i-- {
		decorators[i], _ = f.pop().(*kvalue.DecoratorObject)
	}
	checkFnVal := f.pop()
	mixinNames := make([]string, mixinCount)
	for i := mixinCount - 1; i >= 0; i-- {
		mixinNames[i] = keyString(f.pop())
	}
	bodyFnVal := f.pop()
	parentVal := f.pop()
	name := keyString(f.pop())

	typ := &kschema.SchemaType{
		Name:        name,
		Pkgpath:     f.pkgpath,
		RuntimeType: f.pkgpath + "." + name,
		Attrs:       map[string]*kschema.AttrDef{},
		Decorators:  decorators,
	}
	if cf, ok := bodyFnVal.(*kvalue.CompiledFunction); ok {
		typ.Func = cf.Code
	}
	if cf, ok := checkFnVal.(*kvalue.CompiledFunction); ok {
		typ.CheckFn = cf.Code
	}
	if pd, ok := parentVal.(*SchemaDefValue); ok {
		typ.BaseRT = pd.Type.RuntimeType
	}
	for _, mn := range mixinNames {
		mv, ok := f.globals.GetStr(mn)
		if !ok {
			return kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009, "mixin '"+mn+"' not found")
		}
		md, ok := mv.(*SchemaDefValue)
		if !ok {
			return kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009, "mixin '"+mn+"' is not a schema")
		}
		typ.MixinRTs = append(typ.MixinRTs, md.Type.RuntimeType)
	}
	if sigDict, ok := indexSigVal.(*kvalue.Dict); ok {
		typ.IndexSig = decodeIndexSignature(sigDict)
		typ.SetRelaxed(true)
	}

	if err := vm.registry.MakeSchema(typ); err != nil {
		return err
	}
	f.push(&SchemaDefValue{Type: typ})
	return nil
}

func decodeIndexSignature(d *kvalue.Dict) *kschema.IndexSignature {
	sig := &kschema.IndexSignature{AnyOther: true}
	if v, ok := d.GetStr("key_name"); ok {
		if s, ok := v.(*kvalue.String); ok && s.Value != "" {
			sig.KeyName = s.Value
			sig.HasKeyName = true
		}
	}
	return sig
}

// opBuildSchema instantiates from (schema-def, config, config_meta,
// args, kwargs) (spec §4.4.3 BUILD_SCHEMA).
func (vm *VM) opBuildSchema(f *Frame) error {
	kwargsVal := f.pop()
	argsVal := f.pop()
	configMetaVal := f.pop()
	configVal := f.pop()
	defVal := f.pop()

	sd, ok := defVal.(*SchemaDefValue)
	if !ok {
		return kerrors.New(kerrors.ClassType, kerrors.VM004, "BUILD_SCHEMA target is not a schema type")
	}
	config, _ := configVal.(*kvalue.SchemaConfig)
	configMeta, _ := configMetaVal.(*kvalue.Dict)
	if configMeta == nil {
		configMeta = kvalue.NewDict()
	}
	var args []kvalue.Value
	if l, ok := argsVal.(*kvalue.List); ok {
		args = l.Elements
	}
	kwargs := map[string]kvalue.Value{}
	if d, ok := kwargsVal.(*kvalue.Dict); ok {
		_ = d.Each(func(k, v kvalue.Value) error { kwargs[keyString(k)] = v; return nil })
	}
	inst, err := vm.buildSchema(sd.Type, config, configMeta, args, kwargs)
	if err != nil {
		return err
	}
	f.push(inst)
	return nil
}

func (vm *VM) buildSchema(typ *kschema.SchemaType, config *kvalue.SchemaConfig, configMeta *kvalue.Dict, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
	if configMeta == nil {
		configMeta = kvalue.NewDict()
	}
	return kschema.Instantiate(vm.registry, typ, config, configMeta, args, kwargs, vm, false)
}

// opSchemaAttr declares an attribute the first time a body executes for
// its owning type, and binds any default onto the in-progress instance
// (spec §4.4.3 SCHEMA_ATTR, §4.5.1).
func (vm *VM) opSchemaAttr(f *Frame, decoratorCount int) error {
	decorators := make([]*kvalue.DecoratorObject, decoratorCount)
	for i := decoratorCount - 1; i >= 0; i-- {
		decorators[i], _ = f.pop().(*kvalue.DecoratorObject)
	}
	typeAnnVal := f.pop()
	defaultVal := f.pop()
	hasDefault := kvalue.Truthy(f.pop())
	isFinal := kvalue.Truthy(f.pop())
	isOptional := kvalue.Truthy(f.pop())
	name := keyString(f.pop())
	opCodeVal := f.pop()

	if f.schemaType != nil {
		if _, exists := f.schemaType.Attrs[name]; !exists {
			var t kschema.AttrDef
			t.Name = name
			if tv, ok := typeAnnVal.(*kvalue.TypeValue); ok {
				t.Type = tv.Type
			}
			t.IsOptional = isOptional
			t.IsFinal = isFinal
			t.HasDefault = hasDefault
			t.Default = defaultVal
			t.Decorators = decorators
			f.schemaType.AttrList = append(f.schemaType.AttrList, name)
			f.schemaType.Attrs[name] = &t
		}
	}
	if f.schemaInst != nil {
		if hasDefault {
			if _, has := f.schemaInst.Attrs.GetStr(name); !has {
				f.schemaInst.Attrs.SetStr(name, defaultVal)
			}
		}
		op := kvalue.OpUnion
		if iv, ok := opCodeVal.(*kvalue.Int); ok {
			op = kvalue.Operation(iv.Value)
		}
		f.schemaInst.AttrTags[name] = kvalue.AttrTag{Operation: op, InsertIndex: -1}
	}
	return nil
}

// opSchemaUpdateAttr re-assigns an attribute inside a body (spec §4.4.3
// SCHEMA_UPDATE_ATTR), replacing its current value; the attribute's
// merge operator is not applied.
func (vm *VM) opSchemaUpdateAttr(f *Frame) error {
	value := f.pop()
	name := keyString(f.pop())
	if f.schemaInst == nil {
		return kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "SCHEMA_UPDATE_ATTR outside a schema body")
	}
	f.schemaInst.Attrs.SetStr(name, value)
	if r, ok := vm.resolvers[f.schemaInst]; ok {
		r.RecordWrite(name, value, true)
	}
	return nil
}

// opSchemaLoadAttr reads an attribute through the back-tracking
// protocol (spec §4.4.3 SCHEMA_LOAD_ATTR, §4.6).
func (vm *VM) opSchemaLoadAttr(f *Frame) error {
	name := keyString(f.pop())
	if f.schemaInst == nil {
		return kerrors.New(kerrors.ClassAttribute, kerrors.VM001, "SCHEMA_LOAD_ATTR outside a schema body")
	}
	r := vm.resolverFor(f.schemaInst)
	writingNow := f.currentAttr != "" && f.currentAttr == name
	v, err := r.Load(name, f.schemaInst, writingNow, vm.fallbacksFor(f))
	if err != nil {
		return err
	}
	f.push(v)
	return nil
}

// ---- kschema.Runner ----

func (vm *VM) RunBody(code *kvalue.CodeObject, inst *kvalue.Schema, config *kvalue.SchemaConfig, configMeta *kvalue.Dict, args []kvalue.Value, kwargs map[string]kvalue.Value, isSubSchema bool) error {
	frame := newFrame(code, vm.Globals(code.Pkgpath), nil)
	if err := bindParams(frame, code.Params, args, kwargs); err != nil {
		return err
	}
	frame.schemaInst = inst
	frame.schemaType = vm.registry.Lookup(inst.RuntimeType)
	frame.configMeta = configMeta
	_, err := vm.runFrame(frame)
	if err != nil {
		return err
	}
	if config != nil {
		return vm.applyConfig(inst, config)
	}
	return nil
}

// applyConfig merges a caller-supplied config literal onto the instance
// via the unification engine, the runtime counterpart of the compiled
// body's own STORE_ATTR/SCHEMA_UPDATE_ATTR instructions (spec §4.5.2
// step 9 note: config values participate in the same merge as the body).
func (vm *VM) applyConfig(inst *kvalue.Schema, config *kvalue.SchemaConfig) error {
	if config.Entries.Len() == 0 {
		return nil
	}
	merged, err := kunify.Union(inst.Attrs, config, kunify.Options{})
	if err != nil {
		return err
	}
	inst.Attrs = merged.(*kvalue.Dict)
	return config.Entries.Each(func(k, _ kvalue.Value) error {
		inst.ConfigKeys[k.String()] = struct{}{}
		return nil
	})
}

func (vm *VM) RunCheck(code *kvalue.CodeObject, inst *kvalue.Schema, configMeta *kvalue.Dict, keyName string, keyValue kvalue.Value) error {
	frame := newFrame(code, vm.Globals(code.Pkgpath), nil)
	frame.schemaInst = inst
	frame.schemaType = vm.registry.Lookup(inst.RuntimeType)
	frame.configMeta = configMeta
	frame.keyName = keyName
	frame.keyValue = keyValue
	if keyName != "" {
		frame.locals[keyName] = keyValue
	}
	_, err := vm.runFrame(frame)
	return err
}

// ---- klazy.Executor ----

func (vm *VM) ExecPlaceholder(ph kschema.Placeholder, inst *kvalue.Schema) (kvalue.Value, error) {
	if ph.Code == nil {
		return ph.Config, nil
	}
	frame := newFrame(ph.Code, vm.Globals(ph.Code.Pkgpath), nil)
	frame.schemaInst = inst
	frame.schemaType = vm.registry.Lookup(inst.RuntimeType)
	// The whole fragment belongs to ph.Name: a self-read anywhere in it
	// returns the in-progress value rather than re-entering back-
	// tracking (spec §4.6).
	frame.currentAttr = ph.Name
	if _, err := vm.runFrame(frame); err != nil {
		return nil, err
	}
	// The fragment's own return value is not the attribute's; read back
	// what it wrote onto the instance.
	if v, ok := inst.Attrs.GetStr(ph.Name); ok {
		return v, nil
	}
	return kvalue.Undefined, nil
}
