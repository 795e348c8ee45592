package kschema

import (
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/ktypes"
	"github.com/kcl-lang/kclvm-core/internal/kunify"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// Runner is implemented by the bytecode VM (component D) so the schema
// runtime never imports it directly (spec §9's acyclic-registry spirit
// applied to packages, not just instances): kschema calls back into the
// VM to execute a body/mixin/check CodeObject against an in-progress
// instance.
type Runner interface {
	// RunBody pushes a frame for code bound to (args, configMeta,
	// config, inst) and executes it; attribute writes land on inst via
	// STORE_ATTR/SCHEMA_UPDATE_ATTR.
	RunBody(code *kvalue.CodeObject, inst *kvalue.Schema, config *kvalue.SchemaConfig, configMeta *kvalue.Dict, args []kvalue.Value, kwargs map[string]kvalue.Value, isSubSchema bool) error
	// RunCheck executes a check-block CodeObject against the finished
	// instance, optionally with a relaxed key bound to keyName.
	RunCheck(code *kvalue.CodeObject, inst *kvalue.Schema, configMeta *kvalue.Dict, keyName string, keyValue kvalue.Value) error
}

// Instantiate materializes a schema instance following the exact step
// order of spec §4.5.2 (each step observes prior side effects).
func Instantiate(reg *Registry, typ *SchemaType, config *kvalue.SchemaConfig, configMeta *kvalue.Dict, args []kvalue.Value, kwargs map[string]kvalue.Value, runner Runner, isSubSchema bool) (*kvalue.Schema, error) {
	if config == nil {
		config = kvalue.NewSchemaConfig()
	}

	// Step 1: argument type check against declared params happens at
	// the call site (CALL_FUNCTION / BUILD_SCHEMA in the VM) before
	// Instantiate is invoked; declared params live on typ.Func.Params.

	// Step 2-3: allocate instance, stamp pkgpath.
	inst := kvalue.NewSchema(typ.Name, typ.Pkgpath, typ.RuntimeType)

	// Step 4: attach type-level decorators.
	for _, d := range typ.Decorators {
		if d.Target == kvalue.DecoratorTargetSchema {
			inst.Decorators = append(inst.Decorators, d)
		}
	}

	// Step 5: recurse into base, same config/config_meta, is_sub_schema=true.
	if typ.BaseRT != "" {
		base := reg.Lookup(typ.BaseRT)
		if base == nil {
			return nil, kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009, "base schema not found for "+typ.Name)
		}
		baseInst, err := Instantiate(reg, base, config, configMeta, nil, nil, runner, true)
		if err != nil {
			return nil, err
		}
		merged, err := kunify.Union(inst.Attrs, baseInst.Attrs, kunify.Options{})
		if err != nil {
			return nil, err
		}
		inst.Attrs = merged.(*kvalue.Dict)
	}

	// Step 6: union in type attrs (defaults; idempotence off).
	for _, name := range typ.AttrList {
		def := typ.Attrs[name]
		if def != nil && def.HasDefault {
			if _, exists := inst.Attrs.GetStr(name); !exists {
				inst.Attrs.SetStr(name, def.Default)
			}
		} else if _, exists := inst.Attrs.GetStr(name); !exists {
			inst.Attrs.SetStr(name, kvalue.Undefined)
		}
	}

	// Step 7: union in each mixin's attrs.
	for _, mrt := range typ.MixinRTs {
		mixin := reg.Lookup(mrt)
		if mixin == nil {
			return nil, kerrors.New(kerrors.ClassIllegalInherit, kerrors.SCH009, "mixin not found for "+typ.Name)
		}
		for _, name := range mixin.AttrList {
			def := mixin.Attrs[name]
			if def != nil && def.HasDefault {
				if _, exists := inst.Attrs.GetStr(name); !exists {
					inst.Attrs.SetStr(name, def.Default)
				}
			}
		}
	}

	// Step 8: record (name, runtime_type, is_relaxed).
	inst.IsRelaxed = typ.IndexSig != nil || inst.IsRelaxed

	// Step 9: push a frame and run the body.
	if typ.Func != nil {
		if err := runner.RunBody(typ.Func, inst, config, configMeta, args, kwargs, isSubSchema); err != nil {
			return nil, err
		}
	}

	// Step 10: reconcile __settings__ — body-assigned wins, else
	// config-provided, else type default. Represented here as: leave
	// whatever the body set; fall back to the type's configured
	// default when the body never touched it.
	if inst.Settings == kvalue.SettingsStandalone && typ.Settings != kvalue.SettingsStandalone {
		inst.Settings = typ.Settings
	}

	if !isSubSchema {
		// Step 11: relaxed-key handling.
		if err := applyRelaxedKeys(typ, inst, config, runner, configMeta); err != nil {
			return nil, err
		}
	}

	// Step 12: re-stamp.
	inst.IsRelaxed = typ.IndexSig != nil || inst.IsRelaxed

	// Step 13: run each mixin body in order.
	for _, mrt := range typ.MixinRTs {
		mixin := reg.Lookup(mrt)
		if mixin == nil || mixin.Func == nil {
			continue
		}
		if err := runner.RunBody(mixin.Func, inst, config, configMeta, nil, nil, true); err != nil {
			return nil, err
		}
	}

	// Step 14: re-stamp again.
	inst.IsRelaxed = typ.IndexSig != nil || inst.IsRelaxed

	// Step 15: register the instance.
	typ.RecordInstance(inst)

	// Step 16: drain stmt buffer in declaration order (spec §9 Open
	// Question resolution: appended after the last mixin body).
	buffer := inst.StmtBuffer
	inst.StmtBuffer = nil
	for _, stmt := range buffer {
		if err := stmt(inst); err != nil {
			return nil, err
		}
	}

	// Step 17: run all attribute decorators.
	if err := runAttributeDecorators(typ, inst); err != nil {
		return nil, err
	}

	if !isSubSchema {
		// Step 18: final stage. __settings__ is marked as an override
		// operation so a later outer union cannot silently merge it away.
		inst.AttrTags[kvalue.ReservedSettingsKey] = kvalue.AttrTag{Operation: kvalue.OpOverride, InsertIndex: -1}
		if err := CheckOptionalAttrs(reg, typ, inst); err != nil {
			return nil, err
		}
		if typ.CheckFn != nil {
			if typ.IndexSig != nil && typ.IndexSig.HasKeyName {
				relaxed := relaxedKeys(typ, inst)
				if len(relaxed) == 0 {
					if err := runner.RunCheck(typ.CheckFn, inst, configMeta, "", nil); err != nil {
						return nil, err
					}
				}
				for _, k := range relaxed {
					v, _ := inst.Attrs.GetStr(k)
					if err := runner.RunCheck(typ.CheckFn, inst, configMeta, typ.IndexSig.KeyName, v); err != nil {
						return nil, err
					}
				}
			} else {
				if err := runner.RunCheck(typ.CheckFn, inst, configMeta, "", nil); err != nil {
					return nil, err
				}
			}
		}
	}

	return inst, nil
}

// CheckOptionalAttrs implements spec §3.4 step 8 / §8 invariant: every
// non-optional attribute across the merged type chain must be non-
// None/Undefined when construction completes.
func CheckOptionalAttrs(reg *Registry, typ *SchemaType, inst *kvalue.Schema) error {
	for cur := typ; cur != nil; {
		for _, name := range cur.AttrList {
			def := cur.Attrs[name]
			if def == nil || def.IsOptional {
				continue
			}
			v, ok := inst.Attrs.GetStr(name)
			if !ok || isNoneOrUndefined(v) {
				return kerrors.New(kerrors.ClassAttribute, kerrors.SCH006,
					"attribute '"+name+"' is required and was not given a value").
					WithData("attribute", name).WithData("schema", typ.Name)
			}
		}
		if cur.BaseRT == "" {
			break
		}
		cur = reg.Lookup(cur.BaseRT)
	}
	return nil
}

func isNoneOrUndefined(v kvalue.Value) bool {
	switch v.(type) {
	case kvalue.NoneValue, kvalue.UndefinedValue:
		return true
	default:
		return false
	}
}

// AssignableAttr validates a value against an attribute's declared
// type at the moment it is bound (spec §4.2 type_pack_and_check): it
// returns TYP001 when valueType is not assignable to def.Type. It does
// not compare def against an ancestor's definition, and v is not
// inspected.
func AssignableAttr(def *AttrDef, v kvalue.Value, valueType ktypes.Type) error {
	if !ktypes.AssignableTo(valueType, def.Type) {
		return kerrors.New(kerrors.ClassType, kerrors.TYP001,
			"value of type "+valueType.String()+" is not assignable to attribute '"+def.Name+"' of type "+def.Type.String()).
			WithData("attribute", def.Name)
	}
	return nil
}
