package kschema

import (
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/ktypes"
	"github.com/kcl-lang/kclvm-core/internal/kunify"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// fakeRunner simulates body execution: it applies the config onto the
// instance via the unification engine, the same effect a real schema
// body's STORE_ATTR/config-merge instructions would have.
type fakeRunner struct {
	checkFn func(inst *kvalue.Schema) error
}

func (f *fakeRunner) RunBody(code *kvalue.CodeObject, inst *kvalue.Schema, config *kvalue.SchemaConfig, configMeta *kvalue.Dict, args []kvalue.Value, kwargs map[string]kvalue.Value, isSubSchema bool) error {
	if config == nil {
		return nil
	}
	merged, err := kunify.Union(inst.Attrs, config, kunify.Options{})
	if err != nil {
		return err
	}
	inst.Attrs = merged.(*kvalue.Dict)
	_ = config.Entries.Each(func(k, _ kvalue.Value) error {
		inst.ConfigKeys[k.String()] = struct{}{}
		return nil
	})
	return nil
}

func (f *fakeRunner) RunCheck(code *kvalue.CodeObject, inst *kvalue.Schema, configMeta *kvalue.Dict, keyName string, keyValue kvalue.Value) error {
	if f.checkFn == nil {
		return nil
	}
	return f.checkFn(inst)
}

func TestInstantiateAppliesDefaultsAndOverride(t *testing.T) {
	reg := NewRegistry()
	typ := baseSchema("Server", "rt:Server")
	typ.AttrList = []string{"port"}
	typ.Attrs["port"] = &AttrDef{Name: "port", Type: ktypes.Int, HasDefault: true, Default: kvalue.NewInt(1)}
	typ.Func = &kvalue.CodeObject{Name: "Server"}
	if err := reg.MakeSchema(typ); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	cfg := kvalue.NewSchemaConfig()
	cfg.Set("port", kvalue.NewInt(5), kvalue.OpOverride, -1)

	inst, err := Instantiate(reg, typ, cfg, kvalue.NewDict(), nil, nil, &fakeRunner{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	port, _ := inst.Attrs.GetStr("port")
	if port.(*kvalue.Int).Value != 5 {
		t.Errorf("expected override port=5, got %v", port)
	}
}

func TestInstantiateRequiredAttributeMissing(t *testing.T) {
	reg := NewRegistry()
	typ := baseSchema("Server", "rt:Server")
	typ.AttrList = []string{"port"}
	typ.Attrs["port"] = &AttrDef{Name: "port", Type: ktypes.Int}
	typ.Func = &kvalue.CodeObject{Name: "Server"}
	if err := reg.MakeSchema(typ); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	_, err := Instantiate(reg, typ, kvalue.NewSchemaConfig(), kvalue.NewDict(), nil, nil, &fakeRunner{}, false)
	if err == nil {
		t.Fatalf("expected missing-required-attribute diagnostic")
	}
	diag, ok := kerrors.AsDiagnostic(err)
	if !ok || diag.Code != kerrors.SCH006 {
		t.Errorf("expected SCH006, got %v", err)
	}
}

func TestInstantiateCheckBlockFailure(t *testing.T) {
	reg := NewRegistry()
	typ := baseSchema("Server", "rt:Server")
	typ.AttrList = []string{"port"}
	typ.Attrs["port"] = &AttrDef{Name: "port", Type: ktypes.Int, HasDefault: true, Default: kvalue.NewInt(0)}
	typ.Func = &kvalue.CodeObject{Name: "Server"}
	typ.CheckFn = &kvalue.CodeObject{Name: "check"}
	if err := reg.MakeSchema(typ); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	runner := &fakeRunner{checkFn: func(inst *kvalue.Schema) error {
		port, _ := inst.Attrs.GetStr("port")
		if port.(*kvalue.Int).Value <= 0 {
			return kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH007, "port > 0 check failed")
		}
		return nil
	}}

	_, err := Instantiate(reg, typ, kvalue.NewSchemaConfig(), kvalue.NewDict(), nil, nil, runner, false)
	if err == nil {
		t.Fatalf("expected schema check failure")
	}
	diag, ok := kerrors.AsDiagnostic(err)
	if !ok || diag.Code != kerrors.SCH007 {
		t.Errorf("expected SCH007, got %v", err)
	}
}

func TestRelaxedKeyRejectedWithoutIndexSignature(t *testing.T) {
	reg := NewRegistry()
	typ := baseSchema("Server", "rt:Server")
	typ.AttrList = []string{}
	typ.Func = &kvalue.CodeObject{Name: "Server"}
	if err := reg.MakeSchema(typ); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	cfg := kvalue.NewSchemaConfig()
	cfg.Set("extra", kvalue.NewInt(1), kvalue.OpUnion, -1)

	_, err := Instantiate(reg, typ, cfg, kvalue.NewDict(), nil, nil, &fakeRunner{}, false)
	if err == nil {
		t.Fatalf("expected cannot-add-members error")
	}
	diag, ok := kerrors.AsDiagnostic(err)
	if !ok || diag.Code != kerrors.SCH005 {
		t.Errorf("expected SCH005, got %v", err)
	}
}
