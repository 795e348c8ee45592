package kschema

import (
	"sort"
	"strings"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/ktypes"
	"github.com/kcl-lang/kclvm-core/internal/kunify"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// relaxedKeys computes config.keys() − type.attr_list (spec §4.5.3).
// Attributes of an attached protocol are not subtracted.
func relaxedKeys(typ *SchemaType, inst *kvalue.Schema) []string {
	declared := make(map[string]bool, len(typ.AttrList))
	for _, n := range typ.AttrList {
		declared[n] = true
	}
	var out []string
	for k := range inst.ConfigKeys {
		if !declared[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// applyRelaxedKeys implements spec §4.5.3 in full: when the schema is
// relaxed or carries an index signature, declared attributes are
// checked against a non-any_other signature's value type and each
// relaxed key is type-checked, defaulted, and unioned in; otherwise any
// leftover relaxed key is a hard error naming the schema and all
// offending keys.
func applyRelaxedKeys(typ *SchemaType, inst *kvalue.Schema, config *kvalue.SchemaConfig, runner Runner, configMeta *kvalue.Dict) error {
	keys := relaxedKeys(typ, inst)

	if typ.IndexSig == nil && !typ.hasRelaxedFlag() {
		if len(keys) == 0 {
			return nil
		}
		return kerrors.New(kerrors.ClassCannotAddMembers, kerrors.SCH005,
			"cannot add members '"+strings.Join(keys, "', '")+"' to schema '"+typ.Name+"'").
			WithData("schema", typ.Name).WithData("keys", keys)
	}

	sig := typ.IndexSig
	if sig != nil && !sig.AnyOther && sig.ValueType != nil {
		for _, name := range typ.AttrList {
			v, ok := inst.Attrs.GetStr(name)
			if !ok {
				continue
			}
			if err := checkIndexValueType(typ, sig, name, v); err != nil {
				return err
			}
		}
	}

	for _, key := range keys {
		cfgVal, _ := config.Entries.GetStr(key)
		if cfgVal == nil {
			cfgVal, _ = inst.Attrs.GetStr(key)
		}
		if sig != nil && sig.DefaultValue != nil {
			merged, err := kunify.Union(sig.DefaultValue, cfgVal, kunify.Options{})
			if err != nil {
				return err
			}
			cfgVal = merged
		}
		if sig != nil && sig.ValueType != nil {
			if err := checkIndexValueType(typ, sig, key, cfgVal); err != nil {
				return err
			}
		}
		inst.Attrs.SetStr(key, cfgVal)
	}
	return nil
}

// checkIndexValueType type-packs-and-checks a relaxed key's (or a
// declared, non-any_other attribute's) value against an index
// signature's value type (spec §4.5.3).
func checkIndexValueType(typ *SchemaType, sig *IndexSignature, key string, v kvalue.Value) error {
	if v == nil {
		return nil
	}
	if !ktypes.AssignableTo(runtimeTypeOf(v), sig.ValueType) {
		return kerrors.New(kerrors.ClassType, kerrors.TYP001,
			"value of key '"+key+"' is not assignable to index signature value type "+sig.ValueType.String()+" on schema '"+typ.Name+"'").
			WithData("schema", typ.Name).WithData("key", key)
	}
	return nil
}

// hasRelaxedFlag reports whether the schema was declared with the
// relaxed (`...`) marker independent of an index signature.
func (s *SchemaType) hasRelaxedFlag() bool { return s.relaxedDeclared }
