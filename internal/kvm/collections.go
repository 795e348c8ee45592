package kvm

import (
	"strings"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// stepCollectionBuild implements spec §4.4.3's collection-build group.
func (vm *VM) stepCollectionBuild(f *Frame, instr kvalue.Instruction) error {
	switch instr.Op {
	case kvalue.OpBuildList:
		elems := f.popN(int(instr.Arg))
		f.push(kvalue.NewList(elems...))
	case kvalue.OpBuildMap:
		f.push(kvalue.NewDict())
	case kvalue.OpBuildSlice:
		parts := f.popN(int(instr.Arg))
		s := &kvalue.Slice{}
		assign := func(dst **kvalue.Value, v kvalue.Value) {
			if _, ok := v.(kvalue.NoneValue); ok {
				return
			}
			*dst = &v
		}
		if len(parts) > 0 {
			assign(&s.Start, parts[0])
		}
		if len(parts) > 1 {
			assign(&s.Stop, parts[1])
		}
		if len(parts) > 2 {
			assign(&s.Step, parts[2])
		}
		f.push(s)
	case kvalue.OpBuildSchemaConfig:
		f.push(kvalue.NewSchemaConfig())
	case kvalue.OpStoreMap:
		value, key := f.pop(), f.pop()
		d, ok := f.peekAt(int(instr.Arg)).(*kvalue.Dict)
		if !ok {
			return kerrors.New(kerrors.ClassType, kerrors.VM004, "STORE_MAP target is not a dict")
		}
		if err := d.Set(key, value); err != nil {
			return err
		}
	case kvalue.OpStoreSchemaConfig:
		// Pops {insert_index, operation, is_nest_key, value, key} (spec
		// §4.4.3): honours double-star unpack and converts dotted keys
		// to nested sub-configs.
		insertIndexV, opV, isNestKeyV, value, key := f.pop(), f.pop(), f.pop(), f.pop(), f.pop()
		cfg, ok := f.peekAt(int(instr.Arg)).(*kvalue.SchemaConfig)
		if !ok {
			return kerrors.New(kerrors.ClassType, kerrors.VM004, "STORE_SCHEMA_CONFIG target is not a schema config")
		}
		insertIndex := -1
		if iv, ok := insertIndexV.(*kvalue.Int); ok {
			insertIndex = int(iv.Value)
		}
		op := kvalue.OpUnion
		if ov, ok := opV.(*kvalue.Int); ok {
			op = kvalue.Operation(ov.Value)
		}
		if u, ok := value.(*kvalue.Unpack); ok && u.Stars == kvalue.UnpackDouble {
			return spreadDoubleStar(cfg, u.Value)
		}
		isNestKey := false
		if bv, ok := isNestKeyV.(*kvalue.Bool); ok {
			isNestKey = bv.Value
		}
		name := keyString(key)
		if isNestKey && strings.Contains(name, ".") {
			storeNestedConfig(cfg, strings.Split(name, "."), value, op, insertIndex)
		} else {
			cfg.Set(name, value, op, insertIndex)
		}
	}
	return nil
}

// storeNestedConfig converts a dotted key into nested sub-configs (spec
// §4.4.3): each path segment but the last names (or creates) a child
// *kvalue.SchemaConfig; the final segment is set with the given
// operation/insert-index the same way a flat key would be.
func storeNestedConfig(cfg *kvalue.SchemaConfig, path []string, value kvalue.Value, op kvalue.Operation, insertIndex int) {
	cur := cfg
	for _, seg := range path[:len(path)-1] {
		existing, _ := cur.Entries.GetStr(seg)
		next, ok := existing.(*kvalue.SchemaConfig)
		if !ok {
			next = kvalue.NewSchemaConfig()
			cur.Set(seg, next, kvalue.OpUnion, -1)
		}
		cur = next
	}
	cur.Set(path[len(path)-1], value, op, insertIndex)
}

// spreadDoubleStar implements `**other` inside a config literal (spec
// §4.4.3): every entry of other (a Dict, tagged as union, or another
// SchemaConfig, keeping its own per-key operation/insert-index) is set
// into cfg, replacing any entry of the same key.
func spreadDoubleStar(cfg *kvalue.SchemaConfig, other kvalue.Value) error {
	switch src := other.(type) {
	case *kvalue.Dict:
		return src.Each(func(k, v kvalue.Value) error {
			cfg.Set(keyString(k), v, kvalue.OpUnion, -1)
			return nil
		})
	case *kvalue.SchemaConfig:
		return src.Entries.Each(func(k, v kvalue.Value) error {
			name := keyString(k)
			tag := src.Tags[name]
			cfg.Set(name, v, tag.Operation, tag.InsertIndex)
			return nil
		})
	default:
		return kerrors.New(kerrors.ClassType, kerrors.VM004, "cannot double-star unpack "+kvalue.TypeStr(other)+" into a schema config")
	}
}

func keyString(v kvalue.Value) string {
	if s, ok := v.(*kvalue.String); ok {
		return s.Value
	}
	return strings.TrimSpace(v.String())
}
