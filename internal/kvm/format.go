package kvm

import (
	"strings"

	json "github.com/goccy/go-json"
	yaml "github.com/goccy/go-yaml"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

// stepFormat implements spec §4.4.3 FORMAT_VALUES n: top-of-stack
// format spec in {"", "#json", "#yaml"}; unknown spec is an error.
func (vm *VM) stepFormat(f *Frame, instr kvalue.Instruction) error {
	specVal := f.pop()
	spec, _ := specVal.(*kvalue.String)
	values := f.popN(int(instr.Arg))

	out, err := formatValues(spec, values)
	if err != nil {
		return err
	}
	f.push(kvalue.NewString(out))
	return nil
}

func formatValues(spec *kvalue.String, values []kvalue.Value) (string, error) {
	specStr := ""
	if spec != nil {
		specStr = spec.Value
	}
	switch specStr {
	case "":
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = v.String()
		}
		return strings.Join(parts, ""), nil
	case "#json":
		return marshalValues(values, func(v any) ([]byte, error) { return json.Marshal(v) })
	case "#yaml":
		return marshalValues(values, func(v any) ([]byte, error) { return yaml.Marshal(v) })
	}
	return "", kerrors.New(kerrors.ClassInvalidFormat, kerrors.VM005, "invalid format spec '"+specStr+"'").WithData("spec", specStr)
}

func marshalValues(values []kvalue.Value, marshal func(any) ([]byte, error)) (string, error) {
	var native any
	if len(values) == 1 {
		n, err := kvalue.ToNative(values[0])
		if err != nil {
			return "", err
		}
		native = n
	} else {
		natives := make([]any, len(values))
		for i, v := range values {
			n, err := kvalue.ToNative(v)
			if err != nil {
				return "", err
			}
			natives[i] = n
		}
		native = natives
	}
	out, err := marshal(native)
	if err != nil {
		return "", kerrors.New(kerrors.ClassInvalidFormat, kerrors.VM005, err.Error())
	}
	return string(out), nil
}
