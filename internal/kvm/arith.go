package kvm

import (
	"math"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

func asFloat(v kvalue.Value) (float64, bool) {
	switch t := v.(type) {
	case *kvalue.Int:
		return float64(t.Value), true
	case *kvalue.Float:
		return t.Value, true
	}
	return 0, false
}

func evalUnary(op kvalue.Opcode, v kvalue.Value) (kvalue.Value, error) {
	switch op {
	case kvalue.OpUnaryNot:
		return kvalue.NewBool(!kvalue.Truthy(v)), nil
	case kvalue.OpUnaryPositive:
		if _, ok := asFloat(v); ok {
			return v, nil
		}
		return nil, typeErrUnary(v)
	case kvalue.OpUnaryNegative:
		switch t := v.(type) {
		case *kvalue.Int:
			return kvalue.NewInt(-t.Value), nil
		case *kvalue.Float:
			return kvalue.NewFloat(-t.Value), nil
		}
		return nil, typeErrUnary(v)
	case kvalue.OpUnaryInvert:
		t, ok := v.(*kvalue.Int)
		if !ok {
			return nil, typeErrUnary(v)
		}
		return kvalue.NewInt(^t.Value), nil
	}
	return nil, typeErrUnary(v)
}

func typeErrUnary(v kvalue.Value) error {
	return kerrors.New(kerrors.ClassType, kerrors.VM004, "unary operator not supported on "+kvalue.TypeStr(v))
}

// evalBinary implements spec §4.4.3's binary arithmetic/comparison
// group: BINARY_ADD concatenates strings/lists, numeric ops promote
// int+int->int, else float.
func evalBinary(op kvalue.Opcode, lhs, rhs kvalue.Value) (kvalue.Value, error) {
	switch op {
	case kvalue.OpBinaryAdd:
		if ls, ok := lhs.(*kvalue.String); ok {
			if rs, ok := rhs.(*kvalue.String); ok {
				return kvalue.NewString(ls.Value + rs.Value), nil
			}
		}
		if ll, ok := lhs.(*kvalue.List); ok {
			if rl, ok := rhs.(*kvalue.List); ok {
				out := make([]kvalue.Value, 0, len(ll.Elements)+len(rl.Elements))
				out = append(out, ll.Elements...)
				out = append(out, rl.Elements...)
				return kvalue.NewList(out...), nil
			}
		}
	case kvalue.OpCompareEqual:
		return kvalue.NewBool(kvalue.Equals(lhs, rhs)), nil
	case kvalue.OpCompareNotEqual:
		return kvalue.NewBool(!kvalue.Equals(lhs, rhs)), nil
	}

	li, lInt := lhs.(*kvalue.Int)
	ri, rInt := rhs.(*kvalue.Int)
	if lInt && rInt {
		if v, ok, err := intBinary(op, li.Value, ri.Value); ok {
			return v, err
		}
	}
	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if lok && rok {
		return floatBinary(op, lf, rf)
	}
	return nil, kerrors.New(kerrors.ClassType, kerrors.VM004,
		"binary operator not supported between "+kvalue.TypeStr(lhs)+" and "+kvalue.TypeStr(rhs))
}

func intBinary(op kvalue.Opcode, a, b int64) (kvalue.Value, bool, error) {
	switch op {
	case kvalue.OpBinaryAdd:
		return kvalue.NewInt(a + b), true, nil
	case kvalue.OpBinarySubtract:
		return kvalue.NewInt(a - b), true, nil
	case kvalue.OpBinaryMultiply:
		return kvalue.NewInt(a * b), true, nil
	case kvalue.OpBinaryFloorDivide:
		if b == 0 {
			return nil, true, kerrors.New(kerrors.ClassEvaluation, kerrors.VM004, "division by zero")
		}
		return kvalue.NewInt(a / b), true, nil
	case kvalue.OpBinaryModulo:
		if b == 0 {
			return nil, true, kerrors.New(kerrors.ClassEvaluation, kerrors.VM004, "modulo by zero")
		}
		return kvalue.NewInt(a % b), true, nil
	case kvalue.OpBinaryLShift:
		return kvalue.NewInt(a << uint(b)), true, nil
	case kvalue.OpBinaryRShift:
		return kvalue.NewInt(a >> uint(b)), true, nil
	case kvalue.OpBinaryAnd:
		return kvalue.NewInt(a & b), true, nil
	case kvalue.OpBinaryOr:
		return kvalue.NewInt(a | b), true, nil
	case kvalue.OpBinaryXor:
		return kvalue.NewInt(a ^ b), true, nil
	case kvalue.OpBinaryDivide:
		if b == 0 {
			return nil, true, kerrors.New(kerrors.ClassEvaluation, kerrors.VM004, "division by zero")
		}
		return kvalue.NewFloat(float64(a) / float64(b)), true, nil
	case kvalue.OpBinaryPower:
		return kvalue.NewInt(int64(math.Pow(float64(a), float64(b)))), true, nil
	case kvalue.OpCompareLess:
		return kvalue.NewBool(a < b), true, nil
	case kvalue.OpCompareLessEqual:
		return kvalue.NewBool(a <= b), true, nil
	case kvalue.OpCompareGreater:
		return kvalue.NewBool(a > b), true, nil
	case kvalue.OpCompareGreaterEqual:
		return kvalue.NewBool(a >= b), true, nil
	}
	return nil, false, nil
}

func floatBinary(op kvalue.Opcode, a, b float64) (kvalue.Value, error) {
	switch op {
	case kvalue.OpBinaryAdd:
		return kvalue.NewFloat(a + b), nil
	case kvalue.OpBinarySubtract:
		return kvalue.NewFloat(a - b), nil
	case kvalue.OpBinaryMultiply:
		return kvalue.NewFloat(a * b), nil
	case kvalue.OpBinaryDivide:
		return kvalue.NewFloat(a / b), nil
	case kvalue.OpBinaryFloorDivide:
		return kvalue.NewFloat(math.Floor(a / b)), nil
	case kvalue.OpBinaryModulo:
		return kvalue.NewFloat(math.Mod(a, b)), nil
	case kvalue.OpBinaryPower:
		return kvalue.NewFloat(math.Pow(a, b)), nil
	case kvalue.OpCompareLess:
		return kvalue.NewBool(a < b), nil
	case kvalue.OpCompareLessEqual:
		return kvalue.NewBool(a <= b), nil
	case kvalue.OpCompareGreater:
		return kvalue.NewBool(a > b), nil
	case kvalue.OpCompareGreaterEqual:
		return kvalue.NewBool(a >= b), nil
	}
	return nil, kerrors.New(kerrors.ClassType, kerrors.VM004, "float operator not supported")
}

func evalMembership(op kvalue.Opcode, lhs, rhs kvalue.Value) (kvalue.Value, error) {
	found := false
	switch c := rhs.(type) {
	case *kvalue.List:
		for _, e := range c.Elements {
			if kvalue.Equals(e, lhs) {
				found = true
				break
			}
		}
	case *kvalue.Dict:
		_, found = c.Get(lhs)
	case *kvalue.String:
		ls, ok := lhs.(*kvalue.String)
		found = ok && (ls.Value == "" || contains(c.Value, ls.Value))
	default:
		return nil, kerrors.New(kerrors.ClassType, kerrors.VM004, "'in' not supported on "+kvalue.TypeStr(rhs))
	}
	if op == kvalue.OpCompareNotIn {
		found = !found
	}
	return kvalue.NewBool(found), nil
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// evalIdentity implements COMPARE_IS/COMPARE_IS_NOT: None/Undefined
// compare by kind, everything else by the same Go pointer identity.
func evalIdentity(op kvalue.Opcode, lhs, rhs kvalue.Value) kvalue.Value {
	var same bool
	switch lhs.(type) {
	case kvalue.NoneValue:
		_, same = rhs.(kvalue.NoneValue)
	case kvalue.UndefinedValue:
		_, same = rhs.(kvalue.UndefinedValue)
	default:
		same = lhs == rhs
	}
	if op == kvalue.OpCompareIsNot {
		same = !same
	}
	return kvalue.NewBool(same)
}
