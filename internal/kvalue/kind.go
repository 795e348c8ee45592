// Package kvalue implements the tagged Value variant that flows through
// the bytecode VM and schema runtime (spec §3.1, component A).
package kvalue

// Kind tags a Value's variant for fast switches without type assertions
// in hot dispatch paths.
type Kind int

const (
	KindNone Kind = iota
	KindUndefined
	KindBool
	KindInt
	KindFloat
	KindString
	KindNumberMultiplier
	KindList
	KindDict
	KindSchema
	KindSchemaConfig
	KindFunction
	KindBuiltin
	KindMemberFunction
	KindDecorator
	KindIterator
	KindType
	KindModule
	KindSlice
	KindUnpack
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindUndefined:
		return "Undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindNumberMultiplier:
		return "number_multiplier"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindSchema:
		return "schema"
	case KindSchemaConfig:
		return "schema_config"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "function"
	case KindMemberFunction:
		return "function"
	case KindDecorator:
		return "decorator"
	case KindIterator:
		return "iterator"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindSlice:
		return "slice"
	case KindUnpack:
		return "unpack"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Value is the single tagged-sum interface every runtime datum satisfies.
// Implementations own their payload directly (spec §9 "Dynamic value
// tagging"); large collections share storage via the slice/map headers
// Go already gives reference semantics to, so no extra refcounting is
// needed at this layer.
type Value interface {
	Kind() Kind
	String() string
}
