// Package kerrors defines the error-class taxonomy and diagnostic codes
// for the KCL evaluation engine. Every runtime failure is reported
// through a *Diagnostic built from one of these codes so that callers
// can switch on class without parsing messages.
package kerrors

// Class is the fixed enumeration of diagnostic classes from spec §6.3.
type Class string

const (
	ClassEvaluation       Class = "evaluation"
	ClassAttribute        Class = "attribute"
	ClassType             Class = "type"
	ClassRecursion        Class = "recursion"
	ClassSchemaCheck      Class = "schema_check"
	ClassCannotAddMembers Class = "cannot_add_members"
	ClassImmutable        Class = "immutable"
	ClassAssertion        Class = "assertion"
	ClassRecursiveLoad    Class = "recursive_load"
	ClassCycleInherit     Class = "cycle_inherit"
	ClassMultiInherit     Class = "multi_inherit"
	ClassIndexSignature   Class = "index_signature"
	ClassName             Class = "name"
	ClassValue            Class = "value"
	ClassKey              Class = "key"
	ClassUniqueKey        Class = "unique_key"
	ClassIllegalArgument  Class = "illegal_argument"
	ClassIllegalAttribute Class = "illegal_attribute"
	ClassIllegalInherit   Class = "illegal_inherit"
	ClassCompile          Class = "compile"
	ClassInvalidFormat    Class = "invalid_format_spec"
	ClassPlan             Class = "plan"
)

// Error code constants, grouped by component, following the teacher's
// PHASE### numbering convention.
const (
	// Value/Object model (VAL###)
	VAL001 = "VAL001" // unsupported native conversion
	VAL002 = "VAL002" // reserved __settings__ key malformed

	// Type system (TYP###)
	TYP001 = "TYP001" // assignability failure
	TYP002 = "TYP002" // relaxed key refused: no index signature
	TYP003 = "TYP003" // relaxed key type mismatch
	TYP004 = "TYP004" // attribute narrowing violation across inheritance

	// Unification engine (UNI###)
	UNI001 = "UNI001" // conflicting values under idempotence check
	UNI002 = "UNI002" // unique violation
	UNI003 = "UNI003" // unification conflict (delta does not subsume)
	UNI004 = "UNI004" // type mismatch during merge (list/dict vs scalar, schema vs other)

	// Bytecode VM (VM###)
	VM001 = "VM001" // name not found in locals/globals/builtins
	VM002 = "VM002" // unknown kwarg at call site
	VM003 = "VM003" // recursive module import
	VM004 = "VM004" // unsupported type-cast conversion
	VM005 = "VM005" // invalid format spec
	VM006 = "VM006" // assertion failure

	// Schema runtime (SCH###)
	SCH001 = "SCH001" // cycle in schema inheritance
	SCH002 = "SCH002" // mixin naming violation (must end in Mixin)
	SCH003 = "SCH003" // inheriting from a mixin
	SCH004 = "SCH004" // reserved type name reused as schema name
	SCH005 = "SCH005" // cannot add members (relaxed key rejected)
	SCH006 = "SCH006" // required attribute left None/Undefined
	SCH007 = "SCH007" // schema check-block failure
	SCH008 = "SCH008" // unknown decorator
	SCH009 = "SCH009" // mixin not found / not a schema

	// Lazy eval / back-tracking (LAZ###)
	LAZ001 = "LAZ001" // recursion error resolving an attribute
	LAZ002 = "LAZ002" // name not defined in any fallback scope
)
