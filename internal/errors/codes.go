package errors

// Diagnostic codes used in error messages and documentation to identify
// failures consistently across the toolchain.
//
// Code ranges:
// R0001-R0099: rule compile errors (binding discipline, clause legality)
// L0100-L0199: loading errors (parse, duplicate rules, system lookup)
// X0200-X0299: execution errors

const (
	// R0001: `$` where a name was required
	ErrorIllegalWildcard = "R0001"

	// R0002: a name where only a wildcard is legal
	ErrorIllegalNamedBinding = "R0002"

	// R0003: bare binding clause without a structural spec
	ErrorIllegalBindingMatch = "R0003"

	// R0004: same name introduced as a new binding twice
	ErrorRepeatBindings = "R0004"

	// R0005: non-input binding used only once
	ErrorSingleBindingUse = "R0005"

	// R0006: existing name reused where a fresh one is required
	ErrorIllegalReuse = "R0006"

	// R0007: reference to a name that was never introduced
	ErrorUnknownBinding = "R0007"

	// R0008: removal specification that cannot be matched
	ErrorIllegalRemoval = "R0008"

	// R0009: enum specification in apply position
	ErrorIllegalEnumSpec = "R0009"

	// R0010: object specification in remove position
	ErrorIllegalObjectSpec = "R0010"

	// R0099: generic compile error
	ErrorGenericCompile = "R0099"

	// L0100: source text failed to parse
	ErrorParse = "L0100"

	// L0101: duplicate rule name within a system
	ErrorDuplicateRule = "L0101"

	// L0102: rule addressed to an unknown system
	ErrorUnknownSystem = "L0102"

	// X0200: wrong number of run inputs
	ErrorInvalidInputLen = "X0200"

	// X0201: run stopped by the control callback
	ErrorStopped = "X0201"
)

// Describe returns a human-readable description of a diagnostic code.
func Describe(code string) string {
	switch code {
	case ErrorIllegalWildcard:
		return "A wildcard variable appeared in a position that requires a name"
	case ErrorIllegalNamedBinding:
		return "A named variable appeared in a position that requires a wildcard"
	case ErrorIllegalBindingMatch:
		return "A bare binding clause needs a structural specification to match against"
	case ErrorRepeatBindings:
		return "The same variable name was introduced as a new binding more than once"
	case ErrorSingleBindingUse:
		return "A binding must be used at least twice: one introduction and one use"
	case ErrorIllegalReuse:
		return "An already-bound variable was reused where a fresh binding is required"
	case ErrorUnknownBinding:
		return "A variable was referenced before any clause introduced it"
	case ErrorIllegalRemoval:
		return "The removal specification cannot be matched against stored values"
	case ErrorIllegalEnumSpec:
		return "Enum specifications are only legal in selection position"
	case ErrorIllegalObjectSpec:
		return "Object specifications are not legal in remove position"
	case ErrorParse:
		return "The rule source text failed to parse"
	case ErrorDuplicateRule:
		return "A rule with this name already exists in the system"
	case ErrorUnknownSystem:
		return "The rule addresses a system that was not registered with the loader"
	case ErrorInvalidInputLen:
		return "The number of run inputs does not match the system's input variables"
	case ErrorStopped:
		return "The control callback requested the run to stop"
	default:
		return "Unknown diagnostic code"
	}
}
