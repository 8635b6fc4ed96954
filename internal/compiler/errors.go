package compiler

import (
	"fmt"
	"strings"

	"sigil/internal/errors"
)

// ErrorKind classifies a compile error.
type ErrorKind uint8

const (
	// ErrIllegalWildcard: `$` appeared where a name was required.
	ErrIllegalWildcard ErrorKind = iota
	// ErrIllegalNamedBinding: a name appeared where only a wildcard is legal.
	ErrIllegalNamedBinding
	// ErrIllegalBindingMatch: a bare binding clause without a structural spec.
	ErrIllegalBindingMatch
	// ErrRepeatBindings: the same name was introduced as a new binding twice.
	ErrRepeatBindings
	// ErrSingleBindingUse: a non-input binding was used only once.
	ErrSingleBindingUse
	// ErrIllegalReuse: an existing name was reused where a fresh one is required.
	ErrIllegalReuse
	// ErrIllegalNewBinding: a reference to a name that was never introduced.
	ErrIllegalNewBinding
	// ErrIllegalRemoval: a removal specification that cannot be matched.
	ErrIllegalRemoval
	// ErrIllegalEnumSpecification: an enum specification in apply position.
	ErrIllegalEnumSpecification
	// ErrIllegalObjectSpecification: an object specification in remove position.
	ErrIllegalObjectSpecification
)

// CompileError is an authoring error found while lowering a rule. It carries
// the source line of the offending clause and, where applicable, the variable
// names involved.
type CompileError struct {
	Kind  ErrorKind
	Line  int
	Name  string
	Names []string
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case ErrIllegalWildcard:
		return fmt.Sprintf("illegal wildcard variable at line %d", e.Line)
	case ErrIllegalNamedBinding:
		return fmt.Sprintf("illegal named binding `$%s` at line %d", e.Name, e.Line)
	case ErrIllegalBindingMatch:
		return fmt.Sprintf("illegal match against binding `$%s` at line %d", e.Name, e.Line)
	case ErrRepeatBindings:
		return fmt.Sprintf("multiple distinct bindings to %s are generated", displayVarNames(e.Names))
	case ErrSingleBindingUse:
		return fmt.Sprintf("bindings %s are only used once", displayVarNames(e.Names))
	case ErrIllegalReuse:
		return fmt.Sprintf("illegal reuse of variable `$%s` for binding at line %d", e.Name, e.Line)
	case ErrIllegalNewBinding:
		return fmt.Sprintf("unknown binding `$%s` at line %d", e.Name, e.Line)
	case ErrIllegalRemoval:
		return fmt.Sprintf("illegal removal specification at line %d", e.Line)
	case ErrIllegalEnumSpecification:
		return fmt.Sprintf("illegal place for enum specification at line %d", e.Line)
	case ErrIllegalObjectSpecification:
		return fmt.Sprintf("illegal place for object specification at line %d", e.Line)
	}
	return fmt.Sprintf("compile error at line %d", e.Line)
}

// Code returns the diagnostic code of the error kind.
func (e *CompileError) Code() string {
	switch e.Kind {
	case ErrIllegalWildcard:
		return errors.ErrorIllegalWildcard
	case ErrIllegalNamedBinding:
		return errors.ErrorIllegalNamedBinding
	case ErrIllegalBindingMatch:
		return errors.ErrorIllegalBindingMatch
	case ErrRepeatBindings:
		return errors.ErrorRepeatBindings
	case ErrSingleBindingUse:
		return errors.ErrorSingleBindingUse
	case ErrIllegalReuse:
		return errors.ErrorIllegalReuse
	case ErrIllegalNewBinding:
		return errors.ErrorUnknownBinding
	case ErrIllegalRemoval:
		return errors.ErrorIllegalRemoval
	case ErrIllegalEnumSpecification:
		return errors.ErrorIllegalEnumSpec
	case ErrIllegalObjectSpecification:
		return errors.ErrorIllegalObjectSpec
	}
	return errors.ErrorGenericCompile
}

func displayVarNames(names []string) string {
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "`$%s`", name)
	}
	return b.String()
}
