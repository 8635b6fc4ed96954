package system

import (
	"fmt"
)

// InvalidNameError reports a system name that is not a valid dotted path.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid system name %q", e.Name)
}

// InvalidInputVariableError reports an input variable name that is not a
// valid identifier.
type InvalidInputVariableError struct {
	Name string
}

func (e *InvalidInputVariableError) Error() string {
	return fmt.Sprintf("invalid input variable name %q", e.Name)
}

// DuplicateInputVariableError reports an input variable declared twice.
type DuplicateInputVariableError struct {
	Name string
}

func (e *DuplicateInputVariableError) Error() string {
	return fmt.Sprintf("duplicate input variable %q", e.Name)
}

// DuplicateRuleNameError reports a rule name already present in the system.
type DuplicateRuleNameError struct {
	System string
	Rule   string
}

func (e *DuplicateRuleNameError) Error() string {
	return fmt.Sprintf("duplicate rule name %q in system %q", e.Rule, e.System)
}

// UnknownSystemError reports a rule addressed to a system the loader does
// not know.
type UnknownSystemError struct {
	Name string
}

func (e *UnknownSystemError) Error() string {
	return fmt.Sprintf("no such system %q", e.Name)
}

// ParseError wraps a surface syntax failure, keeping the parser's location
// information intact.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidInputLenError reports a run invoked with the wrong number of input
// objects.
type InvalidInputLenError struct {
	Expected int
	Received int
}

func (e *InvalidInputLenError) Error() string {
	return fmt.Sprintf("expected %d input arguments, received %d", e.Expected, e.Received)
}

// StoppedError reports a run terminated by its control callback.
type StoppedError struct {
	Count uint64
}

func (e *StoppedError) Error() string {
	return fmt.Sprintf("stopped after %d rule firings", e.Count)
}

// FileLoadError wraps any load failure with the path that caused it.
type FileLoadError struct {
	Path string
	Err  error
}

func (e *FileLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %s", e.Path, e.Err)
}

func (e *FileLoadError) Unwrap() error {
	return e.Err
}
