// Package system holds compiled rules for one namespace and drives rule
// firings against an object space under one of three strategies: run to the
// first firing, saturate rule by rule, or saturate the whole system.
package system

import (
	"sigil/internal/compiler"
	"sigil/internal/data"
	"sigil/internal/parser"
	"sigil/internal/runtime"
	"sigil/internal/space"
)

// Control is a control callback's verdict after a successful firing.
type Control uint8

const (
	Continue Control = iota
	Stop
)

// ControlFunc is consulted after every successful firing of the saturation
// strategies. Returning Stop terminates the run with a StoppedError carrying
// the firing count so far.
type ControlFunc func(ruleName string, acc space.Access, count uint64) Control

// System is a named, ordered collection of compiled rules sharing input
// variable names.
type System struct {
	name           string
	inputVariables []string
	maxBindingLen  int
	rules          []*compiler.CompiledRule
}

// New creates an empty system. The name must be a valid dotted path and the
// input variable names must be valid, distinct identifiers.
func New(name string, inputVariables ...string) (*System, error) {
	if !parser.IsPath(name) {
		return nil, &InvalidNameError{Name: name}
	}
	for i, variable := range inputVariables {
		if !parser.IsVariableIdent(variable) {
			return nil, &InvalidInputVariableError{Name: variable}
		}
		for _, rest := range inputVariables[i+1:] {
			if rest == variable {
				return nil, &DuplicateInputVariableError{Name: variable}
			}
		}
	}
	return &System{
		name:           name,
		inputVariables: append([]string(nil), inputVariables...),
		maxBindingLen:  len(inputVariables),
	}, nil
}

func (s *System) Name() string {
	return s.name
}

func (s *System) InputVariables() []string {
	return s.inputVariables
}

// Count returns the number of loaded rules.
func (s *System) Count() int {
	return len(s.rules)
}

// LoadCompiled adds an already-compiled rule, rejecting duplicate names and
// growing the shared binding array as needed. The loader uses it for parsed
// rules; embedders use it for builder-made ones.
func (s *System) LoadCompiled(rule *compiler.CompiledRule) error {
	for _, existing := range s.rules {
		if existing.Name() == rule.Name() {
			return &DuplicateRuleNameError{System: s.name, Rule: rule.Name()}
		}
	}
	if rule.BindingsLen() > s.maxBindingLen {
		s.maxBindingLen = rule.BindingsLen()
	}
	s.rules = append(s.rules, rule)
	return nil
}

// makeBindings lays out the shared binding array for a run: the input object
// references first, zero values for the compiler-allocated rest.
func (s *System) makeBindings(inputs []data.Id) ([]data.Value, error) {
	if len(inputs) != len(s.inputVariables) {
		return nil, &InvalidInputLenError{
			Expected: len(s.inputVariables),
			Received: len(inputs),
		}
	}
	bindings := make([]data.Value, s.maxBindingLen)
	for i, id := range inputs {
		bindings[i] = data.Obj(id)
	}
	return bindings, nil
}

// RunToFirst attempts one firing per rule in declaration order and returns
// the name of the first rule that fired, or ok=false when none did.
func (s *System) RunToFirst(acc space.Access, inputs ...data.Id) (name string, ok bool, err error) {
	bindings, err := s.makeBindings(inputs)
	if err != nil {
		return "", false, err
	}
	for _, rule := range s.rules {
		if runtime.AttemptRuleFiring(rule, acc, bindings) {
			return rule.Name(), true, nil
		}
	}
	return "", false, nil
}

// RunRuleSaturation fires each rule in order until it stops matching, then
// moves on. Returns the total firing count.
func (s *System) RunRuleSaturation(acc space.Access, inputs ...data.Id) (uint64, error) {
	return s.RunRuleSaturationWithControl(acc, inputs, nil)
}

// RunRuleSaturationWithControl is RunRuleSaturation with a control callback
// consulted after every firing; a nil control never stops.
func (s *System) RunRuleSaturationWithControl(acc space.Access, inputs []data.Id, control ControlFunc) (uint64, error) {
	bindings, err := s.makeBindings(inputs)
	if err != nil {
		return 0, err
	}
	var runCount uint64
	for _, rule := range s.rules {
		for runtime.AttemptRuleFiring(rule, acc, bindings) {
			runCount++
			if control != nil && control(rule.Name(), acc, runCount) == Stop {
				return runCount, &StoppedError{Count: runCount}
			}
		}
	}
	return runCount, nil
}

// RunSaturation repeatedly scans all rules in declaration order, restarting
// from the top after every successful firing, until one full pass fires
// nothing. Returns the total firing count.
func (s *System) RunSaturation(acc space.Access, inputs ...data.Id) (uint64, error) {
	return s.RunSaturationWithControl(acc, inputs, nil)
}

// RunSaturationWithControl is RunSaturation with a control callback
// consulted after every firing; a nil control never stops.
func (s *System) RunSaturationWithControl(acc space.Access, inputs []data.Id, control ControlFunc) (uint64, error) {
	bindings, err := s.makeBindings(inputs)
	if err != nil {
		return 0, err
	}
	var runCount uint64
scan:
	for {
		for _, rule := range s.rules {
			if runtime.AttemptRuleFiring(rule, acc, bindings) {
				runCount++
				if control != nil && control(rule.Name(), acc, runCount) == Stop {
					return runCount, &StoppedError{Count: runCount}
				}
				continue scan
			}
		}
		return runCount, nil
	}
}
