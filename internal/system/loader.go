package system

import (
	"os"

	"sigil/internal/compiler"
	"sigil/internal/parser"
)

// Loader distributes parsed rules onto registered systems by their system
// path. The first system with a matching name receives the rule.
type Loader struct {
	systems []*System
}

func NewLoader(systems ...*System) *Loader {
	return &Loader{systems: systems}
}

// LoadFile loads every rule in the file, wrapping any failure with the path.
func (l *Loader) LoadFile(path string) (int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, &FileLoadError{Path: path, Err: err}
	}
	count, err := l.loadSource(path, string(contents))
	if err != nil {
		return 0, &FileLoadError{Path: path, Err: err}
	}
	return count, nil
}

// LoadString loads every rule in the source text and returns how many rules
// were loaded.
func (l *Loader) LoadString(contents string) (int, error) {
	return l.loadSource("<string>", contents)
}

func (l *Loader) loadSource(name, contents string) (int, error) {
	rules, err := parser.ParseSource(name, contents)
	if err != nil {
		return 0, &ParseError{Err: err}
	}
	for _, rule := range rules {
		sys := l.findSystem(rule.SystemName)
		if sys == nil {
			return 0, &UnknownSystemError{Name: rule.SystemName}
		}
		compiled, err := compiler.Compile(rule, sys.InputVariables())
		if err != nil {
			return 0, err
		}
		if err := sys.LoadCompiled(compiled); err != nil {
			return 0, err
		}
	}
	return len(rules), nil
}

func (l *Loader) findSystem(name string) *System {
	for _, sys := range l.systems {
		if sys.Name() == name {
			return sys
		}
	}
	return nil
}
