// Package parser is the glue between the participle grammar and the
// compiler-facing AST: it parses rule source text and lowers the raw grammar
// tree into ast nodes with positions.
package parser

import (
	"fmt"
	"os"
	"regexp"

	"github.com/alecthomas/participle/v2"

	"sigil/grammar"
	"sigil/internal/ast"
)

var parser = buildParser()

func buildParser() *participle.Parser[grammar.Document] {
	p, err := participle.Build[grammar.Document](
		participle.Lexer(grammar.SigilLexer),
		participle.Elide("Whitespace", "Comment", "EndMarker"),
		participle.UseLookahead(4),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}
	return p
}

// ParseFile reads and parses a rule file.
func ParseFile(path string) ([]*ast.Rule, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses rule source text into compiler-ready AST rules.
func ParseSource(sourceName string, source string) ([]*ast.Rule, error) {
	document, err := parser.ParseString(sourceName, source)
	if err != nil {
		return nil, err
	}
	return convertDocument(document)
}

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pathPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// IsVariableIdent reports whether name is usable as an input variable name.
func IsVariableIdent(name string) bool {
	return identPattern.MatchString(name)
}

// IsPath reports whether name is a valid dotted system or rule path.
func IsPath(name string) bool {
	return pathPattern.MatchString(name)
}
