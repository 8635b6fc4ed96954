package lsp

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// convertParseError turns a parser failure into an LSP diagnostic anchored
// at the failure position, with a rough span for visibility.
func convertParseError(err error) protocol.Diagnostic {
	line, column := 1, 1
	message := err.Error()
	if parseErr, ok := err.(participle.Error); ok {
		pos := parseErr.Position()
		line, column = pos.Line, pos.Column
		message = parseErr.Message()
	}
	return protocol.Diagnostic{
		Range:    diagnosticRange(line, column, 5),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("sigil-parser"),
		Message:  message,
	}
}

func duplicateRuleDiagnostic(line, column int, key string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    diagnosticRange(line, column, 4),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("sigil-loader"),
		Message:  fmt.Sprintf("duplicate rule %s", key),
	}
}

func diagnosticRange(line, column, span int) protocol.Range {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(line - 1),
			Character: uint32(column - 1),
		},
		End: protocol.Position{
			Line:      uint32(line - 1),
			Character: uint32(column - 1 + span),
		},
	}
}

func ptrSeverity(severity protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &severity
}

func ptrString(s string) *string { return &s }
