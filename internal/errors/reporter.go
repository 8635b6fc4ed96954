package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats diagnostics against their source text with a caret under
// the offending line, in the style of mainstream compiler output.
type Reporter struct {
	filename string
	lines    []string
}

func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders one diagnostic. Line and column are 1-based; a zero line
// yields a location-free message.
func (r *Reporter) Format(code string, line, column int, message string) string {
	var b strings.Builder

	header := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(&b, "%s: %s\n", header.Sprintf("error[%s]", code), message)

	if line <= 0 || line > len(r.lines) {
		fmt.Fprintf(&b, "  --> %s\n", r.filename)
		return b.String()
	}

	fmt.Fprintf(&b, "  --> %s:%d:%d\n", r.filename, line, column)
	source := r.lines[line-1]
	fmt.Fprintf(&b, "   |\n%3d| %s\n", line, source)
	if column > 0 && column <= len(source)+1 {
		caret := strings.Repeat(" ", column-1) + "^"
		fmt.Fprintf(&b, "   | %s\n", color.HiRedString(caret))
	}
	if description := Describe(code); description != "Unknown diagnostic code" {
		fmt.Fprintf(&b, "   = %s %s\n", color.CyanString("note:"), description)
	}
	return b.String()
}
