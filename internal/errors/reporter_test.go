package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatAnchorsSource(t *testing.T) {
	color.NoColor = true

	source := "rule test:x {\n\t$unknown.foo: 23,\n} do {}"
	reporter := NewReporter("test.sgl", source)

	formatted := reporter.Format(ErrorUnknownBinding, 2, 2, "unknown binding `$unknown` at line 2")

	assert.Contains(t, formatted, "error[R0007]")
	assert.Contains(t, formatted, "test.sgl:2:2")
	assert.Contains(t, formatted, "$unknown.foo: 23,")
	assert.Contains(t, formatted, "^")
	assert.Contains(t, formatted, Describe(ErrorUnknownBinding))
}

func TestFormatWithoutLocation(t *testing.T) {
	color.NoColor = true

	reporter := NewReporter("test.sgl", "rule test:x {} do {}")
	formatted := reporter.Format(ErrorRepeatBindings, 0, 0, "repeated bindings")

	assert.Contains(t, formatted, "error[R0004]")
	assert.True(t, strings.Contains(formatted, "test.sgl"))
}

func TestDescribe(t *testing.T) {
	assert.NotEqual(t, "Unknown diagnostic code", Describe(ErrorIllegalWildcard))
	assert.NotEqual(t, "Unknown diagnostic code", Describe(ErrorStopped))
	assert.Equal(t, "Unknown diagnostic code", Describe("Z9999"))
}
