package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDefinitions_OneBasedOutput(t *testing.T) {
	t.Parallel()

	defs := []Definition{
		{StartLine: 1, EndLine: 5, HeaderLine: "func Greet(name string) string {"},
		{StartLine: 9, EndLine: 12, HeaderLine: "func add(a, b int) int {  "},
	}

	out := FormatDefinitions("pkg/greet.go", defs)

	assert.Equal(t, "# greet.go\n2--6 | func Greet(name string) string {\n10--13 | func add(a, b int) int {\n", out)
}

func TestFormatDefinitions_NoDefinitions(t *testing.T) {
	t.Parallel()

	out := FormatDefinitions("empty.go", nil)
	assert.Equal(t, "# empty.go\n", out)
}
