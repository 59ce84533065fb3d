package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkdownDefinitions_NestedHeadings(t *testing.T) {
	t.Parallel()

	source := `# Title
intro line

## Section One
body one

### Subsection
body sub

## Section Two
body two
`
	lines := strings.Split(source, "\n")
	defs := ExtractMarkdownDefinitions(lines)

	require.Len(t, defs, 4)

	// Subsection closes before Section Two opens.
	var subsection Definition
	for _, d := range defs {
		if strings.Contains(d.HeaderLine, "Subsection") {
			subsection = d
		}
	}
	require.NotEmpty(t, subsection.HeaderLine)
	assert.Equal(t, 6, subsection.StartLine)
	assert.Equal(t, 8, subsection.EndLine)
}

func TestExtractMarkdownDefinitions_SingleShortHeadingStillEmitted(t *testing.T) {
	t.Parallel()

	// Markdown definitions are exempt from MinComponentLines.
	lines := strings.Split("# Only heading\n", "\n")
	defs := ExtractMarkdownDefinitions(lines)

	require.Len(t, defs, 1)
	assert.Equal(t, 0, defs[0].StartLine)
}

func TestExtractMarkdownDefinitions_NoHeadings(t *testing.T) {
	t.Parallel()

	lines := strings.Split("just text\nmore text\n", "\n")
	defs := ExtractMarkdownDefinitions(lines)
	assert.Empty(t, defs)
}
