package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

func parseWith(t *testing.T, r *Registry, ext string, source string) (*Entry, *sitter.Tree, []string) {
	t.Helper()

	entry, ok, err := r.Lookup(ext)
	require.NoError(t, err)
	require.True(t, ok)

	parser := sitter.NewParser()
	defer parser.Close()
	require.NoError(t, parser.SetLanguage(entry.Language()))

	tree := parser.Parse([]byte(source), nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)

	return entry, tree, strings.Split(source, "\n")
}

const goSample = `package sample

func Greet(name string) string {
	msg := "hello " + name
	return msg
}

func add(a, b int) int {
	return a + b
}
`

func TestExtractDefinitions_GoFunctions(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, tree, lines := parseWith(t, r, ".go", goSample)

	defs := ExtractDefinitions(entry, tree, []byte(goSample), lines, DefaultMinComponentLines)

	require.Len(t, defs, 1, "add is below MinComponentLines and should be dropped")
	assert.Equal(t, 2, defs[0].StartLine)
	assert.Contains(t, defs[0].HeaderLine, "func Greet")
}

func TestExtractDefinitions_MinComponentLinesBoundary(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, tree, lines := parseWith(t, r, ".go", goSample)

	defs := ExtractDefinitions(entry, tree, []byte(goSample), lines, 3)
	require.Len(t, defs, 2, "lowering the floor to 3 should admit the 3-line add function")

	names := []string{defs[0].HeaderLine, defs[1].HeaderLine}
	assert.Contains(t, strings.Join(names, "\n"), "func add")
}

func TestExtractDefinitions_DedupesByRange(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, tree, lines := parseWith(t, r, ".go", goSample)

	defs := ExtractDefinitions(entry, tree, []byte(goSample), lines, DefaultMinComponentLines)

	seen := make(map[[2]int]bool)
	for _, d := range defs {
		key := [2]int{d.StartLine, d.EndLine}
		require.False(t, seen[key], "duplicate range %v", key)
		seen[key] = true
	}
}

func TestExtractDefinitions_SortedByStartLineThenEndLineDesc(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, tree, lines := parseWith(t, r, ".go", goSample)

	defs := ExtractDefinitions(entry, tree, []byte(goSample), lines, 1)
	for i := 1; i < len(defs); i++ {
		prev, cur := defs[i-1], defs[i]
		if prev.StartLine == cur.StartLine {
			assert.GreaterOrEqual(t, prev.EndLine, cur.EndLine)
		} else {
			assert.Less(t, prev.StartLine, cur.StartLine)
		}
	}
}

const tsxSample = `function Widget() {
	return <div className="wrapper">
		<span>hi</span>
	</div>
}

function Panel() {
	const rows = [1, 2, 3]
	return rows.map((row) => row * 2)
}
`

func TestExtractDefinitions_JSXFiltersHTMLElements(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, tree, lines := parseWith(t, r, ".tsx", tsxSample)

	defs := ExtractDefinitions(entry, tree, []byte(tsxSample), lines, DefaultMinComponentLines)

	for _, d := range defs {
		assert.False(t, htmlElementPattern.MatchString(d.HeaderLine), "unexpected markup definition: %q", d.HeaderLine)
	}

	var sawPanel bool
	for _, d := range defs {
		if strings.Contains(d.HeaderLine, "function Panel") {
			sawPanel = true
		}
	}
	assert.True(t, sawPanel, "non-markup function definitions should still be emitted")
}
