package parsers

import (
	"regexp"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultMinComponentLines is the default lower bound on a definition's
// line span. The bound in use is carried as a parameter, never a
// package-level mutable, per the Design Notes on avoiding a global
// MIN_COMPONENT_LINES.
const DefaultMinComponentLines = 4

// htmlElementPattern filters noisy JSX/TSX markup nodes from the
// definition list. Component definitions start with
// an uppercase identifier and are never matched by this pattern.
var htmlElementPattern = regexp.MustCompile(`^[^A-Z]*<\/?(div|span|button|input|h[1-6]|p|a|img|ul|li|form)\b`)

// ExtractDefinitions runs the tag-capture processor against one parsed
// file: walk query captures, compute each definition's line range, drop
// anything shorter than minComponentLines, dedupe by range, and filter
// out syntactic noise that looks like JSX markup. Definition.Name is left
// empty.
func ExtractDefinitions(entry *Entry, tree *sitter.Tree, source []byte, lines []string, minComponentLines int) []Definition {
	qc := sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(entry.Query(), tree.RootNode(), source)
	captureNames := entry.Query().CaptureNames()

	type candidate struct {
		node       sitter.Node
		isName     bool
		headerNode sitter.Node
	}

	var candidates []candidate
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			isDefinition := strings.Contains(name, "definition")
			isName := strings.Contains(name, "name")
			if !isDefinition && !isName {
				// step 1: keep only definition/name captures
				continue
			}

			node := capture.Node
			target := node
			if isName {
				if parent := node.Parent(); parent != nil {
					target = *parent
				}
			}
			candidates = append(candidates, candidate{node: target, isName: isName, headerNode: node})
		}
	}

	type recorded struct {
		def      Definition
		fromName bool
	}
	byRange := make(map[[2]int]recorded)
	var order [][2]int

	emit := func(node sitter.Node, fromName bool) {
		startLine := int(node.StartPosition().Row)
		endLine := int(node.EndPosition().Row)
		span := endLine - startLine + 1
		if span < minComponentLines {
			return
		}
		key := [2]int{startLine, endLine}
		if _, exists := byRange[key]; exists {
			// step 5: dedup by (startLine, endLine); first winner stands
			return
		}

		var header string
		if startLine >= 0 && startLine < len(lines) {
			header = lines[startLine]
		}

		if entry.JSXLike && htmlElementPattern.MatchString(header) {
			// step 6: drop noisy JSX/TSX markup nodes
			return
		}

		byRange[key] = recorded{def: Definition{StartLine: startLine, EndLine: endLine, HeaderLine: header}, fromName: fromName}
		order = append(order, key)
	}

	for _, c := range candidates {
		emit(c.node, c.isName)

		if c.isName {
			// step 7: also emit the name node's enclosing parent range, if
			// new and large enough.
			if parent := c.headerNode.Parent(); parent != nil {
				emit(*parent, false)
			}
		}
	}

	defs := make([]Definition, 0, len(order))
	for _, key := range order {
		defs = append(defs, byRange[key].def)
	}

	// step 8: sort by startLine ascending, ties by endLine descending.
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].StartLine != defs[j].StartLine {
			return defs[i].StartLine < defs[j].StartLine
		}
		return defs[i].EndLine > defs[j].EndLine
	})

	return defs
}
