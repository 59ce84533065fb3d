package parsers

import (
	"regexp"
)

// headingPattern matches ATX-style markdown headings ("#", "##", ...).
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ExtractMarkdownDefinitions is the dedicated heading parser for
// markdown files. Each heading opens a
// definition that runs until the next heading of equal-or-shallower
// depth, or end of file. Markdown chunks are exempt from
// MIN_COMPONENT_LINES.
func ExtractMarkdownDefinitions(lines []string) []Definition {
	type open struct {
		depth int
		start int
	}
	var stack []open
	var defs []Definition

	closeTo := func(depth int, endLine int) {
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			defs = append(defs, Definition{
				StartLine:  top.start,
				EndLine:    endLine,
				HeaderLine: lines[top.start],
			})
		}
	}

	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		depth := len(m[1])
		closeTo(depth, i-1)
		stack = append(stack, open{depth: depth, start: i})
	}
	closeTo(1, len(lines)-1)

	return defs
}
