package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatDefinitions renders the on-demand "definitions for a file" view:
// a header line followed by one "startLine--endLine | header" line per
// definition, in 1-based external line numbers.
func FormatDefinitions(relPath string, defs []Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", filepath.Base(relPath))
	for _, d := range defs {
		fmt.Fprintf(&b, "%d--%d | %s\n", d.StartLine+1, d.EndLine+1, strings.TrimSpace(d.HeaderLine))
	}
	return b.String()
}
