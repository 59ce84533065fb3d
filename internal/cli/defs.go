package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/codeindex/internal/indexer"
	"github.com/mvp-joe/codeindex/internal/indexer/parsers"
	"github.com/spf13/cobra"
)

// defsCmd represents the defs command
var defsCmd = &cobra.Command{
	Use:   "defs [file]",
	Short: "Print the syntactic definitions the chunker finds in a file",
	Long: `Defs runs the chunker's language-parser registry and tag-capture
processor against a single file and prints the "definitions for a file"
format external tooling consumes: a "# basename" header line
followed by one "startLine--endLine | header" line per definition.`,
	Args: cobra.ExactArgs(1),
	RunE: runDefs,
}

func init() {
	rootCmd.AddCommand(defsCmd)
}

func runDefs(cmd *cobra.Command, args []string) error {
	path := args[0]

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	chunker := indexer.NewChunker(parsers.NewRegistry())
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}

	defs, _, _, err := chunker.FileDefinitions(indexer.FileDescriptor{
		AbsPath: abs,
		RelPath: path,
		Ext:     ext,
	})
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fmt.Fprint(os.Stdout, parsers.FormatDefinitions(path, defs))
	return nil
}
