package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/codeindex/internal/indexer"
	"github.com/spf13/cobra"
)

var searchLimit int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index for code relevant to a natural-language query",
	Long: `Search embeds the query with the configured provider and returns the
nearest chunks in the vector store whose score clears searchMinScore.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ix, err := indexer.New(indexer.Options{
		WorkspaceRoot: rootDir,
		CacheRoot:     cacheRoot(),
	})
	if err != nil {
		return fmt.Errorf("create indexer: %w", err)
	}

	snap, err := loadSnapshot()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if _, err := ix.Initialize(snap); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// SearchIndex needs the embedder/store clients, which exist only after
	// setup: without it the search fails with "search called before
	// indexing has started" (indexer.go). StartIndexing performs that
	// setup and also brings the index up to date with the workspace (a
	// run diffed against the manifest) before the query is made.
	if err := ix.StartIndexing(ctx); err != nil {
		return fmt.Errorf("indexer not ready: %w", err)
	}
	defer ix.Dispose()

	results, err := ix.SearchIndex(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s:%d-%d (score %.3f)\n", i+1, r.Payload.FilePath, r.Payload.StartLine+1, r.Payload.EndLine+1, r.Score)
	}
	return nil
}
