package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/codeindex/internal/config"
	"github.com/mvp-joe/codeindex/internal/indexer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the workspace for semantic search",
	Long: `Index scans the current workspace, chunks source files at syntactic
boundaries (functions, classes, methods, markdown headings), embeds each
chunk via the configured provider, and upserts the vectors into the
configured vector store.

Examples:
  # One-shot full index
  codeindex index

  # Index, then keep watching for changes
  codeindex index --watch

  # Suppress progress bars
  codeindex index --quiet
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep watching for changes after the initial scan")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\ninterrupted, disposing indexer...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	snap, err := loadSnapshot()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ix, err := indexer.New(indexer.Options{
		WorkspaceRoot: rootDir,
		CacheRoot:     cacheRoot(),
	})
	if err != nil {
		return fmt.Errorf("create indexer: %w", err)
	}

	if _, err := ix.Initialize(snap); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	reporter := NewCLIProgressReporter(quietFlag)
	ix.OnProgressUpdate(reporter.Observe)

	if !quietFlag {
		fmt.Println("starting indexing...")
	}

	if err := ix.StartIndexing(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if !quietFlag {
		status := ix.GetCurrentStatus()
		fmt.Printf("indexing complete, state=%s\n", status.State)
	}

	if !watchFlag {
		return ix.Dispose()
	}

	if !quietFlag {
		fmt.Println("watching for changes, press Ctrl+C to stop")
	}
	<-ctx.Done()
	return ix.Dispose()
}

// cacheRoot returns the root directory under which per-workspace
// manifest caches live, honoring --config-provided overrides the same
// way viper binds every other setting.
func cacheRoot() string {
	if v := viper.GetString("cacheRoot"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codeindex-cache"
	}
	return home + "/.codeindex/cache"
}

// loadSnapshot builds the effective config.Snapshot by decoding the
// on-disk YAML document (if any) with yaml.v3, then letting viper's
// environment-variable bindings override individual fields. This keeps
// the document format a plain, explicit struct (config.Document) while
// still giving env vars the final say over individual values.
func loadSnapshot() (config.Snapshot, error) {
	docPath := viper.ConfigFileUsed()
	var doc config.Document
	if docPath != "" {
		var err error
		doc, err = config.LoadDocument(docPath)
		if err != nil {
			return config.Snapshot{}, err
		}
	}
	snap := doc.Snapshot()

	if viper.IsSet("enabled") {
		snap.Enabled = viper.GetBool("enabled")
	}
	if viper.IsSet("embedder.provider") {
		snap.EmbedderProvider = viper.GetString("embedder.provider")
	}
	if viper.IsSet("embedder.model") {
		snap.ModelID = viper.GetString("embedder.model")
	}
	if viper.IsSet("embedder.endpoint") {
		snap.EmbedderEndpoint = viper.GetString("embedder.endpoint")
	}
	if viper.IsSet("embedder.apiKey") {
		snap.EmbedderAPIKey = viper.GetString("embedder.apiKey")
	}
	if viper.IsSet("embedder.dimension") {
		d := viper.GetInt("embedder.dimension")
		snap.EmbedderDimension = &d
	}
	if viper.IsSet("vectorStore.url") {
		snap.VectorStoreURL = viper.GetString("vectorStore.url")
	}
	if viper.IsSet("vectorStore.apiKey") {
		snap.VectorStoreAPIKey = viper.GetString("vectorStore.apiKey")
	}
	if viper.IsSet("search.minScore") {
		snap.SearchMinScore = viper.GetFloat64("search.minScore")
	}
	if snap.SearchMinScore == 0 {
		snap.SearchMinScore = config.DefaultSearchMinScore
	}

	return snap, nil
}
