package indexer

// ProcessingStats summarizes one completed run for CLI/log reporting.
type ProcessingStats struct {
	FilesProcessed        int
	TotalCodeChunks       int
	TotalDocChunks        int
	ProcessingTimeSeconds float64
}
