package cli

import (
	"fmt"
	"time"

	"github.com/mvp-joe/codeindex/internal/indexer"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter adapts the indexer's state-machine progress
// callback to a terminal progress bar. It
// has no notion of stages beyond "processed/total": the pipeline
// reports one monotonically increasing counter per run, so a
// single bar is re-targeted at the start of every run.
type CLIProgressReporter struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	lastTotal int
	lastState indexer.State
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

// Observe is registered via Indexer.OnProgressUpdate and renders a
// fresh bar whenever a new run starts (total resets or state changes).
func (c *CLIProgressReporter) Observe(status indexer.Status) {
	if c.quiet {
		return
	}

	if status.State != c.lastState {
		if c.bar != nil {
			c.bar.Finish()
			fmt.Println()
			c.bar = nil
		}
		fmt.Printf("-> %s\n", status.State)
		c.lastState = status.State
	}

	if status.Progress.TotalItems == 0 {
		return
	}

	if c.bar == nil || status.Progress.TotalItems != c.lastTotal {
		c.bar = progressbar.NewOptions(status.Progress.TotalItems,
			progressbar.OptionSetDescription("indexing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("items/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
		c.lastTotal = status.Progress.TotalItems
	}
	c.bar.Set(status.Progress.ProcessedItems)
}

// formatNumber renders n with thousands separators for readable
// terminal output (e.g. "12,345").
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
