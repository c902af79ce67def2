// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStats prints corpus and snapshot stats using the configured output format.
func (ow *OutWriter) WriteStats(report schema.StatsReport, cfg *contract.Config, duration time.Duration) error {
	return WriteStatsReport(report, cfg, duration)
}

// WriteFiles prints the file composition using the configured output format.
func (ow *OutWriter) WriteFiles(report schema.FilesReport, cfg *contract.Config, duration time.Duration) error {
	return WriteFilesReport(report, cfg, duration)
}

// WriteCommits prints visible commits and their marks using the configured output format.
func (ow *OutWriter) WriteCommits(commits []schema.CommitView, at time.Time, cfg *contract.Config, duration time.Duration) error {
	return WriteCommitViews(commits, at, cfg, duration)
}

// WriteSelection prints a brush summary using the configured output format.
func (ow *OutWriter) WriteSelection(report schema.SelectionReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSelectionReport(report, cfg, duration)
}

// WriteNarrative prints the narrative steps using the configured output format.
func (ow *OutWriter) WriteNarrative(report schema.NarrativeReport, cfg *contract.Config, duration time.Duration) error {
	return WriteNarrativeReport(report, cfg, duration)
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Language + Lines with borders/padding
	baseWidth := 30
	if cfg.Units {
		baseWidth += unitsColumnWidth + 5
	}
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
