// Package core has the replay orchestration: loading a corpus, positioning a
// session and handing the result to an output surface.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/timelapse/core/agg"
	"github.com/huangsam/timelapse/core/narrative"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
	"github.com/huangsam/timelapse/internal/tui"
	"github.com/huangsam/timelapse/schema"
)

// ExecutorFunc defines the function signature shared by all commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// OpenSession loads the configured corpus and returns a session positioned by
// the configured cursor and brush.
func OpenSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Corpus, *session.Session, error) {
	corpus, err := LoadCorpus(ctx, cfg, mgr)
	if err != nil {
		return nil, nil, err
	}
	s, err := NewSession(corpus, cfg)
	if err != nil {
		return nil, nil, err
	}
	return corpus, s, nil
}

// ExecuteStats prints corpus-wide stats and, when a cursor was given, the
// stats of the snapshot at that cursor.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginRun(cfg, mgr, "stats")
	corpus, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	report := schema.StatsReport{
		Input:    corpus.Path,
		Rejected: len(corpus.Rejected),
		CacheHit: corpus.CacheHit,
		Corpus:   corpus.Stats,
	}
	if cfg.Cursor.Set {
		view := s.View()
		progress := view.Progress
		report.At = view.At
		report.Progress = &progress
		report.Snapshot = &view.Stats
	}
	return outWriter.WriteStats(report, cfg, time.Since(start))
}

// ExecuteFiles prints the file composition at the cursor.
func ExecuteFiles(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginRun(cfg, mgr, "files")
	_, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	view := s.View()
	report := schema.FilesReport{
		At:         view.At,
		Progress:   view.Progress,
		TotalFiles: len(view.Files),
		Files:      view.Files,
	}
	return outWriter.WriteFiles(report, cfg, time.Since(start))
}

// ExecuteCommits prints the visible commits at the cursor with their marks.
func ExecuteCommits(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginRun(cfg, mgr, "commits")
	_, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	view := s.View()
	return outWriter.WriteCommits(schema.JoinMarks(view.Commits, view.Marks), view.At, cfg, time.Since(start))
}

// ExecuteSelect prints the brush summary at the cursor.
func ExecuteSelect(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Brush == nil {
		return errors.New("--brush is required")
	}
	start := time.Now()
	run := beginRun(cfg, mgr, "select")
	_, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	return outWriter.WriteSelection(SelectionReport(s), cfg, time.Since(start))
}

// SelectionReport summarizes the current brush of s.
func SelectionReport(s *session.Session) schema.SelectionReport {
	view := s.View()
	return schema.SelectionReport{
		At:        view.At,
		Progress:  view.Progress,
		Rect:      view.Selection.Rect,
		Text:      view.Selection.Text,
		IDs:       view.Selection.IDs,
		Breakdown: view.Selection.Breakdown,
		Stats:     s.SelectionStats(),
	}
}

// ExecuteNarrative lists the narrative steps. With a step set, the cursor
// moves to that step first and the synchronized stats are printed too.
func ExecuteNarrative(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	run := beginRun(cfg, mgr, "narrative")
	_, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	report, err := NarrativeReport(s, cfg.Step, cfg.Cursor.Set)
	if err != nil {
		return err
	}
	return outWriter.WriteNarrative(report, cfg, time.Since(start))
}

// NarrativeReport enters step (when non-negative) and lists every step of s.
// Stats are included when the cursor was moved, either by the step or by
// an explicit cursor.
func NarrativeReport(s *session.Session, step int, cursorSet bool) (schema.NarrativeReport, error) {
	driver := narrative.NewDriver(s.Commits(), s, narrative.DefaultStepHeight)
	if step >= 0 && !driver.Enter(step) {
		return schema.NarrativeReport{}, fmt.Errorf("step %d is out of range (%d steps)", step, driver.Len())
	}

	view := s.View()
	report := schema.NarrativeReport{
		Steps:    driver.Steps(),
		Active:   driver.ActiveStep(),
		At:       view.At,
		Progress: view.Progress,
	}
	if step >= 0 || cursorSet {
		report.Stats = &view.Stats
	}
	return report, nil
}

// ExecuteConvert writes the loaded line records to a Parquet file that the
// loader accepts as input.
func ExecuteConvert(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required")
	}
	corpus, err := LoadCorpus(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := parquet.WriteLineRowsParquet(parquet.ConvertLineRecords(corpus.Records), cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing Parquet output: %w", err)
	}
	contract.Logger().WithField("rows", len(corpus.Records)).Infof("wrote line records to %s", cfg.OutputFile)
	return nil
}

// ExecuteReplay runs the interactive replay until the user quits.
func ExecuteReplay(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	run := beginRun(cfg, mgr, "replay")
	corpus, s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		run.abort()
		return err
	}
	defer run.end(s)

	return tui.Run(ctx, s, tui.Options{
		Title:     corpus.Path,
		Rejected:  len(corpus.Rejected),
		UseColors: cfg.UseColors,
		Languages: agg.LanguageBreakdown(corpus.Records),
	})
}
