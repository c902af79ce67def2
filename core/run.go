package core

import (
	"time"

	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
)

// runTracker records one invocation in the run store. A nil tracker is a no-op.
type runTracker struct {
	store contract.RunStore
	id    int64
}

// beginRun opens a run record when a run store is configured.
// Tracking failures are reported but never fail the command.
func beginRun(cfg *contract.Config, mgr contract.CacheManager, command string) *runTracker {
	if mgr == nil {
		return nil
	}
	store := mgr.GetRunStore()
	if store == nil {
		return nil
	}
	configParams := map[string]any{
		"command":    command,
		"url_prefix": cfg.URLPrefix,
		"output":     string(cfg.Output),
		"strict":     cfg.Strict,
	}
	if cfg.Brush != nil {
		configParams["brush"] = *cfg.Brush
	}
	if cfg.Step >= 0 {
		configParams["step"] = cfg.Step
	}
	id, err := store.BeginRun(time.Now(), cfg.InputPath, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return nil
	}
	return &runTracker{store: store, id: id}
}

// abort closes a run whose corpus never loaded. No cursor is recorded.
func (t *runTracker) abort() {
	if t == nil || t.id <= 0 {
		return
	}
	if err := t.store.EndRun(t.id, time.Now(), time.Time{}, 0, 0); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// end stores the visible commits and the final cursor of s.
func (t *runTracker) end(s *session.Session) {
	if t == nil || t.id <= 0 || s == nil {
		return
	}
	view := s.View()
	records := make([]schema.RunCommitRecord, len(view.Commits))
	for i, c := range view.Commits {
		records[i] = schema.RunCommitRecord{
			RunID:      t.id,
			CommitID:   c.ID,
			Author:     c.Author,
			Datetime:   c.Datetime,
			TotalLines: int32(c.TotalLines),
			HourFrac:   c.HourFrac,
		}
	}
	if err := t.store.RecordCommits(t.id, records); err != nil {
		contract.LogWarn("Run tracking failed for RecordCommits", err)
	}
	if err := t.store.EndRun(t.id, time.Now(), view.At, view.Progress, len(view.Commits)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
