// Package session owns the replay state: the cursor, the brush selection and
// everything derived from them.
package session

import (
	"time"

	"github.com/huangsam/timelapse/core/agg"
	"github.com/huangsam/timelapse/core/plot"
	"github.com/huangsam/timelapse/core/reconcile"
	"github.com/huangsam/timelapse/core/snapshot"
	"github.com/huangsam/timelapse/core/timeline"
	"github.com/huangsam/timelapse/schema"
)

// Selection is the brush state and what it covers.
type Selection struct {
	Rect      *schema.Rect           `json:"rect,omitempty"`
	IDs       []string               `json:"ids"`
	Text      string                 `json:"text"`
	Breakdown []schema.LanguageShare `json:"breakdown,omitempty"`
}

// View is everything a surface needs to draw one frame. The op lists describe
// how to get from the previous frame to this one.
type View struct {
	At        time.Time        `json:"at"`
	Progress  float64          `json:"progress"`
	Commits   []schema.Commit  `json:"commits"`
	Marks     []schema.Mark    `json:"marks"`
	Stats     schema.Stats     `json:"stats"`
	Files     []schema.FileRow `json:"files"`
	Selection Selection        `json:"selection"`
	Dims      plot.Dims        `json:"dims"`

	MarkOps []reconcile.Op[schema.Mark]            `json:"-"`
	FileOps []reconcile.Op[schema.FileRow]         `json:"-"`
	UnitOps map[string][]reconcile.Op[schema.Unit] `json:"-"`
}

// Session is the single controller over a loaded corpus. All writes go
// through SetCursor, SetProgress, SetSelection, ClearSelection and Resize,
// and each one re-derives the view synchronously. It is not safe for
// concurrent use.
type Session struct {
	commits []schema.Commit
	byID    map[string]int
	cursor  *timeline.Cursor
	dims    plot.Dims
	palette *agg.Palette
	brush   *schema.Rect

	snap   snapshot.Snapshot
	scales plot.Scales
	view   View
}

// Option configures a Session.
type Option func(*Session)

// WithDims sets the rendered plane size.
func WithDims(d plot.Dims) Option {
	return func(s *Session) { s.dims = d }
}

// WithPalette shares a palette, keeping language colors stable across sessions.
func WithPalette(p *agg.Palette) Option {
	return func(s *Session) { s.palette = p }
}

// New builds a session over commits sorted ascending by datetime.
// The cursor starts at the end of the timeline.
func New(commits []schema.Commit, opts ...Option) *Session {
	s := &Session{
		commits: commits,
		byID:    make(map[string]int, len(commits)),
		dims:    plot.DefaultDims(),
		palette: agg.NewPalette(),
	}
	for i, c := range commits {
		s.byID[c.ID] = i
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cursor = timeline.NewCursor(timeline.NewScale(commits))
	s.render()
	return s
}

// SetCursor moves the cursor to t. Every input modality ends up here.
func (s *Session) SetCursor(t time.Time) {
	s.cursor.SetTime(t)
	s.render()
}

// SetProgress moves the cursor to slider progress p. The requested progress
// is kept so the slider does not jitter.
func (s *Session) SetProgress(p float64) {
	s.cursor.SetProgress(p)
	s.render()
}

// SetSelection sets the brush rectangle. A nil rect clears it.
func (s *Session) SetSelection(rect *schema.Rect) {
	if rect == nil {
		s.brush = nil
	} else {
		r := rect.Normalize()
		s.brush = &r
	}
	s.render()
}

// ClearSelection removes the brush.
func (s *Session) ClearSelection() {
	s.SetSelection(nil)
}

// Resize changes the rendered plane size.
func (s *Session) Resize(d plot.Dims) {
	s.dims = d
	s.render()
}

// View returns the current frame.
func (s *Session) View() View {
	return s.view
}

// Cursor returns the cursor timestamp and progress.
func (s *Session) Cursor() (time.Time, float64) {
	return s.cursor.Time(), s.cursor.Progress()
}

// CursorTime returns the cursor timestamp.
func (s *Session) CursorTime() time.Time {
	return s.cursor.Time()
}

// Scale returns the progress mapping of the corpus.
func (s *Session) Scale() timeline.Scale {
	return s.cursor.Scale()
}

// PlotScales returns the scales used for the current marks.
func (s *Session) PlotScales() plot.Scales {
	return s.scales
}

// Commits returns the full corpus in ascending datetime order.
func (s *Session) Commits() []schema.Commit {
	return s.commits
}

// Commit looks a commit up by id.
func (s *Session) Commit(id string) (schema.Commit, bool) {
	i, ok := s.byID[id]
	if !ok {
		return schema.Commit{}, false
	}
	return s.commits[i], true
}

// Snapshot returns the visible part of the corpus.
func (s *Session) Snapshot() snapshot.Snapshot {
	return s.snap
}

// Palette returns the language palette.
func (s *Session) Palette() *agg.Palette {
	return s.palette
}

// Hover returns the commit under the pointer, if any.
func (s *Session) Hover(x, y float64) (schema.Commit, bool) {
	m, ok := plot.HitTest(s.view.Marks, x, y)
	if !ok {
		return schema.Commit{}, false
	}
	return s.Commit(m.CommitID)
}

// SelectedCommits returns the selected commits in ascending datetime order.
func (s *Session) SelectedCommits() []schema.Commit {
	if len(s.view.Selection.IDs) == 0 {
		return nil
	}
	picked := make(map[string]struct{}, len(s.view.Selection.IDs))
	for _, id := range s.view.Selection.IDs {
		picked[id] = struct{}{}
	}
	var out []schema.Commit
	for _, c := range s.snap.Commits {
		if _, ok := picked[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SelectionStats summarizes the selected commits only.
func (s *Session) SelectionStats() schema.Stats {
	commits := s.SelectedCommits()
	return agg.ComputeStats(schema.FlattenLines(commits), commits)
}

// render re-derives the whole frame from the cursor, the brush and the dims.
func (s *Session) render() {
	prev := s.view

	s.snap = snapshot.Filter(s.commits, s.cursor.Time())
	s.scales = plot.NewScales(s.snap.Commits, s.dims)
	marks := plot.LayoutWith(s.snap.Commits, s.scales)

	sel := s.selection(marks)
	marks = plot.MarkSelected(marks, sel.IDs)
	files := agg.ComposeFiles(s.snap.Lines, s.palette)

	next := View{
		At:        s.cursor.Time(),
		Progress:  s.cursor.Progress(),
		Commits:   s.snap.Commits,
		Marks:     marks,
		Stats:     agg.ComputeStats(s.snap.Lines, s.snap.Commits),
		Files:     files,
		Selection: sel,
		Dims:      s.dims,
	}
	next.MarkOps = reconcile.Diff(prev.Marks, next.Marks, markKey, markEqual)
	next.FileOps = reconcile.Diff(prev.Files, next.Files, fileKey, fileEqual)
	next.UnitOps = unitOps(prev.Files, next.Files)
	s.view = next
}

// selection evaluates the brush against the visible marks.
func (s *Session) selection(marks []schema.Mark) Selection {
	ids := plot.Select(marks, s.brush)
	sel := Selection{
		Rect: s.brush,
		IDs:  ids,
		Text: schema.SelectionText(len(ids)),
	}
	if len(ids) == 0 {
		return sel
	}

	picked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		picked[id] = struct{}{}
	}
	var lines []schema.LineRecord
	for _, c := range s.snap.Commits {
		if _, ok := picked[c.ID]; ok {
			lines = append(lines, c.Lines...)
		}
	}
	sel.Breakdown = agg.LanguageBreakdown(lines)
	return sel
}

func markKey(m schema.Mark) string { return m.CommitID }

func markEqual(a, b schema.Mark) bool { return a == b }

func fileKey(f schema.FileRow) string { return f.Name }

func fileEqual(a, b schema.FileRow) bool {
	return a.Language == b.Language && a.LineCount == b.LineCount
}

func unitKey(u schema.Unit) string { return u.Key }

func unitEqual(a, b schema.Unit) bool { return a == b }

// unitOps diffs the units of every file that is still present.
func unitOps(prev, next []schema.FileRow) map[string][]reconcile.Op[schema.Unit] {
	before := make(map[string][]schema.Unit, len(prev))
	for _, f := range prev {
		before[f.Name] = f.Units
	}
	ops := make(map[string][]reconcile.Op[schema.Unit])
	for _, f := range next {
		if d := reconcile.Diff(before[f.Name], f.Units, unitKey, unitEqual); len(d) > 0 {
			ops[f.Name] = d
		}
	}
	return ops
}
