// Package timeline maps slider progress to commit time and holds the cursor.
package timeline

import (
	"math"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Bounds of the progress domain.
const (
	MinProgress = 0.0
	MaxProgress = 100.0
)

// Scale is a linear mapping between progress in [0,100] and the datetime
// extent of a corpus. The zero Scale has no extent.
type Scale struct {
	min, max time.Time
	set      bool
}

// NewScale builds a scale over the datetime extent of commits.
func NewScale(commits []schema.Commit) Scale {
	var s Scale
	for _, c := range commits {
		s = s.include(c.Datetime)
	}
	return s
}

// NewScaleFromExtent builds a scale over [lo, hi]. Bounds are swapped if needed.
func NewScaleFromExtent(lo, hi time.Time) Scale {
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return Scale{min: lo, max: hi, set: true}
}

func (s Scale) include(t time.Time) Scale {
	if !s.set {
		return Scale{min: t, max: t, set: true}
	}
	if t.Before(s.min) {
		s.min = t
	}
	if t.After(s.max) {
		s.max = t
	}
	return s
}

// Extent returns the datetime bounds of the scale.
func (s Scale) Extent() (time.Time, time.Time) {
	return s.min, s.max
}

// Empty reports whether the scale was built from no commits.
func (s Scale) Empty() bool {
	return !s.set
}

// Degenerate reports whether the extent is a single instant.
func (s Scale) Degenerate() bool {
	return !s.set || s.min.Equal(s.max)
}

// Time maps progress to a timestamp. Progress is clamped to [0,100], and both
// endpoints map exactly onto the extent bounds.
func (s Scale) Time(p float64) time.Time {
	p = ClampProgress(p)
	switch {
	case !s.set:
		return time.Time{}
	case s.Degenerate(), p == MinProgress:
		return s.min
	case p == MaxProgress:
		return s.max
	}
	span := s.max.Sub(s.min)
	offset := time.Duration(math.Round(float64(span) * p / MaxProgress))
	return s.min.Add(offset)
}

// Progress maps a timestamp back to progress, clamped to [0,100].
// A degenerate or empty scale reports 100.
func (s Scale) Progress(t time.Time) float64 {
	if s.Degenerate() {
		return MaxProgress
	}
	if !t.After(s.min) {
		return MinProgress
	}
	if !t.Before(s.max) {
		return MaxProgress
	}
	span := s.max.Sub(s.min)
	return float64(t.Sub(s.min)) / float64(span) * MaxProgress
}

// ClampProgress limits p to [0,100]. NaN maps to 0.
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < MinProgress:
		return MinProgress
	case p > MaxProgress:
		return MaxProgress
	}
	return p
}

// Cursor is the single authoritative as-of position. Every write sets both the
// timestamp and the equivalent progress.
type Cursor struct {
	scale    Scale
	at       time.Time
	progress float64
}

// NewCursor returns a cursor at the end of the scale.
func NewCursor(scale Scale) *Cursor {
	c := &Cursor{scale: scale}
	c.SetProgress(MaxProgress)
	return c
}

// Scale returns the mapping the cursor was built with.
func (c *Cursor) Scale() Scale {
	return c.scale
}

// SetProgress moves the cursor to progress p. The clamped p is kept as given
// so repeated slider writes do not drift.
func (c *Cursor) SetProgress(p float64) {
	c.progress = ClampProgress(p)
	c.at = c.scale.Time(c.progress)
}

// SetTime moves the cursor to t and derives progress from it.
func (c *Cursor) SetTime(t time.Time) {
	c.at = t
	c.progress = c.scale.Progress(t)
}

// Time returns the cursor timestamp.
func (c *Cursor) Time() time.Time {
	return c.at
}

// Progress returns the cursor progress in [0,100].
func (c *Cursor) Progress() float64 {
	return c.progress
}
