// Package plot lays commits out on the time by hour-of-day plane.
package plot

import (
	"math"
	"sort"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Margins around the plotting area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Dims is the size of the rendered plane.
type Dims struct {
	Width, Height float64
	Margin        Margins
}

// Radius range for marks.
const (
	MinRadius = 2.0
	MaxRadius = 30.0
)

// DefaultDims returns the default 1000x600 plane.
func DefaultDims() Dims {
	return Dims{
		Width:  1000,
		Height: 600,
		Margin: Margins{Top: 10, Right: 10, Bottom: 30, Left: 20},
	}
}

// Usable returns the inner plotting rectangle.
func (d Dims) Usable() schema.Rect {
	return schema.Rect{
		X0: d.Margin.Left,
		Y0: d.Margin.Top,
		X1: d.Width - d.Margin.Right,
		Y1: d.Height - d.Margin.Bottom,
	}
}

// Linear maps a numeric domain onto a range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// Map applies the scale. A degenerate domain maps to the range midpoint.
func (l Linear) Map(v float64) float64 {
	if l.D0 == l.D1 {
		return (l.R0 + l.R1) / 2
	}
	return l.R0 + (v-l.D0)/(l.D1-l.D0)*(l.R1-l.R0)
}

// Invert maps a range value back into the domain.
func (l Linear) Invert(r float64) float64 {
	if l.R0 == l.R1 || l.D0 == l.D1 {
		return l.D0
	}
	return l.D0 + (r-l.R0)/(l.R1-l.R0)*(l.D1-l.D0)
}

// Sqrt maps a non-negative domain onto a range through a square root.
type Sqrt struct {
	D0, D1 float64
	R0, R1 float64
}

// Map applies the scale. A degenerate domain maps to the range midpoint.
func (s Sqrt) Map(v float64) float64 {
	return Linear{D0: math.Sqrt(s.D0), D1: math.Sqrt(s.D1), R0: s.R0, R1: s.R1}.Map(math.Sqrt(math.Max(v, 0)))
}

// Scales are the three mappings used to place marks.
type Scales struct {
	X     Linear // unix seconds to screen x
	Y     Linear // hour fraction to screen y
	R     Sqrt   // total lines to radius
	Dims  Dims
	Empty bool
}

// NewScales fits scales to the extent of commits.
func NewScales(commits []schema.Commit, dims Dims) Scales {
	area := dims.Usable()
	s := Scales{
		X:     Linear{R0: area.X0, R1: area.X1},
		Y:     Linear{D0: 0, D1: 24, R0: area.Y1, R1: area.Y0},
		R:     Sqrt{R0: MinRadius, R1: MaxRadius},
		Dims:  dims,
		Empty: len(commits) == 0,
	}
	if s.Empty {
		return s
	}

	minT, maxT := commits[0].Datetime, commits[0].Datetime
	minL, maxL := commits[0].TotalLines, commits[0].TotalLines
	for _, c := range commits[1:] {
		if c.Datetime.Before(minT) {
			minT = c.Datetime
		}
		if c.Datetime.After(maxT) {
			maxT = c.Datetime
		}
		minL = min(minL, c.TotalLines)
		maxL = max(maxL, c.TotalLines)
	}
	s.X.D0, s.X.D1 = unixSeconds(minT), unixSeconds(maxT)
	s.R.D0, s.R.D1 = float64(minL), float64(maxL)
	return s
}

// TimeAt inverts the x scale.
func (s Scales) TimeAt(x float64) time.Time {
	sec := s.X.Invert(x)
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9))
}

// HourAt inverts the y scale.
func (s Scales) HourAt(y float64) float64 {
	return s.Y.Invert(y)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Layout places one mark per commit and returns them in draw order:
// descending by total lines, ties kept in input order, so smaller marks are
// drawn last and stay on top.
func Layout(commits []schema.Commit, dims Dims) []schema.Mark {
	return LayoutWith(commits, NewScales(commits, dims))
}

// LayoutWith places marks using precomputed scales.
func LayoutWith(commits []schema.Commit, scales Scales) []schema.Mark {
	marks := make([]schema.Mark, len(commits))
	for i, c := range commits {
		marks[i] = schema.Mark{
			CommitID:   c.ID,
			X:          scales.X.Map(unixSeconds(c.Datetime)),
			Y:          scales.Y.Map(c.HourFrac),
			R:          scales.R.Map(float64(c.TotalLines)),
			TotalLines: c.TotalLines,
		}
	}
	sort.SliceStable(marks, func(a, b int) bool {
		return marks[a].TotalLines > marks[b].TotalLines
	})
	return marks
}

// Select returns the ids of marks whose center lies inside rect, in draw
// order. A nil rect selects nothing.
func Select(marks []schema.Mark, rect *schema.Rect) []string {
	if rect == nil {
		return nil
	}
	r := rect.Normalize()
	var ids []string
	for _, m := range marks {
		if r.Contains(m.X, m.Y) {
			ids = append(ids, m.CommitID)
		}
	}
	return ids
}

// MarkSelected flags the marks whose ids are in selected.
func MarkSelected(marks []schema.Mark, selected []string) []schema.Mark {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	out := make([]schema.Mark, len(marks))
	for i, m := range marks {
		_, m.Selected = set[m.CommitID]
		out[i] = m
	}
	return out
}

// HitTest returns the topmost mark under (x, y). Marks are in draw order, so
// the last hit wins.
func HitTest(marks []schema.Mark, x, y float64) (schema.Mark, bool) {
	for i := len(marks) - 1; i >= 0; i-- {
		m := marks[i]
		dx, dy := x-m.X, y-m.Y
		if dx*dx+dy*dy <= m.R*m.R {
			return m, true
		}
	}
	return schema.Mark{}, false
}
