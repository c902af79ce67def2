// Package narrative binds a scroll position to commit steps and drives the
// session cursor from them.
package narrative

import (
	"fmt"
	"math"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// DefaultStepHeight is the scroll distance covered by one step.
const DefaultStepHeight = 100.0

// CursorSetter is the part of a session the driver writes to.
type CursorSetter interface {
	SetCursor(t time.Time)
	CursorTime() time.Time
}

// Step is one commit of the narrative.
type Step = schema.NarrativeStep

// Driver maps scroll offsets to commits in corpus order.
// The active step is always derived from the cursor. The last entered index
// only picks among commits that share the cursor's exact datetime.
type Driver struct {
	commits    []schema.Commit
	target     CursorSetter
	stepHeight float64
	entered    int
}

// NewDriver builds a driver over commits sorted ascending by datetime.
// A non-positive stepHeight falls back to DefaultStepHeight.
func NewDriver(commits []schema.Commit, target CursorSetter, stepHeight float64) *Driver {
	if stepHeight <= 0 || math.IsNaN(stepHeight) {
		stepHeight = DefaultStepHeight
	}
	return &Driver{commits: commits, target: target, stepHeight: stepHeight, entered: -1}
}

// Len returns the number of steps.
func (d *Driver) Len() int {
	return len(d.commits)
}

// StepAt maps a scroll offset to a step index, clamped to the valid range.
// It returns -1 when there are no steps.
func (d *Driver) StepAt(offset float64) int {
	if len(d.commits) == 0 {
		return -1
	}
	if math.IsNaN(offset) || offset < 0 {
		return 0
	}
	i := int(offset / d.stepHeight)
	return min(i, len(d.commits)-1)
}

// OffsetOf returns the scroll offset at the top of step i.
func (d *Driver) OffsetOf(i int) float64 {
	return float64(i) * d.stepHeight
}

// Enter makes step i current by moving the cursor to its commit time.
// It reports false when i is out of range.
func (d *Driver) Enter(i int) bool {
	if i < 0 || i >= len(d.commits) {
		return false
	}
	d.entered = i
	d.target.SetCursor(d.commits[i].Datetime)
	return true
}

// Scroll enters the step under offset and returns its index.
func (d *Driver) Scroll(offset float64) int {
	i := d.StepAt(offset)
	d.Enter(i)
	return i
}

// Advance enters the step delta away from the active one, clamped.
func (d *Driver) Advance(delta int) int {
	if len(d.commits) == 0 {
		return -1
	}
	i := d.ActiveStep() + delta
	i = max(0, min(i, len(d.commits)-1))
	d.Enter(i)
	return i
}

// ActiveStep returns the last step whose commit is at or before the cursor,
// or -1 when the cursor is before every commit. Among commits sharing the
// cursor's datetime, the one entered last wins.
func (d *Driver) ActiveStep() int {
	at := d.target.CursorTime()
	active := -1
	for i, c := range d.commits {
		if c.Datetime.After(at) {
			break
		}
		active = i
	}
	if h := d.entered; h >= 0 && h <= active && d.commits[h].Datetime.Equal(at) {
		return h
	}
	return active
}

// Steps returns every step with its text.
func (d *Driver) Steps() []Step {
	steps := make([]Step, len(d.commits))
	for i, c := range d.commits {
		steps[i] = Step{Index: i, CommitID: c.ID, Text: StepText(i, c)}
	}
	return steps
}

// StepText describes one commit for the narrative.
func StepText(i int, c schema.Commit) string {
	which := "another commit"
	if i == 0 {
		which = "the first commit"
	}
	files := make(map[string]struct{})
	for _, l := range c.Lines {
		files[l.File] = struct{}{}
	}
	return fmt.Sprintf("On %s, %s made %s. They edited %d %s across %d %s.",
		c.Datetime.Format("Monday, January 2, 2006 at 3:04 PM"),
		c.Author, which,
		c.TotalLines, plural(c.TotalLines, "line", "lines"),
		len(files), plural(len(files), "file", "files"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
