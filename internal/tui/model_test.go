package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timelapse/core/agg"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/schema"
)

func testCommits() []schema.Commit {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var commits []schema.Commit
	for i, id := range []string{"a1", "b2", "c3"} {
		at := base.Add(time.Duration(i) * 36 * time.Hour)
		lines := make([]schema.LineRecord, (i+1)*4)
		for j := range lines {
			lines[j] = schema.LineRecord{File: "src/main.go", Line: j + 1, Length: 10, Type: "go", Commit: id, Author: "ada", Datetime: at}
		}
		commits = append(commits, schema.Commit{
			ID:         id,
			Author:     "ada",
			Datetime:   at,
			HourFrac:   agg.HourFrac(at),
			TotalLines: len(lines),
			Lines:      lines,
		})
	}
	return commits
}

func newTestModel(t *testing.T) (*Model, *session.Session) {
	t.Helper()
	s := session.New(testCommits())
	m := NewModel(s, Options{Title: "loc.csv", Rejected: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, s
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowSizeResizesPlane(t *testing.T) {
	m, s := newTestModel(t)
	dims := s.View().Dims
	assert.InDelta(t, 100*cellW, dims.Width, 1e-9)
	assert.InDelta(t, float64(m.canvasRows)*cellH, dims.Height, 1e-9)
	assert.GreaterOrEqual(t, m.canvasRows, minCanvasRow)
}

func TestKeysMoveCursor(t *testing.T) {
	m, s := newTestModel(t)
	_, p := s.Cursor()
	require.InDelta(t, 100, p, 1e-9)

	m.Update(keyPress("left"))
	_, p = s.Cursor()
	assert.InDelta(t, 99, p, 1e-9)

	m.Update(keyPress("H"))
	_, p = s.Cursor()
	assert.InDelta(t, 89, p, 1e-9)

	m.Update(keyPress("home"))
	_, p = s.Cursor()
	assert.InDelta(t, 0, p, 1e-9)
	assert.Len(t, s.View().Commits, 1)

	m.Update(keyPress("G"))
	_, p = s.Cursor()
	assert.InDelta(t, 100, p, 1e-9)
	assert.Len(t, s.View().Commits, 3)
}

func TestFileStripFollowsSessionOps(t *testing.T) {
	m, s := newTestModel(t)
	assert.Equal(t, s.View().Files, m.rows)

	m.Update(keyPress("home"))
	require.Len(t, m.rows, 1)
	assert.Len(t, m.rows[0].Units, 4)
	assert.Equal(t, s.View().Files, m.rows)
	assert.Empty(t, m.freshUnits)
	assert.Equal(t, 20, m.changes.Exit)
	assert.Equal(t, 0, m.changes.Enter)
	assert.Contains(t, m.View(), "+0 -20 lines")

	m.Update(keyPress("G"))
	assert.Equal(t, s.View().Files, m.rows)
	assert.Len(t, m.freshUnits, 20)
	assert.Contains(t, m.freshUnits, "src/main.go#1@c3")
	assert.NotContains(t, m.freshUnits, "src/main.go#1@a1")
	assert.Contains(t, m.freshMarks, "c3")
	assert.NotContains(t, m.freshMarks, "a1")
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestNarrativeMode(t *testing.T) {
	m, s := newTestModel(t)
	m.Update(keyPress("g"))
	assert.NotContains(t, m.View(), "Step 1/3")

	m.Update(keyPress("n"))
	require.True(t, m.showSteps)
	assert.Contains(t, m.View(), "Step 1/3")
	m.Update(keyPress("down"))
	assert.True(t, s.CursorTime().Equal(s.Commits()[1].Datetime))
	assert.Contains(t, m.View(), "Step 2/3")

	m.Update(keyPress("up"))
	assert.True(t, s.CursorTime().Equal(s.Commits()[0].Datetime))

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.True(t, s.CursorTime().Equal(s.Commits()[1].Datetime))
}

func TestMouseBrushSelects(t *testing.T) {
	m, s := newTestModel(t)
	top := m.canvasTop
	bottom := top + m.canvasRows - 1

	m.Update(tea.MouseMsg{X: 0, Y: top, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.True(t, m.brushing)
	m.Update(tea.MouseMsg{X: 99, Y: bottom, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	assert.Len(t, s.View().Selection.IDs, 3, "selection follows the drag")
	m.Update(tea.MouseMsg{X: 99, Y: bottom, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.False(t, m.brushing)
	assert.Equal(t, "3 commits selected", s.View().Selection.Text)

	m.Update(keyPress("esc"))
	assert.Empty(t, s.View().Selection.IDs)
	assert.Nil(t, s.View().Selection.Rect)
}

func TestMouseClickClearsBrush(t *testing.T) {
	m, s := newTestModel(t)
	r := schema.Rect{X0: 0, Y0: 0, X1: 1e5, Y1: 1e5}
	s.SetSelection(&r)
	require.NotEmpty(t, s.View().Selection.IDs)

	pt := tea.MouseMsg{X: 10, Y: m.canvasTop + 1, Button: tea.MouseButtonLeft}
	pt.Action = tea.MouseActionPress
	m.Update(pt)
	pt.Action = tea.MouseActionRelease
	m.Update(pt)
	assert.Nil(t, s.View().Selection.Rect)
}

func TestSliderClick(t *testing.T) {
	m, s := newTestModel(t)
	m.Update(tea.MouseMsg{X: sliderPrefixWidth, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	_, p := s.Cursor()
	assert.InDelta(t, 0, p, 1e-9)

	m.Update(tea.MouseMsg{X: 1000, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	_, p = s.Cursor()
	assert.InDelta(t, 100, p, 1e-9)
}

func TestHoverShowsTooltip(t *testing.T) {
	m, s := newTestModel(t)
	mk := s.View().Marks[0]
	col, row := int(mk.X/cellW), int(mk.Y/cellH)+m.canvasTop

	m.Update(tea.MouseMsg{X: col, Y: row, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	require.NotNil(t, m.hovered)
	assert.Equal(t, mk.CommitID, m.hovered.ID)
	assert.Contains(t, m.View(), "Commit: "+mk.CommitID)

	// Leaving the canvas drops the tooltip
	m.Update(tea.MouseMsg{X: col, Y: 0, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	assert.Nil(t, m.hovered)
}

func TestViewSections(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "loc.csv")
	assert.Contains(t, out, "3 of 3 commits")
	assert.Contains(t, out, "2 rows rejected")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Lines 24 · Commits 3")
	assert.Contains(t, out, "No commits selected")
	assert.Contains(t, out, "src/main.go")
	assert.Contains(t, out, "2024-01-01")

	lines := strings.Split(out, "\n")
	assert.LessOrEqual(t, len(lines), 40, "view fits the window")
}

func TestViewEmptyCorpus(t *testing.T) {
	m := NewModel(session.New(nil), Options{})
	out := m.View()
	assert.Contains(t, out, "timelapse")
	assert.Contains(t, out, "no commits yet")
}
