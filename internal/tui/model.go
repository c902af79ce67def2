package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/huangsam/timelapse/core/narrative"
	"github.com/huangsam/timelapse/core/plot"
	"github.com/huangsam/timelapse/core/reconcile"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/schema"
)

// A terminal cell stands for a cellW x cellH block of the plot plane.
const (
	cellW = 8.0
	cellH = 16.0
)

// Rows used by everything around the canvas.
const (
	chromeRows   = 6 // header, slider, axis, stats, selection, legend
	fileRows     = 6
	minCanvasRow = 4
	minWidth     = 20
)

const (
	smallStep = 1.0
	largeStep = 10.0
)

// Model implements the Bubble Tea replay UI.
type Model struct {
	s      *session.Session
	opts   Options
	driver *narrative.Driver
	help   help.Model
	styles styles

	width  int
	height int

	canvasTop  int // screen row of the first canvas row
	canvasRows int

	showSteps bool

	brushing   bool
	brushStart schema.Point
	brushEnd   schema.Point

	pointer *schema.Point
	hovered *schema.Commit

	// rows is the file strip, kept in step with the session through its
	// keyed ops rather than rebuilt on every frame.
	rows       []schema.FileRow
	freshUnits map[string]struct{}
	freshMarks map[string]struct{}
	changes    reconcile.Summary
}

// NewModel constructs a replay model over s.
func NewModel(s *session.Session, opts Options) *Model {
	m := &Model{
		s:      s,
		opts:   opts,
		help:   help.New(),
		styles: newStyles(opts.UseColors),
		width:  80,
		height: 24,
		rows:   cloneRows(s.View().Files),
	}
	m.driver = narrative.NewDriver(s.Commits(), m, narrative.DefaultStepHeight)
	m.layout()
	return m
}

// SetCursor moves the session cursor on behalf of the narrative driver.
func (m *Model) SetCursor(t time.Time) {
	m.s.SetCursor(t)
	m.sync()
}

// CursorTime returns the session cursor timestamp.
func (m *Model) CursorTime() time.Time {
	return m.s.CursorTime()
}

// sync folds the ops of the latest session frame into the file strip and
// records which units and marks just entered. It runs after every session
// write so no frame's ops are skipped.
func (m *Model) sync() {
	view := m.s.View()

	before := make(map[string][]schema.Unit, len(m.rows))
	for _, f := range m.rows {
		before[f.Name] = f.Units
	}
	rows := reconcile.Apply(m.rows, view.FileOps, fileRowKey)

	m.freshUnits = make(map[string]struct{})
	m.changes = reconcile.Summary{}
	for i, f := range rows {
		ops := view.UnitOps[f.Name]
		rows[i].Units = reconcile.Apply(before[f.Name], ops, unitKey)
		for _, op := range ops {
			if op.Kind == schema.OpEnter {
				m.freshUnits[op.Key] = struct{}{}
			}
		}
		sum := reconcile.Summarize(ops)
		m.changes.Enter += sum.Enter
		m.changes.Update += sum.Update
		m.changes.Exit += sum.Exit
	}
	for _, op := range view.FileOps {
		if op.Kind == schema.OpExit {
			m.changes.Exit += len(op.Prev.Units)
		}
	}

	m.freshMarks = make(map[string]struct{})
	for _, op := range view.MarkOps {
		if op.Kind == schema.OpEnter {
			m.freshMarks[op.Key] = struct{}{}
		}
	}

	if !sameRows(rows, view.Files) {
		// Out of step with the session, start over from its frame
		rows = cloneRows(view.Files)
	}
	m.rows = rows
}

func fileRowKey(f schema.FileRow) string { return f.Name }

func unitKey(u schema.Unit) string { return u.Key }

func cloneRows(files []schema.FileRow) []schema.FileRow {
	out := make([]schema.FileRow, len(files))
	for i, f := range files {
		out[i] = f
		out[i].Units = append([]schema.Unit(nil), f.Units...)
	}
	return out
}

// sameRows compares names, counts and unit keys in order.
func sameRows(a, b []schema.FileRow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].LineCount != b[i].LineCount || len(a[i].Units) != len(b[i].Units) {
			return false
		}
		for j := range a[i].Units {
			if a[i].Units[j].Key != b[i].Units[j].Key {
				return false
			}
		}
	}
	return true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, keys.Narrative):
		m.showSteps = !m.showSteps
		if m.showSteps && m.driver.ActiveStep() < 0 {
			m.driver.Enter(0)
		}
		m.layout()
	case key.Matches(msg, keys.StepUp):
		m.driver.Advance(-1)
	case key.Matches(msg, keys.StepDown):
		m.driver.Advance(1)
	case key.Matches(msg, keys.Back):
		m.nudge(-smallStep)
	case key.Matches(msg, keys.Forward):
		m.nudge(smallStep)
	case key.Matches(msg, keys.JumpBack):
		m.nudge(-largeStep)
	case key.Matches(msg, keys.JumpFwd):
		m.nudge(largeStep)
	case key.Matches(msg, keys.Start):
		m.s.SetProgress(0)
		m.sync()
	case key.Matches(msg, keys.End):
		m.s.SetProgress(100)
		m.sync()
	case key.Matches(msg, keys.Clear):
		m.brushing = false
		m.s.ClearSelection()
		m.sync()
	}
	m.refreshHover()
	return m, nil
}

// nudge moves the slider by delta percent.
func (m *Model) nudge(delta float64) {
	_, p := m.s.Cursor()
	m.s.SetProgress(p + delta)
	m.sync()
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.driver.Advance(-1)
		m.refreshHover()
		return
	case tea.MouseButtonWheelDown:
		m.driver.Advance(1)
		m.refreshHover()
		return
	}

	if msg.Y == 1 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		// Clicking the slider row jumps there
		m.s.SetProgress(m.sliderProgress(msg.X))
		m.sync()
		m.refreshHover()
		return
	}

	pt, inside := m.planePoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.brushing = true
			m.brushStart, m.brushEnd = pt, pt
		}
	case tea.MouseActionMotion:
		if m.brushing && msg.Button == tea.MouseButtonLeft {
			m.brushEnd = pt
			m.s.SetSelection(m.brushRect())
			m.sync()
		}
	case tea.MouseActionRelease:
		if m.brushing {
			m.brushing = false
			m.brushEnd = pt
			if m.brushStart == m.brushEnd {
				// A click without a drag clears the brush
				m.s.ClearSelection()
			} else {
				m.s.SetSelection(m.brushRect())
			}
			m.sync()
		}
	}

	if inside {
		m.pointer = &pt
	} else {
		m.pointer = nil
	}
	m.refreshHover()
}

func (m *Model) brushRect() *schema.Rect {
	r := schema.Rect{X0: m.brushStart.X, Y0: m.brushStart.Y, X1: m.brushEnd.X, Y1: m.brushEnd.Y}.Normalize()
	return &r
}

// refreshHover re-runs the hit test, since marks move with the cursor.
func (m *Model) refreshHover() {
	m.hovered = nil
	if m.pointer == nil {
		return
	}
	if c, ok := m.s.Hover(m.pointer.X, m.pointer.Y); ok {
		m.hovered = &c
	}
}

// planePoint maps a screen cell to the center of its block on the plot plane,
// clamped to the canvas. The flag reports whether the cell is on the canvas.
func (m *Model) planePoint(col, row int) (schema.Point, bool) {
	r := row - m.canvasTop
	inside := col >= 0 && col < m.width && r >= 0 && r < m.canvasRows
	col = max(0, min(col, m.width-1))
	r = max(0, min(r, m.canvasRows-1))
	return schema.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(r) + 0.5) * cellH}, inside
}

// sliderProgress maps a column of the slider row to progress.
func (m *Model) sliderProgress(col int) float64 {
	track := m.sliderTrackWidth()
	if track <= 1 {
		return 0
	}
	pos := col - sliderPrefixWidth
	pos = max(0, min(pos, track-1))
	return float64(pos) / float64(track-1) * 100
}

// layout splits the screen and resizes the session plane to the canvas.
func (m *Model) layout() {
	width := max(m.width, minWidth)
	helpRows := 1
	if m.help.ShowAll {
		for _, col := range keys.FullHelp() {
			helpRows = max(helpRows, len(col))
		}
	}
	m.canvasTop = 2
	m.canvasRows = max(minCanvasRow, m.height-chromeRows-helpRows-fileRows-m.narrativeRows())
	m.s.Resize(plot.Dims{
		Width:  float64(width) * cellW,
		Height: float64(m.canvasRows) * cellH,
		Margin: plot.Margins{Top: cellH / 2, Right: cellW, Bottom: cellH / 2, Left: cellW},
	})
	m.sync()
	m.refreshHover()
}

func (m *Model) narrativeRows() int {
	if m.showSteps {
		return 1
	}
	return 0
}

// View implements tea.Model.
func (m *Model) View() string {
	view := m.s.View()
	var b strings.Builder
	b.WriteString(m.renderHeader(view))
	b.WriteByte('\n')
	b.WriteString(m.renderSlider(view))
	b.WriteByte('\n')
	b.WriteString(m.renderCanvas(view))
	b.WriteByte('\n')
	b.WriteString(m.renderAxis())
	b.WriteByte('\n')
	b.WriteString(m.renderStats(view.Stats))
	b.WriteByte('\n')
	b.WriteString(m.renderSelection(view))
	if m.showSteps {
		b.WriteByte('\n')
		b.WriteString(m.renderNarrative())
	}
	b.WriteByte('\n')
	b.WriteString(m.renderFiles(m.rows))
	b.WriteByte('\n')
	b.WriteString(m.renderLegend())
	b.WriteByte('\n')
	b.WriteString(m.help.View(keys))
	return lipgloss.NewStyle().MaxWidth(max(m.width, minWidth)).Render(b.String())
}
