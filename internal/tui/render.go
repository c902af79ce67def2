package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/huangsam/timelapse/core/plot"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/schema"
)

const (
	sliderPrefixWidth = 8
	fileNameWidth     = 28
	headerTimeFormat  = "2006-01-02 15:04"
	axisTimeFormat    = "2006-01-02"
)

var bucketColors = map[schema.TimeBucket]string{
	schema.Morning:   "#F4A261",
	schema.Afternoon: "#E9C46A",
	schema.Evening:   "#E76F51",
	schema.Night:     "#4EA8DE",
}

type styles struct {
	colors   bool
	header   lipgloss.Style
	muted    lipgloss.Style
	knob     lipgloss.Style
	filled   lipgloss.Style
	selected lipgloss.Style
	tooltip  lipgloss.Style
}

func newStyles(colors bool) styles {
	if !colors {
		plain := lipgloss.NewStyle()
		return styles{header: plain.Bold(true), muted: plain, knob: plain, filled: plain, selected: plain.Bold(true), tooltip: plain}
	}
	return styles{
		colors:   true,
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		knob:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		filled:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		tooltip:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#303030")),
	}
}

// fg returns a style with the given hex foreground, or a plain style when
// colors are off.
func (st styles) fg(hex string) lipgloss.Style {
	if !st.colors || hex == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

func (m *Model) renderHeader(view session.View) string {
	at := "-"
	if !view.At.IsZero() {
		at = view.At.Format(headerTimeFormat)
	}
	right := fmt.Sprintf(" at %s · %d of %d commits", at, len(view.Commits), len(m.s.Commits()))
	if m.changes.Enter > 0 || m.changes.Exit > 0 {
		right += fmt.Sprintf(" · +%d -%d lines", m.changes.Enter, m.changes.Exit)
	}
	if m.opts.Rejected > 0 {
		right += fmt.Sprintf(" · %d rows rejected", m.opts.Rejected)
	}
	title := m.opts.Title
	if title == "" {
		title = "timelapse"
	}
	room := max(m.width-runewidth.StringWidth(right), 4)
	title = runewidth.Truncate(title, room, "…")
	return m.styles.header.Render(title) + m.styles.muted.Render(right)
}

func (m *Model) sliderTrackWidth() int {
	return max(m.width-sliderPrefixWidth-1, 2)
}

func (m *Model) renderSlider(view session.View) string {
	track := m.sliderTrackWidth()
	knob := int(view.Progress / 100 * float64(track-1))
	knob = max(0, min(knob, track-1))

	prefix := runewidth.FillRight(fmt.Sprintf(" %5.1f%%", view.Progress), sliderPrefixWidth)
	return prefix +
		m.styles.filled.Render(strings.Repeat("━", knob)) +
		m.styles.knob.Render("●") +
		m.styles.muted.Render(strings.Repeat("─", track-knob-1))
}

// canvas is a grid of rendered cells. An empty string marks the second half
// of a wide rune.
type canvas struct {
	cells [][]string
	plain [][]bool // cells that hold nothing yet
	w, h  int
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]string, h), plain: make([][]bool, h)}
	for r := range c.cells {
		c.cells[r] = make([]string, w)
		c.plain[r] = make([]bool, w)
		for col := range c.cells[r] {
			c.cells[r][col] = " "
			c.plain[r][col] = true
		}
	}
	return c
}

func (c *canvas) set(col, row int, s string) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return
	}
	c.cells[row][col] = s
	c.plain[row][col] = false
}

// text writes s starting at (col, row), keeping wide runes two cells wide.
func (c *canvas) text(col, row int, s string, style lipgloss.Style) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.w {
			return
		}
		c.set(col, row, style.Render(string(r)))
		if w == 2 {
			c.set(col+1, row, "")
		}
		col += w
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for r, row := range c.cells {
		lines[r] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCanvas(view session.View) string {
	c := newCanvas(max(m.width, minWidth), m.canvasRows)
	if rect := m.activeRect(view); rect != nil {
		m.drawBrush(c, *rect)
	}
	for _, mk := range view.Marks {
		m.drawMark(c, mk)
	}
	if m.hovered != nil && m.pointer != nil {
		m.drawTooltip(c, *m.hovered, *m.pointer)
	}
	return c.String()
}

// activeRect is the brush being dragged, or else the committed selection.
func (m *Model) activeRect(view session.View) *schema.Rect {
	if m.brushing {
		return m.brushRect()
	}
	return view.Selection.Rect
}

func (m *Model) drawMark(c *canvas, mk schema.Mark) {
	style := m.styles.selected
	if !mk.Selected {
		hour := 0
		if commit, ok := m.s.Commit(mk.CommitID); ok {
			hour = int(commit.HourFrac)
		}
		style = m.styles.fg(bucketColors[schema.BucketForHour(hour)])
	}

	center := "●"
	if _, ok := m.freshMarks[mk.CommitID]; ok {
		center = "◉"
	}

	col, row := int(mk.X/cellW), int(mk.Y/cellH)
	if mk.R < cellW {
		if center == "●" {
			center = "•"
		}
		c.set(col, row, style.Render(center))
		return
	}
	// Fill every cell whose center falls inside the disc
	dc, dr := int(mk.R/cellW)+1, int(mk.R/cellH)+1
	for r := row - dr; r <= row+dr; r++ {
		for cc := col - dc; cc <= col+dc; cc++ {
			x, y := (float64(cc)+0.5)*cellW, (float64(r)+0.5)*cellH
			dx, dy := x-mk.X, y-mk.Y
			if dx*dx+dy*dy <= mk.R*mk.R {
				c.set(cc, r, style.Render("●"))
			}
		}
	}
	c.set(col, row, style.Render(center))
}

func (m *Model) drawBrush(c *canvas, rect schema.Rect) {
	c0, r0 := int(rect.X0/cellW), int(rect.Y0/cellH)
	c1, r1 := int(rect.X1/cellW), int(rect.Y1/cellH)
	put := func(col, row int, s string) {
		if col >= 0 && row >= 0 && col < c.w && row < c.h && c.plain[row][col] {
			c.set(col, row, m.styles.muted.Render(s))
		}
	}
	for col := c0 + 1; col < c1; col++ {
		put(col, r0, "─")
		put(col, r1, "─")
	}
	for row := r0 + 1; row < r1; row++ {
		put(c0, row, "│")
		put(c1, row, "│")
	}
	put(c0, r0, "┌")
	put(c1, r0, "┐")
	put(c0, r1, "└")
	put(c1, r1, "┘")
}

func (m *Model) drawTooltip(c *canvas, commit schema.Commit, pointer schema.Point) {
	lines := strings.Split(plot.TooltipText(commit), "\n")
	inner := 0
	for i, line := range lines {
		lines[i] = runewidth.Truncate(line, max(c.w-4, 1), "…")
		inner = max(inner, runewidth.StringWidth(lines[i]))
	}
	w, h := inner+2, len(lines)

	pos := plot.PlaceTooltip(
		pointer,
		schema.Size{W: float64(w) * cellW, H: float64(h) * cellH},
		schema.Size{W: float64(c.w) * cellW, H: float64(c.h) * cellH},
	)
	col, row := max(0, int(pos.X/cellW)), max(0, int(pos.Y/cellH))
	for i, line := range lines {
		padded := " " + runewidth.FillRight(line, inner) + " "
		c.text(col, row+i, padded, m.styles.tooltip)
	}
}

func (m *Model) renderAxis() string {
	width := max(m.width, minWidth)
	scales := m.s.PlotScales()
	if scales.Empty {
		return m.styles.muted.Render(runewidth.FillRight("no commits yet", width))
	}
	area := scales.Dims.Usable()
	left := scales.TimeAt(area.X0).Format(axisTimeFormat)
	right := scales.TimeAt(area.X1).Format(axisTimeFormat)
	gap := max(width-runewidth.StringWidth(left)-runewidth.StringWidth(right), 1)
	return m.styles.muted.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderStats(st schema.Stats) string {
	busiest := "-"
	if st.BusiestPeriod != "" {
		busiest = fmt.Sprintf("%s on %s", st.BusiestPeriod, st.BusiestDay)
	}
	return fmt.Sprintf("Lines %d · Commits %d · Files %d · Longest %d · Avg line %.1f · Busiest %s",
		st.TotalLines, st.TotalCommits, st.NumFiles, st.LongestLine, st.AvgLineLength, busiest)
}

func (m *Model) renderSelection(view session.View) string {
	parts := []string{view.Selection.Text}
	for _, share := range view.Selection.Breakdown {
		swatch := m.styles.fg(m.s.Palette().Color(share.Language)).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s %.0f%%", swatch, share.Language, share.Percent))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderNarrative() string {
	i := m.driver.ActiveStep()
	if i < 0 {
		return m.styles.muted.Render("Before the first commit")
	}
	step := m.driver.Steps()[i]
	line := fmt.Sprintf("Step %d/%d: %s", i+1, m.driver.Len(), step.Text)
	return runewidth.Truncate(line, max(m.width, minWidth), "…")
}

func (m *Model) renderFiles(files []schema.FileRow) string {
	width := max(m.width, minWidth)
	nameW := min(fileNameWidth, width/3)
	rows := make([]string, fileRows)
	for i := range rows {
		switch {
		case i == fileRows-1 && len(files) > fileRows:
			rows[i] = m.styles.muted.Render(fmt.Sprintf("… %d more files", len(files)-fileRows+1))
		case i < len(files):
			f := files[i]
			name := runewidth.FillRight(runewidth.Truncate(f.Name, nameW, "…"), nameW)
			units := m.renderUnits(f.Units, width-nameW-6)
			rows[i] = fmt.Sprintf("%s %4d %s", name, f.LineCount, units)
		}
	}
	return strings.Join(rows, "\n")
}

// renderUnits draws one block per line, capped at room cells with a "+N" tail.
// Units that entered with the last cursor move are drawn as filled squares.
func (m *Model) renderUnits(units []schema.Unit, room int) string {
	if room <= 0 {
		return ""
	}
	shown := len(units)
	tail := ""
	if shown > room {
		tail = fmt.Sprintf("+%d", len(units)-room+4)
		shown = max(room-4, 0)
	}
	var b strings.Builder
	for _, u := range units[:shown] {
		glyph := "▪"
		if _, ok := m.freshUnits[u.Key]; ok {
			glyph = "■"
		}
		b.WriteString(m.styles.fg(u.Color).Render(glyph))
	}
	if tail != "" {
		b.WriteString(m.styles.muted.Render(tail))
	}
	return b.String()
}

func (m *Model) renderLegend() string {
	parts := make([]string, 0, len(m.opts.Languages))
	for _, share := range m.opts.Languages {
		swatch := m.styles.fg(m.s.Palette().Color(share.Language)).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s %.1f%%", swatch, share.Language, share.Percent))
	}
	return strings.Join(parts, "  ")
}
