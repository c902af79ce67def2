package plot

import (
	"fmt"
	"strings"

	"github.com/huangsam/timelapse/schema"
)

// TooltipOffset is the gap between the pointer and the tooltip.
const TooltipOffset = 10.0

// PlaceTooltip positions a tooltip of the given size next to the pointer,
// pulling it back inside the viewport when it would overflow the right or
// bottom edge.
func PlaceTooltip(pointer schema.Point, size, viewport schema.Size) schema.Point {
	pos := schema.Point{X: pointer.X + TooltipOffset, Y: pointer.Y + TooltipOffset}
	if pos.X+size.W > viewport.W {
		pos.X = viewport.W - size.W - TooltipOffset
	}
	if pos.Y+size.H > viewport.H {
		pos.Y = viewport.H - size.H - TooltipOffset
	}
	return pos
}

// TooltipField is one labeled line of a tooltip.
type TooltipField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TooltipFields describes a commit for display.
func TooltipFields(c schema.Commit) []TooltipField {
	return []TooltipField{
		{Label: "Commit", Value: c.ID},
		{Label: "URL", Value: c.URL},
		{Label: "Author", Value: c.Author},
		{Label: "Date", Value: c.Datetime.Format("Monday, January 2, 2006")},
		{Label: "Time", Value: c.Datetime.Format("3:04 PM")},
		{Label: "Lines", Value: fmt.Sprint(c.TotalLines)},
	}
}

// TooltipText renders the fields one per line.
func TooltipText(c schema.Commit) string {
	var b strings.Builder
	for i, f := range TooltipFields(c) {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", f.Label, f.Value)
	}
	return b.String()
}
