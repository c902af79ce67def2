package agg

// category10 is the ten-color cycle used for language colors.
var category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette assigns colors to languages in first-seen order. A language keeps
// its color for the lifetime of the palette. It is not safe for concurrent use.
type Palette struct {
	assigned map[string]string
	order    []string
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{assigned: make(map[string]string)}
}

// Color returns the color of lang, assigning the next one if it is new.
// A nil palette returns an empty string.
func (p *Palette) Color(lang string) string {
	if p == nil {
		return ""
	}
	if c, ok := p.assigned[lang]; ok {
		return c
	}
	c := category10[len(p.order)%len(category10)]
	p.assigned[lang] = c
	p.order = append(p.order, lang)
	return c
}

// Languages returns the languages seen so far in assignment order.
func (p *Palette) Languages() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.order...)
}
