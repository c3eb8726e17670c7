package chart

import (
	"math"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Card geometry in millimetres.
const (
	CardHeight = 18.0
	CardGap    = 3.0
	fieldRowH  = 9.0
	fieldPad   = 3.0
)

// Card is one statistic tile: a small label over a large value.
type Card struct {
	Label string
	Value string
	Hint  string
	Role  theme.Role
}

// Cards lays cards out in rows of perRow. Each row reserves its own space,
// so a long card grid may continue on the next page between rows.
func Cards(w document.Writer, title string, cards []Card, perRow int) {
	if len(cards) == 0 {
		return
	}
	if perRow <= 0 {
		perRow = 4
	}
	w.EnsureSpace(titleHeight(title) + CardHeight)
	Title(w, title)

	th := w.Theme()
	cw := (w.ContentWidth() - CardGap*float64(perRow-1)) / float64(perRow)
	for start := 0; start < len(cards); start += perRow {
		w.EnsureSpace(CardHeight)
		end := min(start+perRow, len(cards))
		for i, c := range cards[start:end] {
			x := w.Left() + float64(i)*(cw+CardGap)
			w.WriteRect(x, 0, cw, CardHeight, th.Color(theme.Card))
			w.WriteRect(x, 0, 1.2, CardHeight, th.Color(c.Role))
			w.WriteText(x+4, 6, truncate(w, c.Label, LabelSize, false, cw-6), document.TextStyle{
				Size: LabelSize, Color: th.Color(theme.Muted),
			})
			w.WriteText(x+4, 13, truncate(w, c.Value, 12, true, cw-6), document.TextStyle{
				Size: 12, Bold: true, Color: th.Color(theme.Text),
			})
			if c.Hint != "" {
				w.WriteText(x+4, 16.5, truncate(w, c.Hint, 6.5, false, cw-6), document.TextStyle{
					Size: 6.5, Color: th.Color(theme.Muted),
				})
			}
		}
		w.Advance(CardHeight + CardGap)
	}
	w.Advance(BlockSpacing - CardGap)
}

// Field is one label/value pair of a descriptor block.
type Field struct {
	Label string
	Value string
}

// Fields draws a bordered descriptor block with cols pairs per row. The block
// is kept together on one page.
func Fields(w document.Writer, title string, fields []Field, cols int) {
	if len(fields) == 0 {
		return
	}
	if cols <= 0 {
		cols = 2
	}
	rows := int(math.Ceil(float64(len(fields)) / float64(cols)))
	h := float64(rows)*fieldRowH + 2*fieldPad
	w.EnsureSpace(titleHeight(title) + h)
	Title(w, title)

	th := w.Theme()
	left, width := w.Left(), w.ContentWidth()
	w.WriteRect(left, 0, width, h, th.Color(theme.Card))
	w.WriteBorder(left, 0, width, h, th.Color(theme.Border), 0.2)

	colW := (width - 2*fieldPad) / float64(cols)
	for i, f := range fields {
		r, c := i/cols, i%cols
		x := left + fieldPad + float64(c)*colW
		y := fieldPad + float64(r)*fieldRowH
		w.WriteText(x, y+3, f.Label, document.TextStyle{Size: 6.5, Color: th.Color(theme.Muted)})
		value := f.Value
		if value == "" {
			value = "-"
		}
		w.WriteText(x, y+7.5, truncate(w, value, BodySize, true, colW-2), document.TextStyle{
			Size: BodySize, Bold: true, Color: th.Color(theme.Text),
		})
	}
	w.Advance(h + BlockSpacing)
}
