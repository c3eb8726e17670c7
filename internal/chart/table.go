package chart

import (
	"image/color"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Table row geometry in millimetres.
const (
	TableHeaderHeight = 7.5
	TableRowHeight    = 6.5
	tableCellPad      = 2.0
)

// Column describes one table column. Width is a share of the content width;
// shares are normalised so they need not sum to 1.
type Column struct {
	Title   string
	Width   float64
	Numeric bool
}

// TableSpec is a fixed column set and its rows of preformatted cells.
type TableSpec struct {
	Title   string
	Columns []Column
	Rows    [][]string
	// Empty is printed in a single row when Rows is empty.
	Empty string
}

// Table draws a table with alternating row fills. When a row does not fit, the
// table continues on a new page (with the themed background repainted) and
// the header row is repeated. Numeric columns are right-aligned.
func Table(w document.Writer, tbl TableSpec) {
	if len(tbl.Columns) == 0 {
		return
	}

	w.EnsureSpace(titleHeight(tbl.Title) + TableHeaderHeight + TableRowHeight)
	Title(w, tbl.Title)

	xs, widths := columnLayout(w, tbl.Columns)
	header(w, tbl.Columns, xs, widths)

	th := w.Theme()
	if len(tbl.Rows) == 0 {
		if tbl.Empty != "" {
			w.WriteText(w.Left()+tableCellPad, TableRowHeight-2, tbl.Empty, document.TextStyle{
				Size: BodySize, Color: th.Color(theme.Muted),
			})
			w.Advance(TableRowHeight)
		}
		w.Advance(BlockSpacing)
		return
	}

	for i, row := range tbl.Rows {
		if w.Remaining() < TableRowHeight {
			w.AdvancePage()
			header(w, tbl.Columns, xs, widths)
		}
		if i%2 == 1 {
			w.WriteRect(w.Left(), 0, w.ContentWidth(), TableRowHeight, th.Color(theme.RowAlt))
		}
		for c, col := range tbl.Columns {
			if c >= len(row) {
				break
			}
			cell(w, row[c], col.Numeric, xs[c], widths[c], TableRowHeight, false, th.Color(theme.Text))
		}
		w.Advance(TableRowHeight)
	}
	w.WriteLine(w.Left(), 0, w.Left()+w.ContentWidth(), 0, th.Color(theme.Border), 0.2)
	w.Advance(BlockSpacing)
}

func columnLayout(w document.Writer, cols []Column) (xs, widths []float64) {
	total := 0.0
	for _, c := range cols {
		if c.Width > 0 {
			total += c.Width
		} else {
			total++
		}
	}
	xs = make([]float64, len(cols))
	widths = make([]float64, len(cols))
	x := w.Left()
	for i, c := range cols {
		share := c.Width
		if share <= 0 {
			share = 1
		}
		widths[i] = share / total * w.ContentWidth()
		xs[i] = x
		x += widths[i]
	}
	return xs, widths
}

func header(w document.Writer, cols []Column, xs, widths []float64) {
	th := w.Theme()
	w.WriteRect(w.Left(), 0, w.ContentWidth(), TableHeaderHeight, th.Color(theme.Primary))
	for i, c := range cols {
		cell(w, c.Title, c.Numeric, xs[i], widths[i], TableHeaderHeight, true, th.Color(theme.OnPrimary))
	}
	w.Advance(TableHeaderHeight)
}

func cell(w document.Writer, text string, numeric bool, x, width, h float64, bold bool, col color.RGBA) {
	text = truncate(w, text, BodySize, bold, width-2*tableCellPad)
	st := document.TextStyle{Size: BodySize, Bold: bold, Color: col}
	if numeric {
		st.Align = document.AlignRight
		w.WriteText(x+width-tableCellPad, h-2, text, st)
		return
	}
	w.WriteText(x+tableCellPad, h-2, text, st)
}
