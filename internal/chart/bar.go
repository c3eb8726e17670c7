package chart

import (
	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Bar chart geometry in millimetres.
const (
	BarChartHeight = 62.0
	BarGap         = 4.0
	barPlotTop     = 6.0  // room for value labels
	barPlotBottom  = 50.0 // baseline, category labels below

	// minBarW is the narrowest bar drawn with the standard gap; denser charts
	// shrink the gap instead.
	minBarW = 1.0
	// minLabelW is the narrowest slot that still gets value and category labels.
	minLabelW = 4.0
)

// Bar draws a vertical bar chart. Bar heights are normalised to the largest
// value; a single category fills the full height. Empty input draws nothing.
func Bar(w document.Writer, title string, data []Category) {
	if len(data) == 0 {
		return
	}
	w.EnsureSpace(titleHeight(title) + BarChartHeight)
	Title(w, title)

	th := w.Theme()
	left, width := w.Left(), w.ContentWidth()
	w.WriteRect(left, 0, width, BarChartHeight, th.Color(theme.Card))

	maxV := 0.0
	for _, c := range data {
		if c.Value > maxV {
			maxV = c.Value
		}
	}

	n := float64(len(data))
	inner := width - 2*BarGap
	gap := BarGap
	barW := (inner - gap*(n-1)) / n
	if barW < minBarW {
		gap = inner / n / 4
		barW = (inner - gap*(n-1)) / n
	}
	labelled := barW+gap >= minLabelW
	plotH := barPlotBottom - barPlotTop

	w.WriteLine(left+BarGap, barPlotBottom, left+width-BarGap, barPlotBottom, th.Color(theme.Border), 0.3)

	for i, c := range data {
		x := left + BarGap + float64(i)*(barW+gap)
		h := 0.0
		if maxV > 0 && c.Value > 0 {
			h = c.Value / maxV * plotH
		}
		if h > 0 {
			w.WriteRect(x, barPlotBottom-h, barW, h, th.SeriesColor(i))
		}
		if !labelled {
			continue
		}
		cx := x + barW/2
		w.WriteText(cx, barPlotBottom-h-1.5, FormatNumber(c.Value, 0), document.TextStyle{
			Size: ValueSize, Bold: true, Color: th.Color(theme.Text), Align: document.AlignCenter,
		})
		label := truncate(w, c.Label, LabelSize, false, barW+gap)
		w.WriteText(cx, barPlotBottom+5, label, document.TextStyle{
			Size: LabelSize, Color: th.Color(theme.Muted), Align: document.AlignCenter,
		})
	}

	w.Advance(BarChartHeight + BlockSpacing)
}
