package chart

import (
	"image/color"
	"math"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Pie chart geometry in millimetres.
const (
	// PieAngularStep is the maximum sweep in degrees of one triangle in a
	// sector's fan. Smaller steps give rounder pies at the cost of more primitives.
	PieAngularStep = 5.0

	PieChartHeight = 60.0
	pieRadius      = 24.0
	pieStartAngle  = -90.0 // top of the circle
	legendRowH     = 7.0
)

// Pie draws a pie chart starting at the top and sweeping clockwise, with each
// sector approximated by a triangle fan, plus a side legend. Nothing is drawn
// when the total is zero.
func Pie(w document.Writer, title string, data []Category) {
	total := 0.0
	for _, c := range data {
		if c.Value > 0 {
			total += c.Value
		}
	}
	if total <= 0 {
		return
	}

	w.EnsureSpace(titleHeight(title) + PieChartHeight)
	Title(w, title)

	th := w.Theme()
	left, width := w.Left(), w.ContentWidth()
	w.WriteRect(left, 0, width, PieChartHeight, th.Color(theme.Card))

	cx, cy := left+6+pieRadius, PieChartHeight/2
	start := pieStartAngle
	for i, c := range data {
		if c.Value <= 0 {
			continue
		}
		sweep := c.Value / total * 360
		fan(w, cx, cy, pieRadius, start, sweep, th.SeriesColor(i))
		start += sweep
	}

	lx := cx + pieRadius + 12
	ly := cy - float64(len(data))*legendRowH/2 + legendRowH/2
	for i, c := range data {
		y := ly + float64(i)*legendRowH
		w.WriteRect(lx, y-3, 4, 4, th.SeriesColor(i))
		w.WriteText(lx+6, y, c.Label, document.TextStyle{Size: BodySize, Color: th.Color(theme.Text)})
		share := 0.0
		if c.Value > 0 {
			share = c.Value / total * 100
		}
		w.WriteText(left+width-30, y, FormatNumber(c.Value, 0), document.TextStyle{
			Size: BodySize, Bold: true, Color: th.Color(theme.Text), Align: document.AlignRight,
		})
		w.WriteText(left+width-4, y, FormatPercent(share), document.TextStyle{
			Size: BodySize, Color: th.Color(theme.Muted), Align: document.AlignRight,
		})
	}

	w.Advance(PieChartHeight + BlockSpacing)
}

// fan approximates a circular sector with triangles sharing the centre.
// Angles are in degrees; with y pointing down, increasing angles run clockwise.
func fan(w document.Writer, cx, cy, r, start, sweep float64, col color.RGBA) {
	if sweep <= 0 {
		return
	}
	n := int(math.Ceil(sweep / PieAngularStep))
	da := sweep / float64(n)
	centre := document.Point{X: cx, Y: cy}
	for k := 0; k < n; k++ {
		a0 := start + float64(k)*da
		a1 := a0 + da
		w.WriteTriangle(centre, polar(cx, cy, r, a0), polar(cx, cy, r, a1), col)
	}
}

func polar(cx, cy, r, deg float64) document.Point {
	rad := deg * math.Pi / 180
	return document.Point{X: cx + r*math.Cos(rad), Y: cy + r*math.Sin(rad)}
}
