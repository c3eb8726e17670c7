package chart

import (
	"math"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Line chart geometry in millimetres.
const (
	LineChartHeight = 70.0
	GridDivisions   = 4
	MaxXLabels      = 6
	lineAxisWidth   = 12.0
	linePlotTop     = 5.0
	linePlotBottom  = 58.0
)

// Line draws a line chart with a four-division horizontal grid. Consecutive
// samples are joined by straight segments and at most MaxXLabels x-axis
// labels are printed, evenly spaced. No samples draws nothing.
func Line(w document.Writer, title, unit string, samples []Sample) {
	if len(samples) == 0 {
		return
	}
	w.EnsureSpace(titleHeight(title) + LineChartHeight)
	Title(w, title)

	th := w.Theme()
	left, width := w.Left(), w.ContentWidth()
	w.WriteRect(left, 0, width, LineChartHeight, th.Color(theme.Card))

	maxV := 0.0
	for _, s := range samples {
		maxV = math.Max(maxV, s.Value)
	}
	scale := maxV
	if scale <= 0 {
		scale = 1
	}

	plotL := left + lineAxisWidth
	plotR := left + width - 4
	plotW := plotR - plotL
	plotH := linePlotBottom - linePlotTop

	labelStyle := document.TextStyle{Size: LabelSize, Color: th.Color(theme.Muted), Align: document.AlignRight}
	for i := 0; i <= GridDivisions; i++ {
		frac := float64(i) / GridDivisions
		y := linePlotBottom - frac*plotH
		w.WriteLine(plotL, y, plotR, y, th.Color(theme.Grid), 0.2)
		w.WriteText(plotL-1.5, y+1, FormatNumber(scale*frac, 0), labelStyle)
	}
	if unit != "" {
		w.WriteText(plotL-1.5, linePlotTop-2, unit, labelStyle)
	}

	n := len(samples)
	xAt := func(i int) float64 {
		if n == 1 {
			return plotL + plotW/2
		}
		return plotL + float64(i)*plotW/float64(n-1)
	}
	yAt := func(v float64) float64 {
		if v < 0 {
			v = 0
		}
		return linePlotBottom - v/scale*plotH
	}

	stroke := th.Color(theme.Primary)
	for i := 1; i < n; i++ {
		w.WriteLine(xAt(i-1), yAt(samples[i-1].Value), xAt(i), yAt(samples[i].Value), stroke, 0.5)
	}
	if n == 1 {
		x, y := xAt(0), yAt(samples[0].Value)
		w.WriteRect(x-0.8, y-0.8, 1.6, 1.6, stroke)
	}

	xStyle := document.TextStyle{Size: LabelSize, Color: th.Color(theme.Muted), Align: document.AlignCenter}
	for _, i := range XLabelIndices(n) {
		w.WriteText(xAt(i), linePlotBottom+5, samples[i].Label, xStyle)
	}

	w.Advance(LineChartHeight + BlockSpacing)
}

// XLabelIndices picks at most MaxXLabels evenly spaced sample indices,
// always including the first and last sample.
func XLabelIndices(n int) []int {
	if n <= 0 {
		return nil
	}
	k := MaxXLabels
	if n < k {
		k = n
	}
	if k == 1 {
		return []int{0}
	}
	out := make([]int, k)
	for j := 0; j < k; j++ {
		out[j] = int(math.Round(float64(j) * float64(n-1) / float64(k-1)))
	}
	return out
}
