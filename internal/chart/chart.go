// Package chart draws charts, tables and cards using only the rectangle,
// line, triangle and text primitives of a document.Writer.
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

// Category is one labelled value of a bar or pie chart.
type Category struct {
	Label string
	Value float64
}

// Sample is one point of a line chart.
type Sample struct {
	Label string
	Value float64
}

// Font sizes in points.
const (
	TitleSize = 11.0
	LabelSize = 7.5
	ValueSize = 8.0
	BodySize  = 8.5
)

// Layout constants in millimetres.
const (
	TitleHeight  = 8.0
	BlockSpacing = 6.0
)

// titleAccentW is the width of the coloured mark left of a block title.
const titleAccentW = 1.4

// Title draws a section heading with an accent bar and advances past it.
// It does not reserve space; callers reserve title and body together.
func Title(w document.Writer, text string) {
	if text == "" {
		return
	}
	th := w.Theme()
	w.WriteRect(w.Left(), 1, titleAccentW, 5, th.Color(theme.Primary))
	w.WriteText(w.Left()+3.5, 5, text, document.TextStyle{Size: TitleSize, Bold: true, Color: th.Color(theme.Text)})
	w.Advance(TitleHeight)
}

func titleHeight(text string) float64 {
	if text == "" {
		return 0
	}
	return TitleHeight
}

// FormatNumber renders v with the given decimals, a comma decimal separator
// and dot thousands grouping.
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return FormatNumber(p, 1) + "%"
}

// truncate shortens s with an ellipsis until it fits maxW.
func truncate(w document.Writer, s string, size float64, bold bool, maxW float64) string {
	if maxW <= 0 || w.TextWidth(s, size, bold) <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 1 {
		r = r[:len(r)-1]
		if w.TextWidth(string(r)+"…", size, bold) <= maxW {
			return string(r) + "…"
		}
	}
	return string(r)
}
