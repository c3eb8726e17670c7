// Package document provides the paginated write surface reports are drawn on.
//
// A Surface only knows primitives: rectangles, lines, triangles, text and
// images at absolute page coordinates (millimetres, origin top-left). Canvas
// layers a vertical write cursor, margins, page breaks and a fixed theme on
// top of a Surface.
package document

import (
	"image/color"
	"io"
)

// Align controls horizontal text placement relative to the x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a run of text is drawn.
type TextStyle struct {
	Size  float64 // points
	Bold  bool
	Color color.RGBA
	Align Align
}

// Point is an absolute position on the page.
type Point struct {
	X, Y float64
}

// Surface is the primitive drawing target. Text is always placed with its
// baseline at y and its left edge at x; alignment is resolved by Canvas.
type Surface interface {
	PageSize() (w, h float64)
	AddPage()
	SetPage(n int)
	PageCount() int

	FillRect(x, y, w, h float64, c color.RGBA)
	StrokeRect(x, y, w, h float64, c color.RGBA, width float64)
	Line(x1, y1, x2, y2 float64, c color.RGBA, width float64)
	Triangle(a, b, c Point, col color.RGBA)
	Text(x, y float64, s string, size float64, bold bool, c color.RGBA)
	TextWidth(s string, size float64, bold bool) float64
	// Image draws an already-validated PNG or JPEG. format is "png" or "jpeg".
	Image(name, format string, data []byte, x, y, w, h float64) error

	Output(w io.Writer) error
}

// ptToMM converts a font size in points to millimetres.
const ptToMM = 25.4 / 72
