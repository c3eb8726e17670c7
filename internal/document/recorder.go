package document

import (
	"fmt"
	"image/color"
	"io"
	"unicode/utf8"
)

// OpKind names a recorded primitive.
type OpKind string

const (
	OpPage     OpKind = "page"
	OpFill     OpKind = "fill"
	OpStroke   OpKind = "stroke"
	OpLine     OpKind = "line"
	OpTriangle OpKind = "triangle"
	OpText     OpKind = "text"
	OpImage    OpKind = "image"
)

// Op is one recorded drawing primitive.
type Op struct {
	Kind  OpKind
	Page  int
	X, Y  float64
	W, H  float64
	Pts   [3]Point
	Text  string
	Size  float64
	Bold  bool
	Color color.RGBA
}

// Recorder is an in-memory Surface that logs every primitive. It is used by
// tests and for dry runs where only layout matters.
type Recorder struct {
	Width, Height float64
	Ops           []Op

	page  int
	pages int
}

// NewRecorder returns an A4 recorder with no pages.
func NewRecorder() *Recorder {
	return &Recorder{Width: A4Width, Height: A4Height}
}

func (r *Recorder) PageSize() (float64, float64) { return r.Width, r.Height }

func (r *Recorder) AddPage() {
	r.pages++
	r.page = r.pages
	r.Ops = append(r.Ops, Op{Kind: OpPage, Page: r.page})
}

func (r *Recorder) SetPage(n int) {
	if n >= 1 && n <= r.pages {
		r.page = n
	}
}

func (r *Recorder) PageCount() int { return r.pages }

func (r *Recorder) FillRect(x, y, w, h float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Page: r.page, X: x, Y: y, W: w, H: h, Color: c})
}

func (r *Recorder) StrokeRect(x, y, w, h float64, c color.RGBA, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Page: r.page, X: x, Y: y, W: w, H: h, Color: c, Size: width})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, c color.RGBA, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Page: r.page, X: x1, Y: y1, W: x2 - x1, H: y2 - y1, Color: c, Size: width})
}

func (r *Recorder) Triangle(a, b, c Point, col color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpTriangle, Page: r.page, Pts: [3]Point{a, b, c}, Color: col})
}

func (r *Recorder) Text(x, y float64, s string, size float64, bold bool, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.page, X: x, Y: y, Text: s, Size: size, Bold: bold, Color: c})
}

// TextWidth approximates Helvetica with an average glyph width of half the em.
func (r *Recorder) TextWidth(s string, size float64, bold bool) float64 {
	w := float64(utf8.RuneCountInString(s)) * size * 0.5 * ptToMM
	if bold {
		w *= 1.05
	}
	return w
}

func (r *Recorder) Image(name, format string, data []byte, x, y, w, h float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpImage, Page: r.page, X: x, Y: y, W: w, H: h, Text: name})
	return nil
}

// Output writes a plain-text op listing.
func (r *Recorder) Output(w io.Writer) error {
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%d %s %.2f %.2f %.2f %.2f %q\n", op.Page, op.Kind, op.X, op.Y, op.W, op.H, op.Text); err != nil {
			return err
		}
	}
	return nil
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns every recorded text run in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// HasText reports whether s was drawn verbatim.
func (r *Recorder) HasText(s string) bool {
	for _, op := range r.Ops {
		if op.Kind == OpText && op.Text == s {
			return true
		}
	}
	return false
}

// Filter returns the ops of kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset drops recorded ops while keeping page state.
func (r *Recorder) Reset() { r.Ops = nil }
