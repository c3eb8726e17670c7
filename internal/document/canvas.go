package document

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/banshee-data/fleet.report/internal/theme"
)

// Margins in millimetres. Bottom includes the footer band.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leaves an 18mm band at the bottom for the page footer.
var DefaultMargins = Margins{Top: 14, Right: 14, Bottom: 18, Left: 14}

// Writer is the contract drawing routines depend on. Every Write* call draws
// relative to the current vertical offset and leaves the offset untouched;
// callers move it with Advance. Block-level routines must call EnsureSpace
// before drawing so a block never straddles a page boundary.
type Writer interface {
	Theme() theme.Theme
	Left() float64
	ContentWidth() float64
	Y() float64
	Remaining() float64
	Advance(dy float64)
	EnsureSpace(h float64) bool
	AdvancePage()

	WriteRect(x, dy, w, h float64, c color.RGBA)
	WriteBorder(x, dy, w, h float64, c color.RGBA, width float64)
	WriteLine(x1, dy1, x2, dy2 float64, c color.RGBA, width float64)
	WriteTriangle(a, b, c Point, col color.RGBA)
	WriteText(x, dy float64, s string, st TextStyle)
	WriteImage(name string, data []byte, x, dy, w, h float64) error
	TextWidth(s string, size float64, bold bool) float64
}

// Canvas is a mutable write cursor over a fixed-size paginated Surface. A
// Canvas lives for one render; its theme never changes after construction.
type Canvas struct {
	surface Surface
	theme   theme.Theme
	margins Margins
	pageW   float64
	pageH   float64
	y       float64
	pages   int
}

var _ Writer = (*Canvas)(nil)

// NewCanvas starts the first page on s and paints its background.
func NewCanvas(s Surface, th theme.Theme, m Margins) *Canvas {
	w, h := s.PageSize()
	c := &Canvas{surface: s, theme: th, margins: m, pageW: w, pageH: h}
	c.AdvancePage()
	return c
}

func (c *Canvas) Theme() theme.Theme       { return c.theme }
func (c *Canvas) Margins() Margins         { return c.margins }
func (c *Canvas) PageSize() (w, h float64) { return c.pageW, c.pageH }
func (c *Canvas) Left() float64            { return c.margins.Left }
func (c *Canvas) Right() float64           { return c.pageW - c.margins.Right }
func (c *Canvas) ContentWidth() float64    { return c.pageW - c.margins.Left - c.margins.Right }
func (c *Canvas) Y() float64               { return c.y }
func (c *Canvas) Pages() int               { return c.pages }

// Bottom is the lowest y content may reach on a page.
func (c *Canvas) Bottom() float64 { return c.pageH - c.margins.Bottom }

// Remaining is the vertical space left on the current page.
func (c *Canvas) Remaining() float64 { return c.Bottom() - c.y }

// Advance moves the cursor down by dy.
func (c *Canvas) Advance(dy float64) { c.y += dy }

// AdvancePage starts a new page, repaints the themed background and resets
// the offset to the top margin.
func (c *Canvas) AdvancePage() {
	c.surface.AddPage()
	c.pages++
	c.surface.FillRect(0, 0, c.pageW, c.pageH, c.theme.Color(theme.Background))
	c.y = c.margins.Top
}

// EnsureSpace breaks to a new page when fewer than h millimetres remain.
// It reports whether a break happened.
func (c *Canvas) EnsureSpace(h float64) bool {
	if c.Remaining() >= h {
		return false
	}
	c.AdvancePage()
	return true
}

func (c *Canvas) WriteRect(x, dy, w, h float64, col color.RGBA) {
	c.surface.FillRect(x, c.y+dy, w, h, col)
}

func (c *Canvas) WriteBorder(x, dy, w, h float64, col color.RGBA, width float64) {
	c.surface.StrokeRect(x, c.y+dy, w, h, col, width)
}

func (c *Canvas) WriteLine(x1, dy1, x2, dy2 float64, col color.RGBA, width float64) {
	c.surface.Line(x1, c.y+dy1, x2, c.y+dy2, col, width)
}

// WriteTriangle takes vertices with Y relative to the cursor.
func (c *Canvas) WriteTriangle(a, b, d Point, col color.RGBA) {
	a.Y += c.y
	b.Y += c.y
	d.Y += c.y
	c.surface.Triangle(a, b, d, col)
}

// WriteText draws s with its baseline at dy below the cursor. For AlignRight x
// is the right edge; for AlignCenter it is the centre.
func (c *Canvas) WriteText(x, dy float64, s string, st TextStyle) {
	if s == "" {
		return
	}
	size := st.Size
	if size <= 0 {
		size = 9
	}
	switch st.Align {
	case AlignRight:
		x -= c.surface.TextWidth(s, size, st.Bold)
	case AlignCenter:
		x -= c.surface.TextWidth(s, size, st.Bold) / 2
	}
	c.surface.Text(x, c.y+dy, s, size, st.Bold, st.Color)
}

func (c *Canvas) TextWidth(s string, size float64, bold bool) float64 {
	return c.surface.TextWidth(s, size, bold)
}

// WriteImage validates data as PNG or JPEG before handing it to the surface,
// so a corrupt bitmap is reported here instead of poisoning the document.
func (c *Canvas) WriteImage(name string, data []byte, x, dy, w, h float64) error {
	if len(data) == 0 {
		return fmt.Errorf("image %s: empty", name)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("image %s: %w", name, err)
	}
	return c.surface.Image(name, format, data, x, c.y+dy, w, h)
}

// FooterFunc paints the footer of one page. The cursor is placed at the top
// of the footer band before it is called.
type FooterFunc func(c *Canvas, page, total int)

// Finish paints footers on every page and returns the document bytes. Either
// the complete document is returned or an error; never partial output.
func (c *Canvas) Finish(footer FooterFunc) ([]byte, error) {
	total := c.surface.PageCount()
	if footer != nil {
		for p := 1; p <= total; p++ {
			c.surface.SetPage(p)
			c.y = c.Bottom()
			footer(c, p, total)
		}
	}

	var buf bytes.Buffer
	if err := c.surface.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
