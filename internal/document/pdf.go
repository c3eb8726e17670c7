package document

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

// A4 portrait in millimetres.
const (
	A4Width  = 210.0
	A4Height = 297.0
)

const pdfFont = "Helvetica"

// PDFSurface draws onto an fpdf document. Automatic page breaks are disabled;
// pagination belongs to Canvas.
type PDFSurface struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	images    map[string]bool
}

// PDFInfo is document metadata written into the PDF info dictionary.
type PDFInfo struct {
	Title    string
	Author   string
	Producer string
	Created  time.Time
}

// NewPDFSurface creates an empty A4 portrait document. No page is added yet.
func NewPDFSurface(info PDFInfo) *PDFSurface {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		SizeStr:        "A4",
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)
	if info.Title != "" {
		pdf.SetTitle(info.Title, true)
	}
	if info.Author != "" {
		pdf.SetAuthor(info.Author, true)
	}
	if info.Producer != "" {
		pdf.SetProducer(info.Producer, true)
		pdf.SetCreator(info.Producer, true)
	}
	if !info.Created.IsZero() {
		pdf.SetCreationDate(info.Created)
		pdf.SetModificationDate(info.Created)
	}

	return &PDFSurface{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]bool),
	}
}

func (s *PDFSurface) PageSize() (float64, float64) { return A4Width, A4Height }

func (s *PDFSurface) AddPage() { s.pdf.AddPage() }

func (s *PDFSurface) SetPage(n int) { s.pdf.SetPage(n) }

func (s *PDFSurface) PageCount() int { return s.pdf.PageCount() }

func (s *PDFSurface) FillRect(x, y, w, h float64, c color.RGBA) {
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Rect(x, y, w, h, "F")
}

func (s *PDFSurface) StrokeRect(x, y, w, h float64, c color.RGBA, width float64) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetLineWidth(width)
	s.pdf.Rect(x, y, w, h, "D")
}

func (s *PDFSurface) Line(x1, y1, x2, y2 float64, c color.RGBA, width float64) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetLineWidth(width)
	s.pdf.Line(x1, y1, x2, y2)
}

func (s *PDFSurface) Triangle(a, b, c Point, col color.RGBA) {
	s.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	s.pdf.Polygon([]fpdf.PointType{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}, {X: c.X, Y: c.Y}}, "F")
}

func (s *PDFSurface) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	s.pdf.SetFont(pdfFont, style, size)
}

func (s *PDFSurface) Text(x, y float64, txt string, size float64, bold bool, c color.RGBA) {
	s.setFont(size, bold)
	s.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Text(x, y, s.translate(txt))
}

func (s *PDFSurface) TextWidth(txt string, size float64, bold bool) float64 {
	s.setFont(size, bold)
	return s.pdf.GetStringWidth(s.translate(txt))
}

func (s *PDFSurface) Image(name, format string, data []byte, x, y, w, h float64) error {
	var imgType string
	switch format {
	case "png":
		imgType = "PNG"
	case "jpeg":
		imgType = "JPG"
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	if err := s.pdf.Error(); err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: imgType}
	// fpdf errors are sticky; a rejected bitmap must not poison the document.
	if !s.images[name] {
		s.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if err := s.pdf.Error(); err != nil {
			s.pdf.ClearError()
			return fmt.Errorf("register image %s: %w", name, err)
		}
		s.images[name] = true
	}
	s.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := s.pdf.Error(); err != nil {
		s.pdf.ClearError()
		return fmt.Errorf("place image %s: %w", name, err)
	}
	return nil
}

// Output writes the finished document. It fails if any earlier draw call left
// the document in an error state.
func (s *PDFSurface) Output(w io.Writer) error {
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("pdf output: %w", err)
	}
	return nil
}
