package chart

import (
	"fmt"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/theme"
)

func newCanvas(t *testing.T) (*document.Canvas, *document.Recorder) {
	t.Helper()
	rec := document.NewRecorder()
	c := document.NewCanvas(rec, theme.MustNamed(theme.Light), document.DefaultMargins)
	rec.Reset()
	return c, rec
}

func fillsOf(rec *document.Recorder, col color.RGBA) []document.Op {
	var out []document.Op
	for _, op := range rec.Filter(document.OpFill) {
		if op.Color == col {
			out = append(out, op)
		}
	}
	return out
}

// barsOf is fillsOf without the title accent, which shares the primary colour.
func barsOf(rec *document.Recorder, col color.RGBA) []document.Op {
	var out []document.Op
	for _, op := range fillsOf(rec, col) {
		if op.W != titleAccentW {
			out = append(out, op)
		}
	}
	return out
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{0, 0, "0"},
		{999, 0, "999"},
		{1234.5, 1, "1.234,5"},
		{1234567, 0, "1.234.567"},
		{-1234.56, 2, "-1.234,56"},
		{-0.04, 1, "0,0"},
		{math.NaN(), 1, "-"},
		{math.Inf(1), 0, "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.v, tt.decimals), "FormatNumber(%v, %d)", tt.v, tt.decimals)
	}
	assert.Equal(t, "12,3%", FormatPercent(12.34))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	c, _ := newCanvas(t)

	assert.Equal(t, "abc", truncate(c, "abc", 10, false, 100))
	assert.Equal(t, "abc…", truncate(c, "abcdefghij", 10, false, 8))
	assert.Equal(t, "abcdefghij", truncate(c, "abcdefghij", 10, false, 0), "no limit")
}

func TestBar_Empty(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)
	y := c.Y()

	Bar(c, "Vacío", nil)

	assert.Empty(t, rec.Ops)
	assert.Equal(t, y, c.Y())
}

func TestBar_NormalisedToMax(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)
	th := c.Theme()

	Bar(c, "", []Category{{"A", 10}, {"B", 5}, {"C", 0}})

	plotH := barPlotBottom - barPlotTop
	a := fillsOf(rec, th.SeriesColor(0))
	b := fillsOf(rec, th.SeriesColor(1))
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.InDelta(t, plotH, a[0].H, 1e-9)
	assert.InDelta(t, plotH/2, b[0].H, 1e-9)
	assert.Empty(t, fillsOf(rec, th.SeriesColor(2)), "zero bar draws no rectangle")
	assert.True(t, rec.HasText("0"), "zero bar still gets its value label")
}

func TestBar_SingleCategoryFillsHeight(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Bar(c, "Uno", []Category{{"Solo", 3}})

	bars := barsOf(rec, c.Theme().SeriesColor(0))
	require.Len(t, bars, 1, "title accent is not a bar")
	assert.InDelta(t, barPlotBottom-barPlotTop, bars[0].H, 1e-9)
	assert.True(t, rec.HasText("Uno"))
	assert.True(t, rec.HasText("Solo"))
}

func TestBar_ManyCategoriesStayInside(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	data := make([]Category, 100)
	for i := range data {
		data[i] = Category{Label: fmt.Sprintf("C%d", i), Value: float64(i + 1)}
	}
	Bar(c, "", data)

	th := c.Theme()
	bars := 0
	for _, op := range rec.Filter(document.OpFill) {
		if op.Color == th.Color(theme.Card) {
			continue
		}
		bars++
		assert.Positive(t, op.W, "bar %d has no width", bars)
		assert.GreaterOrEqual(t, op.X, c.Left()+BarGap-1e-9)
		assert.LessOrEqual(t, op.X+op.W, c.Right()-BarGap+1e-9)
	}
	assert.Equal(t, 100, bars)
	assert.False(t, rec.HasText("C0"), "labels are dropped when slots are too thin")
}

func TestLine_NoSamples(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Line(c, "Velocidad", "km/h", nil)

	assert.Empty(t, rec.Ops)
}

func TestLine_GridAndSegments(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Line(c, "", "km/h", []Sample{{"a", 0}, {"b", 40}, {"c", 80}})

	assert.Equal(t, GridDivisions+1+2, rec.Count(document.OpLine), "5 grid lines + 2 segments")
	for _, want := range []string{"0", "20", "40", "60", "80", "km/h"} {
		assert.True(t, rec.HasText(want), "missing grid label %q", want)
	}
}

func TestLine_AtMostSixXLabels(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	samples := make([]Sample, 20)
	for i := range samples {
		samples[i] = Sample{Label: "L" + FormatNumber(float64(i), 0), Value: float64(i)}
	}
	Line(c, "", "", samples)

	var labels []string
	for _, s := range samples {
		if rec.HasText(s.Label) {
			labels = append(labels, s.Label)
		}
	}
	assert.Equal(t, []string{"L0", "L4", "L8", "L11", "L15", "L19"}, labels)
}

func TestLine_SingleSampleDrawsDot(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Line(c, "", "", []Sample{{"12:00", 30}})

	assert.Equal(t, GridDivisions+1, rec.Count(document.OpLine))
	assert.Len(t, fillsOf(rec, c.Theme().Color(theme.Primary)), 1)
}

func TestXLabelIndices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{0}},
		{3, []int{0, 1, 2}},
		{6, []int{0, 1, 2, 3, 4, 5}},
		{11, []int{0, 2, 4, 6, 8, 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XLabelIndices(tt.n), "n=%d", tt.n)
	}
}

func TestPie_ZeroTotalDrawsNothing(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)
	c.Advance(c.Remaining() - 1) // a reserved block would force a break here

	Pie(c, "Distribución", []Category{{"Movimiento", 0}, {"Detenido", 0}})

	assert.Equal(t, 0, rec.Count(document.OpTriangle))
	assert.Empty(t, rec.Ops)
	assert.Equal(t, 1, c.Pages(), "no space reserved for an empty pie")
}

func TestPie_TriangleFan(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)
	top := c.Y()

	Pie(c, "", []Category{{"A", 1}, {"B", 1}, {"C", 0}})

	// Two half circles at PieAngularStep degrees per triangle.
	perHalf := int(math.Ceil(180 / PieAngularStep))
	assert.Equal(t, 2*perHalf, rec.Count(document.OpTriangle))

	tris := rec.Filter(document.OpTriangle)
	first := tris[0]
	cx := c.Left() + 6 + pieRadius
	assert.InDelta(t, cx, first.Pts[0].X, 1e-9)
	assert.InDelta(t, cx, first.Pts[1].X, 1e-9, "first sector starts at the top")
	assert.InDelta(t, top+PieChartHeight/2-pieRadius, first.Pts[1].Y, 1e-9)
	assert.Equal(t, c.Theme().SeriesColor(0), first.Color)
	assert.Equal(t, c.Theme().SeriesColor(1), tris[perHalf].Color)

	assert.True(t, rec.HasText("50,0%"))
	assert.True(t, rec.HasText("0,0%"))
}

func TestTable_ContinuesOnNewPage(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	rows := make([][]string, 60)
	for i := range rows {
		rows[i] = []string{"08:00", FormatNumber(float64(i), 1)}
	}
	Table(c, TableSpec{
		Title:   "Registros",
		Columns: []Column{{Title: "Hora"}, {Title: "Velocidad", Numeric: true}},
		Rows:    rows,
	})

	assert.Equal(t, 2, c.Pages())
	headers := 0
	for _, s := range rec.Texts() {
		if s == "Hora" {
			headers++
		}
	}
	assert.Equal(t, 2, headers, "header repeated on the continuation page")

	bg := fillsOf(rec, c.Theme().Color(theme.Background))
	require.Len(t, bg, 1)
	assert.Equal(t, 2, bg[0].Page)
	assert.Equal(t, document.A4Width, bg[0].W)

	for _, op := range rec.Filter(document.OpText) {
		assert.LessOrEqual(t, op.Y, c.Bottom()+1e-9, "text %q below the content area", op.Text)
	}
}

func TestTable_AlignmentAndStripes(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Table(c, TableSpec{
		Columns: []Column{{Title: "Ruta"}, {Title: "Km", Numeric: true}},
		Rows:    [][]string{{"1", "12,5"}, {"2", "3,0"}, {"3", "7,1"}, {"4", "0,4"}},
	})

	assert.Len(t, fillsOf(rec, c.Theme().Color(theme.RowAlt)), 2)

	half := c.ContentWidth() / 2
	rightEdge := c.Left() + 2*half - tableCellPad
	var found bool
	for _, op := range rec.Filter(document.OpText) {
		if op.Text == "12,5" {
			found = true
			assert.InDelta(t, rightEdge, op.X+rec.TextWidth(op.Text, op.Size, op.Bold), 1e-9)
		}
		if op.Text == "1" {
			assert.InDelta(t, c.Left()+tableCellPad, op.X, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestTable_EmptyRows(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Table(c, TableSpec{
		Title:   "Conductores",
		Columns: []Column{{Title: "Nombre"}},
		Empty:   "Sin datos",
	})

	assert.True(t, rec.HasText("Nombre"))
	assert.True(t, rec.HasText("Sin datos"))
}

func TestCards(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)
	y := c.Y()

	cards := []Card{
		{Label: "Rutas", Value: "3", Role: theme.Primary},
		{Label: "Distancia", Value: "12,5 km", Role: theme.OK},
		{Label: "Máxima", Value: "95 km/h", Role: theme.Critical, Hint: "pico"},
		{Label: "Promedio", Value: "40 km/h", Role: theme.Info},
		{Label: "Horas", Value: "2,5", Role: theme.Warn},
	}
	Cards(c, "Resumen", cards, 4)

	for _, card := range cards {
		assert.True(t, rec.HasText(card.Label))
		assert.True(t, rec.HasText(card.Value))
	}
	assert.True(t, rec.HasText("pico"))

	stripes := 0
	for _, op := range rec.Filter(document.OpFill) {
		if op.W == 1.2 {
			stripes++
		}
	}
	assert.Equal(t, 5, stripes)
	assert.InDelta(t, y+TitleHeight+2*(CardHeight+CardGap)+BlockSpacing-CardGap, c.Y(), 1e-9)
}

func TestFields_BlankValue(t *testing.T) {
	t.Parallel()
	c, rec := newCanvas(t)

	Fields(c, "Dispositivo", []Field{{"Placa", "ABC123"}, {"IMEI", ""}, {"Modelo", "GT06"}}, 2)

	assert.True(t, rec.HasText("ABC123"))
	assert.True(t, rec.HasText("-"))
	assert.Equal(t, 1, rec.Count(document.OpStroke))
}
