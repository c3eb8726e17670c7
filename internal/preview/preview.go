// Package preview renders a statistics dataset as a standalone HTML page with
// go-echarts, for checking numbers before a PDF is produced.
package preview

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

// Options tune the preview page.
type Options struct {
	// Title heads every chart subtitle, usually the device name.
	Title string
	// Theme is a theme name; the dark theme switches echarts to "dark".
	Theme string
	// Units converts speeds for display; empty means km/h.
	Units string
	// AssetsHost overrides where echarts.min.js is loaded from.
	AssetsHost string
}

// Render writes the preview page for ds to w.
func Render(w io.Writer, ds stats.Dataset, o Options) error {
	th, err := theme.Named(o.Theme)
	if err != nil {
		return err
	}
	echartsTheme := "white"
	if th.IsDark() {
		echartsTheme = "dark"
	}
	initOpts := opts.Initialization{Theme: echartsTheme, Width: "100%", Height: "420px", AssetsHost: o.AssetsHost}
	sub := fmt.Sprintf("%s · %d registros", o.Title, ds.TotalPings)

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}

	if len(ds.Timeline) > 0 {
		page.AddCharts(speedLine(ds, initOpts, sub, o.Units))
	}
	if len(ds.Buckets) > 0 {
		page.AddCharts(distributionBar(ds, initOpts, sub))
	}
	if ds.Movement.Moving+ds.Movement.Stopped > 0 {
		page.AddCharts(movementPie(ds, initOpts, sub))
	}
	page.AddCharts(analysisBar(ds, initOpts, sub))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

func speedLine(ds stats.Dataset, initOpts opts.Initialization, sub, speedUnits string) *charts.Line {
	x := make([]string, len(ds.Timeline))
	y := make([]opts.LineData, len(ds.Timeline))
	for i, t := range ds.Timeline {
		x[i] = t.Label
		y[i] = opts.LineData{Value: units.ConvertSpeed(t.Speed, speedUnits)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Velocidad en el tiempo", Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: units.SpeedLabel(speedUnits)}),
	)
	line.SetXAxis(x).AddSeries("velocidad", y)
	return line
}

func distributionBar(ds stats.Dataset, initOpts opts.Initialization, sub string) *charts.Bar {
	x := make([]string, len(ds.Buckets))
	y := make([]opts.BarData, len(ds.Buckets))
	for i, b := range ds.Buckets {
		x[i] = b.Label
		y[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Distribucion de velocidad", Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("registros", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func movementPie(ds stats.Dataset, initOpts opts.Initialization, sub string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Estado de movimiento", Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("movimiento", []opts.PieData{
		{Name: "En movimiento", Value: ds.Movement.Moving},
		{Name: "Detenido", Value: ds.Movement.Stopped},
	}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}))
	return pie
}

func analysisBar(ds stats.Dataset, initOpts opts.Initialization, sub string) *charts.Bar {
	a := ds.Analysis
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Analisis de conduccion", Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Max: 100}),
	)
	bar.SetXAxis([]string{"En movimiento", "Exceso", "Alta velocidad", "Detenido"}).
		AddSeries("porcentaje", []opts.BarData{
			{Value: round1(a.MovingPct)},
			{Value: round1(a.SpeedExcessPct)},
			{Value: round1(a.HighSpeedPct)},
			{Value: round1(a.StoppedPct)},
		}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
