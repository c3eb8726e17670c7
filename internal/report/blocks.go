package report

import (
	"fmt"
	"time"

	"github.com/banshee-data/fleet.report/internal/chart"
	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/monitoring"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
	"github.com/banshee-data/fleet.report/internal/version"
)

const (
	headerHeight   = 22.0
	maxImageHeight = 110.0
	footerRule     = 4.0
	footerBaseline = 9.0

	timeLayout  = "02/01/2006 15:04:05"
	stampLayout = "02/01/2006 15:04"
)

// page is the state of one render.
type page struct {
	c      *document.Canvas
	opts   Options
	loc    *time.Location
	now    time.Time
	images map[SnapshotKind]snapshot
}

func (p *page) header(title string) {
	c := p.c
	th := c.Theme()
	c.EnsureSpace(headerHeight)
	c.WriteRect(c.Left(), 0, c.ContentWidth(), headerHeight, th.Color(theme.Primary))
	c.WriteText(c.Left()+5, 10, title, document.TextStyle{Size: 16, Bold: true, Color: th.Color(theme.OnPrimary)})

	sub := deviceName(p.opts.Device)
	if p.opts.DateRange != "" {
		sub += " · " + p.opts.DateRange
	}
	c.WriteText(c.Left()+5, 17, sub, document.TextStyle{Size: 9, Color: th.Color(theme.OnPrimary)})
	c.WriteText(c.Right()-5, 10, "Generado: "+p.now.In(p.loc).Format(stampLayout), document.TextStyle{
		Size: 7.5, Color: th.Color(theme.OnPrimary), Align: document.AlignRight,
	})
	c.Advance(headerHeight + chart.BlockSpacing)
}

func (p *page) deviceCard() {
	d := p.opts.Device
	driver := ""
	if p.opts.AssignedDriver != nil {
		driver = p.opts.AssignedDriver.Name
	}
	chart.Fields(p.c, "Dispositivo", []chart.Field{
		{Label: "Nombre", Value: deviceName(d)},
		{Label: "Placa", Value: d.Plate},
		{Label: "IMEI", Value: d.IMEI},
		{Label: "Modelo", Value: d.Model},
		{Label: "Cliente", Value: d.ClientName},
		{Label: "Activo", Value: d.AssetName},
		{Label: "SIM", Value: d.SIM},
		{Label: "Conductor asignado", Value: driver},
	}, 4)
}

func (p *page) parameters() {
	rng := p.opts.DateRange
	if rng == "" {
		rng = chart.FormatNumber(float64(len(p.opts.Pings)), 0) + " registros"
	}
	chart.Fields(p.c, "Parámetros", []chart.Field{
		{Label: "Rango", Value: rng},
		{Label: "Zona horaria", Value: units.GetTimezoneLabel(p.loc.String(), p.now)},
		{Label: "Unidad de velocidad", Value: units.SpeedLabel(p.opts.Units)},
		{Label: "Registros", Value: chart.FormatNumber(float64(len(p.opts.Pings)), 0)},
	}, 4)
}

func (p *page) routeCards() {
	sum := p.opts.routeStats()
	if sum == nil {
		return
	}
	chart.Cards(p.c, "Estadísticas de rutas", []chart.Card{
		{Label: "Rutas", Value: chart.FormatNumber(float64(sum.Routes), 0), Role: theme.Primary},
		{Label: "Distancia", Value: p.distance(sum.DistanceKm), Role: theme.Info},
		{Label: "Velocidad máxima", Value: p.speed(sum.MaxSpeed), Role: theme.Critical},
		{Label: "Velocidad promedio", Value: p.speed(sum.AvgSpeed), Role: theme.OK},
		{Label: "Horas en movimiento", Value: hours(sum.MovingHours), Role: theme.OK},
		{Label: "Horas detenido", Value: hours(sum.IdleHours), Role: theme.Warn},
		{Label: "Horas totales", Value: hours(sum.TotalHours), Role: theme.Secondary},
		{Label: "Puntos", Value: chart.FormatNumber(float64(sum.Points), 0), Role: theme.Secondary},
	}, 4)
}

func (p *page) snapshotBlock(kind SnapshotKind, title string) {
	img, ok := p.images[kind]
	if !ok {
		return
	}
	c := p.c
	w := c.ContentWidth()
	h := w * float64(img.height) / float64(img.width)
	if h > maxImageHeight {
		h = maxImageHeight
		w = h * float64(img.width) / float64(img.height)
	}

	c.EnsureSpace(chart.TitleHeight + h)
	chart.Title(c, title)
	x := c.Left() + (c.ContentWidth()-w)/2
	if err := c.WriteImage(string(kind), img.data, x, 0, w, h); err != nil {
		monitoring.Logf("report: %s snapshot skipped: %v", kind, err)
	}
	c.Advance(h + chart.BlockSpacing)
}

func (p *page) statusTimeline() {
	segs := p.opts.segments()
	if len(segs) == 0 {
		return
	}
	rows := make([][]string, 0, len(segs))
	for _, s := range segs {
		rows = append(rows, []string{
			s.Status.Label(),
			s.Start.In(p.loc).Format(timeLayout),
			s.End.In(p.loc).Format(timeLayout),
			formatDuration(s.Duration),
			chart.FormatNumber(float64(s.Points), 0),
		})
	}
	chart.Table(p.c, chart.TableSpec{
		Title: "Línea de tiempo de estados",
		Columns: []chart.Column{
			{Title: "Estado", Width: 1.3},
			{Title: "Inicio", Width: 1.5},
			{Title: "Fin", Width: 1.5},
			{Title: "Duración", Width: 1, Numeric: true},
			{Title: "Puntos", Width: 0.8, Numeric: true},
		},
		Rows: rows,
	})
}

// statusSummary groups the timeline by status. Its total row always matches
// the ungrouped timeline.
func (p *page) statusSummary() {
	segs := p.opts.segments()
	if len(segs) == 0 {
		return
	}
	totals := telemetry.SummarizeByStatus(segs)
	all := telemetry.TotalDuration(segs)

	rows := make([][]string, 0, len(totals)+1)
	for _, t := range totals {
		share := 0.0
		if all > 0 {
			share = float64(t.Duration) / float64(all) * 100
		}
		rows = append(rows, []string{
			t.Status.Label(),
			chart.FormatNumber(float64(t.Segments), 0),
			formatDuration(t.Duration),
			chart.FormatNumber(float64(t.Points), 0),
			chart.FormatPercent(share),
		})
	}
	share := 0.0
	if all > 0 {
		share = 100
	}
	rows = append(rows, []string{
		"Total",
		chart.FormatNumber(float64(len(segs)), 0),
		formatDuration(all),
		chart.FormatNumber(float64(telemetry.TotalPoints(segs)), 0),
		chart.FormatPercent(share),
	})

	chart.Table(p.c, chart.TableSpec{
		Title: "Resumen por estado",
		Columns: []chart.Column{
			{Title: "Estado", Width: 1.4},
			{Title: "Segmentos", Width: 1, Numeric: true},
			{Title: "Duración", Width: 1, Numeric: true},
			{Title: "Puntos", Width: 1, Numeric: true},
			{Title: "% del tiempo", Width: 1, Numeric: true},
		},
		Rows: rows,
	})
}

func (p *page) footer(c *document.Canvas, n, total int) {
	th := c.Theme()
	c.WriteLine(c.Left(), footerRule, c.Right(), footerRule, th.Color(theme.Border), 0.2)

	attribution := "fleet.report " + version.Short()
	if p.opts.Attribution != "" {
		attribution = p.opts.Attribution + " · " + attribution
	}
	muted := document.TextStyle{Size: 7, Color: th.Color(theme.Muted)}
	c.WriteText(c.Left(), footerBaseline, attribution, muted)
	muted.Align = document.AlignRight
	c.WriteText(c.Right(), footerBaseline, fmt.Sprintf("Página %d de %d", n, total), muted)
}

func (p *page) speed(kmh float64) string {
	return chart.FormatNumber(units.ConvertSpeed(kmh, p.opts.Units), 0) + " " + units.SpeedLabel(p.opts.Units)
}

func (p *page) distance(km float64) string {
	return chart.FormatNumber(units.ConvertDistance(km, p.opts.Units), 1) + " " + units.DistanceLabel(p.opts.Units)
}

func hours(h float64) string {
	return chart.FormatNumber(h, 1) + " h"
}

// formatDuration renders d as "2h 05m", "4m 30s" or "12s".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func deviceName(d telemetry.Device) string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Plate != "":
		return d.Plate
	default:
		return d.ID
	}
}
