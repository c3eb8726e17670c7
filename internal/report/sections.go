package report

import (
	"strings"

	"github.com/banshee-data/fleet.report/internal/chart"
	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

// Statistics report section IDs, in document order.
const (
	SectionSummary      = "resumen"
	SectionRoutes       = "rutas"
	SectionSpeed        = "velocidad"
	SectionDistribution = "distribucion"
	SectionMovement     = "movimiento"
	SectionAnalysis     = "analisis"
	SectionPeriod       = "periodo"
	SectionDrivers      = "conductores"
)

type statsSection struct {
	id   string
	draw func(p *page, ds stats.Dataset)
}

var statsSections = []statsSection{
	{SectionSummary, (*page).summarySection},
	{SectionRoutes, (*page).routesSection},
	{SectionSpeed, (*page).speedSection},
	{SectionDistribution, (*page).distributionSection},
	{SectionMovement, (*page).movementSection},
	{SectionAnalysis, (*page).analysisSection},
	{SectionPeriod, (*page).periodSection},
	{SectionDrivers, (*page).driversSection},
}

// SectionIDs returns every statistics section ID in document order.
func SectionIDs() []string {
	ids := make([]string, len(statsSections))
	for i, s := range statsSections {
		ids[i] = s.id
	}
	return ids
}

// SelectSections turns a caller selection into a set. IDs are matched
// case-insensitively and unknown ones dropped. An empty selection selects
// every section; a selection of only unknown IDs selects none.
func SelectSections(ids []string) map[string]bool {
	out := make(map[string]bool, len(statsSections))
	if len(ids) == 0 {
		for _, s := range statsSections {
			out[s.id] = true
		}
		return out
	}
	known := make(map[string]bool, len(statsSections))
	for _, s := range statsSections {
		known[s.id] = true
	}
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if known[id] {
			out[id] = true
		}
	}
	return out
}

func (p *page) summarySection(ds stats.Dataset) {
	sum := ds.Summary
	if sum == nil {
		return
	}
	chart.Cards(p.c, "Resumen general", []chart.Card{
		{Label: "Rutas", Value: chart.FormatNumber(float64(sum.Routes), 0), Role: theme.Primary},
		{Label: "Distancia total", Value: p.distance(sum.DistanceKm), Role: theme.Info},
		{Label: "Velocidad máxima", Value: p.speed(sum.MaxSpeed), Role: theme.Critical},
		{Label: "Velocidad promedio", Value: p.speed(sum.AvgSpeed), Hint: "promedio por ruta", Role: theme.OK},
		{Label: "Horas en movimiento", Value: hours(sum.MovingHours), Role: theme.OK},
		{Label: "Horas detenido", Value: hours(sum.IdleHours), Role: theme.Warn},
		{Label: "Horas totales", Value: hours(sum.TotalHours), Role: theme.Secondary},
		{Label: "Puntos", Value: chart.FormatNumber(float64(sum.Points), 0), Role: theme.Secondary},
	}, 4)
}

func (p *page) routesSection(ds stats.Dataset) {
	if len(ds.Routes) == 0 {
		return
	}
	rows := make([][]string, 0, len(ds.Routes))
	for _, r := range ds.Routes {
		rows = append(rows, []string{
			chart.FormatNumber(float64(r.Ordinal), 0),
			r.Start.In(p.loc).Format(stampLayout),
			r.End.In(p.loc).Format(stampLayout),
			p.distance(r.DistanceKm),
			p.speed(r.AvgSpeed),
			p.speed(r.MaxSpeed),
			hours(r.TotalHours),
			chart.FormatNumber(float64(r.Points), 0),
		})
	}
	chart.Table(p.c, chart.TableSpec{
		Title: "Detalle de rutas",
		Columns: []chart.Column{
			{Title: "#", Width: 0.4, Numeric: true},
			{Title: "Inicio", Width: 1.3},
			{Title: "Fin", Width: 1.3},
			{Title: "Distancia", Width: 1, Numeric: true},
			{Title: "Vel. prom.", Width: 0.9, Numeric: true},
			{Title: "Vel. máx.", Width: 0.9, Numeric: true},
			{Title: "Horas", Width: 0.7, Numeric: true},
			{Title: "Puntos", Width: 0.7, Numeric: true},
		},
		Rows: rows,
	})
}

func (p *page) speedSection(ds stats.Dataset) {
	samples := make([]chart.Sample, len(ds.Timeline))
	for i, t := range ds.Timeline {
		samples[i] = chart.Sample{Label: t.Label, Value: units.ConvertSpeed(t.Speed, p.opts.Units)}
	}
	chart.Line(p.c, "Velocidad en el tiempo", units.SpeedLabel(p.opts.Units), samples)
}

func (p *page) distributionSection(ds stats.Dataset) {
	if len(ds.Buckets) == 0 {
		return
	}
	data := make([]chart.Category, len(ds.Buckets))
	for i, b := range ds.Buckets {
		data[i] = chart.Category{Label: b.Label, Value: float64(b.Count)}
	}
	chart.Bar(p.c, "Distribución de velocidad", data)
}

func (p *page) movementSection(ds stats.Dataset) {
	chart.Pie(p.c, "Estado de movimiento", []chart.Category{
		{Label: "En movimiento", Value: float64(ds.Movement.Moving)},
		{Label: "Detenido", Value: float64(ds.Movement.Stopped)},
	})
}

func (p *page) analysisSection(ds stats.Dataset) {
	a := ds.Analysis
	base := "de " + chart.FormatNumber(float64(ds.Denominator()), 0) + " registros"
	chart.Cards(p.c, "Análisis de conducción", []chart.Card{
		{Label: "En movimiento", Value: chart.FormatPercent(a.MovingPct), Hint: base, Role: theme.OK},
		{Label: "Exceso de velocidad", Value: chart.FormatPercent(a.SpeedExcessPct), Hint: "> " + p.speed(stats.SpeedExcessThreshold), Role: theme.Warn},
		{Label: "Alta velocidad", Value: chart.FormatPercent(a.HighSpeedPct), Hint: "> " + p.speed(stats.HighSpeedThreshold), Role: theme.Critical},
		{Label: "Detenido", Value: chart.FormatPercent(a.StoppedPct), Hint: base, Role: theme.Secondary},
	}, 4)
}

func (p *page) periodSection(ds stats.Dataset) {
	per := ds.Period
	duration := stats.NoDataLabel
	if per.HasData {
		duration = formatDuration(per.Duration())
	}
	chart.Cards(p.c, "Periodo analizado", []chart.Card{
		{Label: "Inicio", Value: per.StartLabel, Role: theme.Primary},
		{Label: "Fin", Value: per.EndLabel, Role: theme.Primary},
		{Label: "Duración", Value: duration, Role: theme.Info},
		{Label: "Registros", Value: chart.FormatNumber(float64(ds.TotalPings), 0), Role: theme.Secondary},
		{Label: "Velocidad máxima registrada", Value: p.speed(ds.MaxPingSpeed), Role: theme.Critical},
		{Label: "Distancia por odómetro", Value: p.distance(ds.OdometerKm), Role: theme.Info},
	}, 3)
}

func (p *page) driversSection(ds stats.Dataset) {
	if len(ds.Ranking) == 0 {
		return
	}
	rows := make([][]string, 0, len(ds.Ranking))
	for i, r := range ds.Ranking {
		rows = append(rows, []string{
			chart.FormatNumber(float64(i+1), 0),
			r.Driver.Name,
			r.Driver.Phone,
			r.Label,
		})
	}
	chart.Table(p.c, chart.TableSpec{
		Title: "Conductores",
		Columns: []chart.Column{
			{Title: "#", Width: 0.4, Numeric: true},
			{Title: "Conductor", Width: 2},
			{Title: "Teléfono", Width: 1.2},
			{Title: "Estado", Width: 1},
		},
		Rows: rows,
	})
}
