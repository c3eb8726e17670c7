// Package snapshot renders the raster images embedded in reports: the
// vehicle track coloured by operating state and the speed profile.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/fleet.report/internal/report"
	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

// ErrNotEnoughPoints is returned when fewer than two usable pings are given.
var ErrNotEnoughPoints = errors.New("not enough points to plot")

// Renderer draws PNG snapshots with gonum/plot. It implements
// report.SnapshotSource.
type Renderer struct {
	Theme    theme.Theme
	Location *time.Location
	Units    string

	MapWidth, MapHeight     vg.Length
	ChartWidth, ChartHeight vg.Length
}

var _ report.SnapshotSource = (*Renderer)(nil)

// NewRenderer returns a renderer with the default image sizes.
func NewRenderer(th theme.Theme, loc *time.Location, speedUnits string) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		Theme:       th,
		Location:    loc,
		Units:       speedUnits,
		MapWidth:    18 * vg.Centimeter,
		MapHeight:   12 * vg.Centimeter,
		ChartWidth:  18 * vg.Centimeter,
		ChartHeight: 8 * vg.Centimeter,
	}
}

// Capture renders the requested snapshot as PNG.
func (r *Renderer) Capture(ctx context.Context, kind report.SnapshotKind, pings []telemetry.Ping) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		p    *plot.Plot
		w, h vg.Length
		err  error
	)
	switch kind {
	case report.SnapshotMap:
		p, err = r.track(pings)
		w, h = r.MapWidth, r.MapHeight
	case report.SnapshotChart:
		p, err = r.speedProfile(pings)
		w, h = r.ChartWidth, r.ChartHeight
	default:
		return nil, fmt.Errorf("unknown snapshot kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", kind, err)
	}

	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", kind, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%s snapshot: encode png: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// track plots positioned pings as lon/lat polylines, one per run of equal
// status so the colour changes where the vehicle changed state.
func (r *Renderer) track(pings []telemetry.Ping) (*plot.Plot, error) {
	statuses := telemetry.ClassifyAll(pings)

	type run struct {
		status telemetry.Status
		pts    plotter.XYs
	}
	var runs []run
	var all plotter.XYs
	for i, ping := range pings {
		if !ping.HasPosition() {
			continue
		}
		pt := plotter.XY{X: *ping.Lon, Y: *ping.Lat}
		all = append(all, pt)
		if n := len(runs); n > 0 && runs[n-1].status == statuses[i] {
			runs[n-1].pts = append(runs[n-1].pts, pt)
			continue
		}
		// Start each run at the previous point so the polyline stays connected.
		next := run{status: statuses[i]}
		if n := len(runs); n > 0 {
			prev := runs[n-1].pts
			next.pts = append(next.pts, prev[len(prev)-1])
		}
		next.pts = append(next.pts, pt)
		runs = append(runs, next)
	}
	if len(all) < 2 {
		return nil, ErrNotEnoughPoints
	}

	p := r.newPlot("Recorrido", "Longitud", "Latitud")
	legend := make(map[telemetry.Status]bool)
	for _, rn := range runs {
		if len(rn.pts) < 2 {
			continue
		}
		l, err := plotter.NewLine(rn.pts)
		if err != nil {
			return nil, err
		}
		l.Color = r.statusColor(rn.status)
		l.Width = vg.Points(2)
		p.Add(l)
		if !legend[rn.status] {
			legend[rn.status] = true
			p.Legend.Add(rn.status.Label(), l)
		}
	}

	ends, err := plotter.NewScatter(plotter.XYs{all[0], all[len(all)-1]})
	if err != nil {
		return nil, err
	}
	ends.GlyphStyle.Shape = draw.CircleGlyph{}
	ends.GlyphStyle.Radius = vg.Points(4)
	ends.GlyphStyle.Color = r.Theme.Color(theme.Text)
	p.Add(ends)

	return p, nil
}

// speedProfile plots speed against fix time with the excess and high-speed
// thresholds as dashed guides.
func (r *Renderer) speedProfile(pings []telemetry.Ping) (*plot.Plot, error) {
	if len(pings) < 2 {
		return nil, ErrNotEnoughPoints
	}
	pts := make(plotter.XYs, 0, len(pings))
	for _, ping := range pings {
		t := ping.Time()
		if t.IsZero() {
			continue
		}
		pts = append(pts, plotter.XY{
			X: float64(t.Unix()),
			Y: units.ConvertSpeed(ping.SpeedOrZero(), r.Units),
		})
	}
	if len(pts) < 2 {
		return nil, ErrNotEnoughPoints
	}

	p := r.newPlot("Perfil de velocidad", "Hora", units.SpeedLabel(r.Units))
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04", Time: plot.UnixTimeIn(r.Location)}
	p.Y.Min = 0

	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = r.Theme.Color(theme.Primary)
	l.Width = vg.Points(1.5)
	p.Add(l)

	for _, g := range []struct {
		kmh  float64
		role theme.Role
	}{
		{stats.SpeedExcessThreshold, theme.Warn},
		{stats.HighSpeedThreshold, theme.Critical},
	} {
		limit := units.ConvertSpeed(g.kmh, r.Units)
		fn := plotter.NewFunction(func(float64) float64 { return limit })
		fn.Color = r.Theme.Color(g.role)
		fn.Width = vg.Points(1)
		fn.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(fn)
		p.Legend.Add(fmt.Sprintf("> %.0f %s", limit, units.SpeedLabel(r.Units)), fn)
	}
	return p, nil
}

func (r *Renderer) newPlot(title, x, y string) *plot.Plot {
	th := r.Theme
	text, muted, grid := th.Color(theme.Text), th.Color(theme.Muted), th.Color(theme.Grid)

	p := plot.New()
	p.BackgroundColor = th.Color(theme.Card)
	p.Title.Text = title
	p.Title.TextStyle.Color = text
	p.X.Label.Text = x
	p.Y.Label.Text = y
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = muted
		a.Label.TextStyle.Color = text
		a.Tick.Label.Color = muted
		a.Tick.Color = muted
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Legend.TextStyle.Color = text

	g := plotter.NewGrid()
	g.Vertical.Color = grid
	g.Horizontal.Color = grid
	p.Add(g)
	return p
}

func (r *Renderer) statusColor(s telemetry.Status) color.Color {
	switch s {
	case telemetry.StatusMoving:
		return r.Theme.Color(theme.OK)
	case telemetry.StatusStopped:
		return r.Theme.Color(theme.Warn)
	case telemetry.StatusEngineOff:
		return r.Theme.Color(theme.Critical)
	default:
		return r.Theme.Color(theme.Info)
	}
}
