// Package report composes the fleet PDF documents: the full report, the
// route history and the statistics report.
//
// A render is synchronous and owns its canvas, theme and surface. Snapshot
// bitmaps are the only external input fetched during a call, and they are
// acquired before composition starts. A call returns either the complete
// document or an error.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/banshee-data/fleet.report/internal/document"
	"github.com/banshee-data/fleet.report/internal/monitoring"
	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/timeutil"
	"github.com/banshee-data/fleet.report/internal/version"
)

// Variant names a document layout.
type Variant string

const (
	Full    Variant = "full"
	History Variant = "history"
	Stats   Variant = "stats"
)

// Variants lists the supported layouts.
var Variants = []Variant{Full, History, Stats}

func (v Variant) title() string {
	switch v {
	case History:
		return "Historial de recorrido"
	case Stats:
		return "Reporte estadístico"
	default:
		return "Reporte completo"
	}
}

// Composer renders report variants. The zero value is usable: it stamps
// documents with the wall clock and fetches no snapshots.
type Composer struct {
	Clock     timeutil.Clock
	Snapshots SnapshotSource

	// newSurface is swapped for a recorder in tests.
	newSurface func(document.PDFInfo) document.Surface
}

// GenerateFullReport renders header, device card, parameters, route cards,
// map snapshot, status timeline and chart snapshot.
func (c *Composer) GenerateFullReport(ctx context.Context, opts Options) (out []byte, err error) {
	defer monitoring.Time(ctx, "report.full")(&err)
	return c.render(ctx, Full, opts, func(p *page) {
		p.routeCards()
		p.snapshotBlock(SnapshotMap, "Mapa del recorrido")
		p.statusTimeline()
		p.snapshotBlock(SnapshotChart, "Gráfico de velocidad")
	})
}

// GenerateHistoryReport renders header, device card, parameters, route cards,
// map snapshot, status timeline and the per-status summary.
func (c *Composer) GenerateHistoryReport(ctx context.Context, opts Options) (out []byte, err error) {
	defer monitoring.Time(ctx, "report.history")(&err)
	return c.render(ctx, History, opts, func(p *page) {
		p.routeCards()
		p.snapshotBlock(SnapshotMap, "Mapa del recorrido")
		p.statusTimeline()
		p.statusSummary()
	})
}

// GenerateStatsReport renders header, device card, parameters and the selected
// statistics sections. A nil override synthesizes the dataset from opts. A
// nil or empty selection renders every section; unknown IDs are ignored.
func (c *Composer) GenerateStatsReport(ctx context.Context, opts Options, override *stats.Dataset, sections []string) (out []byte, err error) {
	defer monitoring.Time(ctx, "report.stats")(&err)

	var ds stats.Dataset
	if override != nil {
		ds = *override
	} else {
		ds = stats.Synthesize(opts.Pings, opts.Routes, stats.Options{
			Location:       opts.location(),
			AssignedDriver: opts.AssignedDriver,
			Drivers:        opts.Drivers,
		})
	}
	selected := SelectSections(sections)

	return c.render(ctx, Stats, opts, func(p *page) {
		for _, s := range statsSections {
			if selected[s.id] {
				s.draw(p, ds)
			}
		}
	})
}

// Generate dispatches to the variant's Generate method. sections only applies
// to Stats.
func (c *Composer) Generate(ctx context.Context, v Variant, opts Options, sections []string) ([]byte, error) {
	switch v {
	case Full:
		return c.GenerateFullReport(ctx, opts)
	case History:
		return c.GenerateHistoryReport(ctx, opts)
	case Stats:
		return c.GenerateStatsReport(ctx, opts, nil, sections)
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidOptions, v)
	}
}

func (c *Composer) now() time.Time {
	return timeutil.OrReal(c.Clock).Now()
}

func (c *Composer) render(ctx context.Context, v Variant, opts Options, body func(*page)) ([]byte, error) {
	th, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	var images map[SnapshotKind]snapshot
	switch v {
	case Full:
		images = c.acquire(ctx, opts, SnapshotMap, SnapshotChart)
	case History:
		images = c.acquire(ctx, opts, SnapshotMap)
	}

	now := c.now()
	info := document.PDFInfo{
		Title:    v.title() + " - " + deviceName(opts.Device),
		Author:   opts.Attribution,
		Producer: "fleet.report " + version.Short(),
		Created:  now,
	}
	newSurface := c.newSurface
	if newSurface == nil {
		newSurface = func(info document.PDFInfo) document.Surface { return document.NewPDFSurface(info) }
	}

	canvas := document.NewCanvas(newSurface(info), th, document.DefaultMargins)
	p := &page{
		c:      canvas,
		opts:   opts,
		loc:    opts.location(),
		now:    now,
		images: images,
	}
	p.header(v.title())
	p.deviceCard()
	p.parameters()
	body(p)

	out, err := canvas.Finish(p.footer)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", v, err)
	}
	return out, nil
}

type snapshot struct {
	data          []byte
	width, height int
}

// acquire collects the requested snapshots. Supplied bytes win over the
// SnapshotSource. Any failure is logged and the snapshot left out so the rest
// of the document still renders.
func (c *Composer) acquire(ctx context.Context, opts Options, kinds ...SnapshotKind) map[SnapshotKind]snapshot {
	out := make(map[SnapshotKind]snapshot, len(kinds))
	for _, k := range kinds {
		var data []byte
		switch k {
		case SnapshotMap:
			data = opts.MapImage
		case SnapshotChart:
			data = opts.ChartImage
		}

		if len(data) == 0 && c.Snapshots != nil {
			if err := ctx.Err(); err != nil {
				monitoring.Logf("report: %s snapshot skipped: %v", k, err)
				continue
			}
			captured, err := c.Snapshots.Capture(ctx, k, opts.Pings)
			if err != nil {
				monitoring.Logf("report: %s snapshot unavailable: %v", k, err)
				continue
			}
			data = captured
		}
		if len(data) == 0 {
			continue
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			monitoring.Logf("report: %s snapshot is not a valid image: %v", k, err)
			continue
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			monitoring.Logf("report: %s snapshot has no pixels", k)
			continue
		}
		out[k] = snapshot{data: data, width: cfg.Width, height: cfg.Height}
	}
	return out
}
