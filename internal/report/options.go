package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

// ErrInvalidOptions is returned when report options cannot be rendered.
var ErrInvalidOptions = errors.New("invalid report options")

// SnapshotKind names an externally rendered bitmap.
type SnapshotKind string

const (
	SnapshotMap   SnapshotKind = "map"
	SnapshotChart SnapshotKind = "chart"
)

// SnapshotSource captures ready-made raster snapshots (PNG or JPEG) of the
// map track and the speed chart for a ping window.
type SnapshotSource interface {
	Capture(ctx context.Context, kind SnapshotKind, pings []telemetry.Ping) ([]byte, error)
}

// Options are the inputs shared by every report variant. Directory data
// (device, drivers) arrives pre-resolved.
type Options struct {
	Device    telemetry.Device
	DateRange string

	// Pings must be in chronological order.
	Pings  []telemetry.Ping
	Routes []telemetry.RouteSummary
	// RouteStats overrides the totals computed from Routes.
	RouteStats *stats.Summary
	// Segments are derived from Pings when nil. A non-nil empty slice
	// suppresses the status timeline.
	Segments []telemetry.Segment

	Drivers        []telemetry.Driver
	AssignedDriver *telemetry.Driver

	// MapImage and ChartImage are pre-captured snapshots. When empty, the
	// Composer's SnapshotSource is asked for them.
	MapImage   []byte
	ChartImage []byte

	// Theme is a theme name; empty selects the light theme.
	Theme string
	// Units is a units.ValidUnits value; empty means km/h.
	Units string
	// Location formats every time in the document. Nil means UTC.
	Location *time.Location
	// Attribution is printed in every page footer.
	Attribution string
}

// Validate checks the options that would make a render fail. The returned
// error wraps ErrInvalidOptions.
func (o Options) Validate() error {
	_, err := o.resolve()
	return err
}

func (o Options) resolve() (theme.Theme, error) {
	th, err := theme.Named(o.Theme)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.Units != "" && !units.IsValid(o.Units) {
		return theme.Theme{}, fmt.Errorf("%w: unknown units %q (valid: %s)", ErrInvalidOptions, o.Units, units.GetValidUnitsString())
	}
	if strings.TrimSpace(o.Device.ID+o.Device.Name+o.Device.Plate) == "" {
		return theme.Theme{}, fmt.Errorf("%w: device has no id, name or plate", ErrInvalidOptions)
	}
	for _, r := range o.Routes {
		if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
			return theme.Theme{}, fmt.Errorf("%w: route %d ends before it starts", ErrInvalidOptions, r.Ordinal)
		}
	}
	return th, nil
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) segments() []telemetry.Segment {
	if o.Segments != nil {
		return o.Segments
	}
	return telemetry.BuildSegments(o.Pings)
}

func (o Options) routeStats() *stats.Summary {
	if o.RouteStats != nil {
		return o.RouteStats
	}
	return stats.Summarize(o.Routes)
}
