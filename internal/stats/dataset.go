// Package stats builds report-ready datasets from a ping stream and the route
// summaries supplied by the route service.
package stats

import (
	"time"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

// Thresholds and limits used by Synthesize.
const (
	SpeedExcessThreshold = 60.0 // km/h
	HighSpeedThreshold   = 80.0 // km/h
	MaxTimelineSamples   = 100
	MaxRankedPeers       = 4

	NoDataLabel    = "Sin datos"
	AvailableLabel = "Disponible"
	AssignedLabel  = "Asignado"
)

// Dataset is the aggregate root consumed by the statistics report.
type Dataset struct {
	// Summary is nil when no route summaries were supplied.
	Summary  *Summary                 `json:"summary,omitempty"`
	Routes   []telemetry.RouteSummary `json:"routes,omitempty"`
	Timeline []TimelinePoint          `json:"timeline"`
	Buckets  []Bucket                 `json:"buckets"`
	Movement Movement                 `json:"movement"`
	Analysis Analysis                 `json:"analysis"`
	Period   Period                   `json:"period"`
	// Ranking is nil unless an assigned driver was supplied.
	Ranking []RankedDriver `json:"ranking,omitempty"`

	TotalPings   int     `json:"total_pings"`
	MaxPingSpeed float64 `json:"max_ping_speed"`
	OdometerKm   float64 `json:"odometer_km"`
}

// Summary totals the supplied route summaries.
type Summary struct {
	Routes      int     `json:"routes"`
	DistanceKm  float64 `json:"distance_km"`
	MaxSpeed    float64 `json:"max_speed"`
	AvgSpeed    float64 `json:"avg_speed"`
	MovingHours float64 `json:"moving_hours"`
	IdleHours   float64 `json:"idle_hours"`
	TotalHours  float64 `json:"total_hours"`
	Points      int     `json:"points"`
}

// Bucket is one fixed speed range of the distribution histogram. Max < 0 marks
// the open-ended top bucket.
type Bucket struct {
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Movement is the two-way moving/stopped split.
type Movement struct {
	Moving     int     `json:"moving"`
	Stopped    int     `json:"stopped"`
	MovingPct  float64 `json:"moving_pct"`
	StoppedPct float64 `json:"stopped_pct"`
}

// Analysis holds four percentages sharing one denominator.
type Analysis struct {
	MovingPct      float64 `json:"moving_pct"`
	SpeedExcessPct float64 `json:"speed_excess_pct"`
	HighSpeedPct   float64 `json:"high_speed_pct"`
	StoppedPct     float64 `json:"stopped_pct"`
}

// Denominator is the base every percentage in the dataset is computed against:
// the total ping count, floored at 1.
func (d Dataset) Denominator() int {
	return denominator(d.TotalPings)
}

// TimelinePoint is one down-sampled speed sample.
type TimelinePoint struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
	Speed float64   `json:"speed"`
}

// Period is the time span covered by the pings.
type Period struct {
	HasData    bool      `json:"has_data"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	StartLabel string    `json:"start_label"`
	EndLabel   string    `json:"end_label"`
}

// Duration returns End-Start, or zero when there is no data.
func (p Period) Duration() time.Duration {
	if !p.HasData {
		return 0
	}
	return p.End.Sub(p.Start)
}

// RankedDriver is one row of the driver ranking.
type RankedDriver struct {
	Driver   telemetry.Driver `json:"driver"`
	Assigned bool             `json:"assigned"`
	Label    string           `json:"label"`
}

// Options carries optional inputs for Synthesize.
type Options struct {
	// Location formats time labels. Nil means UTC.
	Location *time.Location
	// AssignedDriver enables the ranking section.
	AssignedDriver *telemetry.Driver
	// Drivers are the candidate drivers for the ranking.
	Drivers []telemetry.Driver
}
