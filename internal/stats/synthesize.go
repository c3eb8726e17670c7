package stats

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

const periodLayout = "02/01/2006 15:04"

// Synthesize builds a Dataset. Pings must already be in chronological order;
// no sorting happens here. Missing routes or driver leave their sections empty.
func Synthesize(pings []telemetry.Ping, routes []telemetry.RouteSummary, opts Options) Dataset {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	ds := Dataset{
		Summary:    Summarize(routes),
		TotalPings: len(pings),
	}
	if len(routes) > 0 {
		ds.Routes = append([]telemetry.RouteSummary(nil), routes...)
	}

	ds.Buckets = speedBuckets(pings)
	stopped := ds.Buckets[0].Count
	ds.Movement = movementSplit(len(pings), stopped)
	ds.Analysis = analyse(pings, stopped)
	ds.Timeline = timeline(pings, loc)
	ds.Period = period(pings, loc)
	ds.Ranking = rank(opts.AssignedDriver, opts.Drivers)

	for _, p := range pings {
		if s := p.SpeedOrZero(); s > ds.MaxPingSpeed {
			ds.MaxPingSpeed = s
		}
	}
	if len(pings) > 1 {
		if d := pings[len(pings)-1].Odometer - pings[0].Odometer; d > 0 {
			ds.OdometerKm = d
		}
	}

	return ds
}

// Summarize totals route summaries. The average speed is the plain mean of the
// per-route averages, not weighted by distance or points. Returns nil for no routes.
func Summarize(routes []telemetry.RouteSummary) *Summary {
	if len(routes) == 0 {
		return nil
	}

	n := len(routes)
	dist := make([]float64, n)
	avg := make([]float64, n)
	maxes := make([]float64, n)
	s := &Summary{Routes: n}
	for i, r := range routes {
		dist[i] = r.DistanceKm
		avg[i] = r.AvgSpeed
		maxes[i] = r.MaxSpeed
		s.MovingHours += r.MovingHours
		s.IdleHours += r.IdleHours
		s.TotalHours += r.TotalHours
		s.Points += r.Points
	}
	s.DistanceKm = floats.Sum(dist)
	s.MaxSpeed = floats.Max(maxes)
	s.AvgSpeed = stat.Mean(avg, nil)
	return s
}

// denominator is the shared percentage base: total pings, floored at 1.
func denominator(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func pct(count, n int) float64 {
	return float64(count) * 100 / float64(denominator(n))
}

func speedBuckets(pings []telemetry.Ping) []Bucket {
	buckets := []Bucket{
		{Label: "Detenido", Min: 0, Max: 0},
		{Label: "1-30 km/h", Min: 0, Max: 30},
		{Label: "31-60 km/h", Min: 30, Max: 60},
		{Label: "61-80 km/h", Min: 60, Max: 80},
		{Label: ">80 km/h", Min: 80, Max: -1},
	}
	for _, p := range pings {
		buckets[bucketIndex(p.SpeedOrZero())].Count++
	}
	for i := range buckets {
		buckets[i].Percent = pct(buckets[i].Count, len(pings))
	}
	return buckets
}

func bucketIndex(speed float64) int {
	switch {
	case speed <= 0:
		return 0
	case speed <= 30:
		return 1
	case speed <= 60:
		return 2
	case speed <= 80:
		return 3
	default:
		return 4
	}
}

func movementSplit(total, stopped int) Movement {
	moving := total - stopped
	return Movement{
		Moving:     moving,
		Stopped:    stopped,
		MovingPct:  pct(moving, total),
		StoppedPct: pct(stopped, total),
	}
}

func analyse(pings []telemetry.Ping, stopped int) Analysis {
	var moving, excess, high int
	for _, p := range pings {
		s := p.SpeedOrZero()
		if s > 0 {
			moving++
		}
		if s > SpeedExcessThreshold {
			excess++
		}
		if s > HighSpeedThreshold {
			high++
		}
	}
	n := len(pings)
	return Analysis{
		MovingPct:      pct(moving, n),
		SpeedExcessPct: pct(excess, n),
		HighSpeedPct:   pct(high, n),
		StoppedPct:     pct(stopped, n),
	}
}

// timeline keeps every stride-th ping, stride = max(1, N/MaxTimelineSamples).
func timeline(pings []telemetry.Ping, loc *time.Location) []TimelinePoint {
	if len(pings) == 0 {
		return nil
	}
	stride := len(pings) / MaxTimelineSamples
	if stride < 1 {
		stride = 1
	}

	layout := "15:04"
	first, last := pings[0].Time().In(loc), pings[len(pings)-1].Time().In(loc)
	if first.YearDay() != last.YearDay() || first.Year() != last.Year() {
		layout = "02/01 15:04"
	}

	out := make([]TimelinePoint, 0, len(pings)/stride+1)
	for i := 0; i < len(pings); i += stride {
		ts := pings[i].Time()
		out = append(out, TimelinePoint{
			Time:  ts,
			Label: ts.In(loc).Format(layout),
			Speed: pings[i].SpeedOrZero(),
		})
	}
	return out
}

func period(pings []telemetry.Ping, loc *time.Location) Period {
	if len(pings) == 0 {
		return Period{StartLabel: NoDataLabel, EndLabel: NoDataLabel}
	}
	start, end := pings[0].Time(), pings[len(pings)-1].Time()
	return Period{
		HasData:    true,
		Start:      start,
		End:        end,
		StartLabel: start.In(loc).Format(periodLayout),
		EndLabel:   end.In(loc).Format(periodLayout),
	}
}

func rank(assigned *telemetry.Driver, drivers []telemetry.Driver) []RankedDriver {
	if assigned == nil {
		return nil
	}
	out := []RankedDriver{{Driver: *assigned, Assigned: true, Label: AssignedLabel}}
	for _, d := range drivers {
		if len(out) > MaxRankedPeers {
			break
		}
		if d.ID == assigned.ID {
			continue
		}
		if assigned.ClientID != "" && d.ClientID != assigned.ClientID {
			continue
		}
		out = append(out, RankedDriver{Driver: d, Label: AvailableLabel})
	}
	return out
}
