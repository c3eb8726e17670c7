package telemetry

import "time"

// BuildSegments merges consecutive same-status pings into segments.
//
// When the status changes, the open segment is closed at the previous ping's
// time, not at the ping that triggered the change. The gap between the two
// pings therefore belongs to neither segment. The trailing segment is closed
// at the last ping's time. Point counts always sum to len(pings).
func BuildSegments(pings []Ping) []Segment {
	if len(pings) == 0 {
		return nil
	}

	statuses := ClassifyAll(pings)
	var segments []Segment

	cur := Segment{Status: statuses[0], Start: pings[0].Time(), Points: 1}
	for i := 1; i < len(pings); i++ {
		if statuses[i] == cur.Status {
			cur.Points++
			continue
		}
		segments = append(segments, closeSegment(cur, pings[i-1].Time()))
		cur = Segment{Status: statuses[i], Start: pings[i].Time(), Points: 1}
	}
	segments = append(segments, closeSegment(cur, pings[len(pings)-1].Time()))

	return segments
}

func closeSegment(s Segment, end time.Time) Segment {
	s.End = end
	s.Duration = end.Sub(s.Start)
	if s.Duration < 0 {
		s.Duration = 0
	}
	return s
}

// StatusTotal aggregates every segment of one status.
type StatusTotal struct {
	Status   Status
	Segments int
	Duration time.Duration
	Points   int
}

// SummarizeByStatus groups segments by status in order of first appearance.
// Summed durations and point counts equal those of the input list.
func SummarizeByStatus(segments []Segment) []StatusTotal {
	index := make(map[Status]int)
	var totals []StatusTotal
	for _, s := range segments {
		i, ok := index[s.Status]
		if !ok {
			i = len(totals)
			index[s.Status] = i
			totals = append(totals, StatusTotal{Status: s.Status})
		}
		totals[i].Segments++
		totals[i].Duration += s.Duration
		totals[i].Points += s.Points
	}
	return totals
}

// TotalDuration sums segment durations.
func TotalDuration(segments []Segment) time.Duration {
	var d time.Duration
	for _, s := range segments {
		d += s.Duration
	}
	return d
}

// TotalPoints sums segment point counts.
func TotalPoints(segments []Segment) int {
	n := 0
	for _, s := range segments {
		n += s.Points
	}
	return n
}
