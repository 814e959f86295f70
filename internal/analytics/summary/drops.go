package summary

import (
	"sort"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

const (
	// DefaultDropSpan is the longest fall counted as a sharp drop
	DefaultDropSpan = 10 * time.Minute
	// DefaultDropPct is the smallest fall, in percent of the peak, counted as a drop
	DefaultDropPct = 10.0
)

// DropEvent is a sharp fall from a local peak
type DropEvent struct {
	Start   time.Time // time of the peak
	End     time.Time // time of the trough
	From    float64
	To      float64
	PctDrop float64 // (From - To) / From * 100
}

// DetectDrops finds the points that sit more than minPct percent below the
// highest earlier point no more than span before them. Consecutive such
// points form one event running from that peak to the lowest point of the
// run, and an event never lasts longer than span. Once its peak leaves the
// window the event closes and later drops are measured from peaks after its
// trough. The running maximum is kept in a monotonic deque, so the scan is O(n).
func DetectDrops(points analytics.Points, span time.Duration, minPct float64) []DropEvent {
	events := make([]DropEvent, 0)
	if len(points) < 2 || span <= 0 {
		return events
	}
	factor := 1 - minPct/100

	// deque holds indices of earlier points with strictly decreasing values
	deque := make([]int, 0, 64)
	var current *DropEvent

	for i, p := range points {
		for len(deque) > 0 && p.Time.Sub(points[deque[0]].Time) > span {
			deque = deque[1:]
		}
		if current != nil && p.Time.Sub(current.Start) > span {
			for len(deque) > 0 && !points[deque[0]].Time.After(current.End) {
				deque = deque[1:]
			}
			current = nil
		}

		inDrop := false
		if len(deque) > 0 {
			peak := points[deque[0]]
			if peak.Value > 0 && p.Value < peak.Value*factor {
				inDrop = true
				if current == nil {
					events = append(events, DropEvent{Start: peak.Time, From: peak.Value, End: p.Time, To: p.Value})
					current = &events[len(events)-1]
				} else if p.Value < current.To {
					current.End, current.To = p.Time, p.Value
				}
			}
		}
		if !inDrop {
			current = nil
		}

		for len(deque) > 0 && points[deque[len(deque)-1]].Value <= p.Value {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
	}

	for i := range events {
		e := &events[i]
		e.PctDrop = (e.From - e.To) / e.From * 100
	}
	return events
}

// largestDrops keeps the n events with the largest PctDrop, in time order,
// and returns how many were left out.
func largestDrops(events []DropEvent, n int) ([]DropEvent, int) {
	if len(events) <= n {
		return events, 0
	}
	ranked := make([]DropEvent, len(events))
	copy(ranked, events)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].PctDrop > ranked[j].PctDrop })
	kept := ranked[:n]
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start.Before(kept[j].Start) })
	return kept, len(events) - n
}
