package summary

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/stats"
)

var loc = time.FixedZone("COT", -5*3600)

const step = 10 * time.Second

// ramp returns points every 10s: flat at from, a linear fall to to over
// fall, then flat at to.
func ramp(start time.Time, from, to float64, fall time.Duration) analytics.Points {
	var out analytics.Points
	ts := start
	for ; !ts.After(start.Add(30 * time.Minute)); ts = ts.Add(step) {
		out = append(out, analytics.Point{Time: ts, Value: from})
	}
	fallStart := start.Add(30 * time.Minute)
	steps := int(fall / step)
	for i := 1; i <= steps; i++ {
		v := from - (from-to)*float64(i)/float64(steps)
		out = append(out, analytics.Point{Time: fallStart.Add(time.Duration(i) * step), Value: v})
	}
	ts = fallStart.Add(time.Duration(steps) * step)
	for end := ts.Add(30 * time.Minute); ts.Before(end); {
		ts = ts.Add(step)
		out = append(out, analytics.Point{Time: ts, Value: to})
	}
	return out
}

func TestDetectDrops_FastDropRecorded(t *testing.T) {
	start := time.Date(2026, 2, 3, 12, 0, 0, 0, loc)
	points := ramp(start, 500000, 400000, 8*time.Minute)

	events := DetectDrops(points, DefaultDropSpan, DefaultDropPct)
	if len(events) != 1 {
		t.Fatalf("expected one drop event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if math.Abs(e.PctDrop-20) > 0.01 {
		t.Errorf("expected ~20%% drop, got %v", e.PctDrop)
	}
	if e.From != 500000 || e.To != 400000 {
		t.Errorf("unexpected levels %v -> %v", e.From, e.To)
	}
	if got := e.End.Sub(e.Start); got != 8*time.Minute {
		t.Errorf("expected the event to span 8 minutes, got %v", got)
	}
}

func TestDetectDrops_SlowDeclineIgnored(t *testing.T) {
	start := time.Date(2026, 2, 3, 12, 0, 0, 0, loc)
	points := ramp(start, 500000, 400000, 30*time.Minute)

	if events := DetectDrops(points, DefaultDropSpan, DefaultDropPct); len(events) != 0 {
		t.Errorf("expected no drop events, got %+v", events)
	}
}

func TestDetectDrops_LongDeclineSplitsIntoWindows(t *testing.T) {
	// one point per minute, falling 13.3% every 10 minutes for half an hour
	start := time.Date(2026, 2, 3, 10, 0, 0, 0, loc)
	points := make(analytics.Points, 0, 31)
	for i := 0; i <= 30; i++ {
		v := 500000 - 200000*float64(i)/30
		points = append(points, analytics.Point{Time: start.Add(time.Duration(i) * time.Minute), Value: v})
	}

	events := DetectDrops(points, DefaultDropSpan, DefaultDropPct)
	if len(events) < 2 {
		t.Fatalf("expected the decline to split into several events, got %+v", events)
	}
	for i, e := range events {
		if got := e.End.Sub(e.Start); got > DefaultDropSpan {
			t.Errorf("event %d spans %v, longer than %v", i, got, DefaultDropSpan)
		}
		if e.PctDrop <= DefaultDropPct || e.PctDrop > 20 {
			t.Errorf("event %d: unexpected drop %.1f%%", i, e.PctDrop)
		}
		if i > 0 && !e.Start.After(events[i-1].End) {
			t.Errorf("event %d starts at %v before the previous trough at %v", i, e.Start, events[i-1].End)
		}
	}
	if !events[0].Start.Equal(start) || events[0].From != 500000 {
		t.Errorf("expected the first event to start at the initial peak, got %+v", events[0])
	}
}

func TestDetectDrops_SeparateEvents(t *testing.T) {
	start := time.Date(2026, 2, 3, 0, 0, 0, 0, loc)
	values := []float64{100, 100, 50, 100, 100, 100, 100, 0, 0, 100}
	points := make(analytics.Points, len(values))
	for i, v := range values {
		points[i] = analytics.Point{Time: start.Add(time.Duration(i) * time.Minute), Value: v}
	}

	events := DetectDrops(points, 2*time.Minute, 10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if events[0].PctDrop != 50 || events[1].PctDrop != 100 {
		t.Errorf("unexpected drops %v and %v", events[0].PctDrop, events[1].PctDrop)
	}
	if !events[1].Start.Equal(points[6].Time) || !events[1].End.Equal(points[7].Time) {
		t.Errorf("unexpected second event span %v..%v", events[1].Start, events[1].End)
	}

	if got := DetectDrops(points[:1], time.Minute, 10); len(got) != 0 {
		t.Errorf("expected no events for a single point, got %+v", got)
	}
}

func TestLargestDrops(t *testing.T) {
	base := time.Date(2026, 2, 3, 0, 0, 0, 0, loc)
	events := []DropEvent{
		{Start: base, PctDrop: 15},
		{Start: base.Add(time.Hour), PctDrop: 80},
		{Start: base.Add(2 * time.Hour), PctDrop: 11},
		{Start: base.Add(3 * time.Hour), PctDrop: 40},
	}
	kept, omitted := largestDrops(events, 2)
	if omitted != 2 || len(kept) != 2 {
		t.Fatalf("expected 2 kept and 2 omitted, got %d/%d", len(kept), omitted)
	}
	if kept[0].PctDrop != 80 || kept[1].PctDrop != 40 {
		t.Errorf("expected the largest drops in time order, got %+v", kept)
	}
}

// days builds n days of hourly points with a peak at peakHour
func days(n, peakHour int) analytics.Points {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)
	out := make(analytics.Points, 0, n*24)
	for i := 0; i < n*24; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		v := 1000.0
		if ts.Hour() == peakHour {
			v = 2450
		}
		out = append(out, analytics.Point{Time: ts, Value: v})
	}
	return out
}

func buildInput(points analytics.Points) Input {
	results, _ := anomaly.Detect(points, anomaly.Config{Window: 5, Threshold: 2})
	return Input{
		Points:    points,
		Days:      stats.PerDay(points),
		Hourly:    stats.HourlyByDay(points),
		Anomalies: results,
		Threshold: 2,
	}
}

func TestBuild_BoundsAndGoldenHour(t *testing.T) {
	points := days(40, 13)
	d := Build(buildInput(points), DefaultLimits())

	if len(d.Days) != 14 || d.Omitted.Days != 26 {
		t.Fatalf("expected 14 days kept and 26 omitted, got %d/%d", len(d.Days), d.Omitted.Days)
	}
	if d.Days[len(d.Days)-1].Date.String() != "2026-02-09" {
		t.Errorf("expected the most recent day last, got %s", d.Days[len(d.Days)-1].Date)
	}
	for _, day := range d.Days {
		if day.GoldenHour != 13 {
			t.Errorf("%s: expected golden hour 13, got %d", day.Date, day.GoldenHour)
		}
		if len(day.Hours) != 24 {
			t.Errorf("%s: expected 24 hourly means, got %d", day.Date, len(day.Hours))
		}
	}
	if len(d.Anomalies.Top) > 10 {
		t.Errorf("expected at most 10 anomalies, got %d", len(d.Anomalies.Top))
	}
	if d.Anomalies.Count != len(d.Anomalies.Top)+d.Omitted.Anomalies {
		t.Errorf("anomaly accounting mismatch: %d vs %d+%d", d.Anomalies.Count, len(d.Anomalies.Top), d.Omitted.Anomalies)
	}
	if d.Sampling != time.Hour {
		t.Errorf("expected hourly sampling, got %v", d.Sampling)
	}
	if d.Global.Max != 2450 || d.Global.Min != 1000 {
		t.Errorf("unexpected global stats %+v", d.Global)
	}
	if d.Period.Start.String() != "2026-01-01" || d.Period.End.String() != "2026-02-09" {
		t.Errorf("unexpected period %s..%s", d.Period.Start, d.Period.End)
	}
}

func TestBuild_Empty(t *testing.T) {
	d := Build(Input{}, Limits{})
	if d.Points != 0 || len(d.Days) != 0 || len(d.Drops) != 0 || len(d.Anomalies.Top) != 0 {
		t.Errorf("expected an empty digest, got %+v", d)
	}
	if !analytics.IsUndefined(d.Global.Mean) {
		t.Errorf("expected undefined global mean, got %v", d.Global.Mean)
	}
	if !strings.Contains(Render(d), "No data points") {
		t.Errorf("unexpected render of empty digest:\n%s", Render(d))
	}
}

func TestRender(t *testing.T) {
	points := ramp(time.Date(2026, 2, 3, 12, 0, 0, 0, loc), 500000, 400000, 8*time.Minute)
	text := Render(Build(buildInput(points), DefaultLimits()))

	for _, want := range []string{
		"=== STORE AVAILABILITY DATA SUMMARY ===",
		"Period: 2026-02-03 to 2026-02-03",
		"Sampling: ~10s",
		"Global max: 500,000",
		"=== DAILY STATS ===",
		"2026-02-03 (Tuesday): avg=",
		"=== HOURLY AVERAGES PER DAY ===",
		"=== NOTABLE DROPS (>10% within 10min) ===",
		"500,000 -> 400,000 stores (-20.0%)",
		"=== GOLDEN HOUR (peak hour per day) ===",
		"  2026-02-03: 12:00 with avg ",
		"=== ANOMALIES (|z| > 2) ===",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("render missing %q:\n%s", want, text)
		}
	}
}

func TestRender_DropAcrossMidnight(t *testing.T) {
	points := ramp(time.Date(2026, 2, 3, 23, 25, 0, 0, loc), 500000, 400000, 8*time.Minute)
	text := Render(Build(buildInput(points), DefaultLimits()))

	want := "2026-02-03 23:55 -> 2026-02-04 00:03: 500,000 -> 400,000 stores (-20.0%)"
	if !strings.Contains(text, want) {
		t.Errorf("render missing %q:\n%s", want, text)
	}
}

func TestRender_SizeIsBounded(t *testing.T) {
	// a month of 10s samples with a restart to zero every six hours
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)
	var points analytics.Points
	for ts := start; ts.Before(start.Add(30 * 24 * time.Hour)); ts = ts.Add(step) {
		v := 1000 + 500*math.Sin(float64(ts.Hour())/24*2*math.Pi)
		if ts.Hour()%6 == 0 && ts.Minute() == 0 && ts.Second() < 30 {
			v = 0
		}
		points = append(points, analytics.Point{Time: ts, Value: v})
	}

	d := Build(buildInput(points), DefaultLimits())
	if len(d.Drops) != 20 || d.Omitted.Drops == 0 {
		t.Errorf("expected drops capped at 20 with some omitted, got %d (%d omitted)", len(d.Drops), d.Omitted.Drops)
	}
	if n := len(Render(d)); n > 10*1024 {
		t.Errorf("expected a rendered digest under 10KiB, got %d bytes", n)
	}
}
