// Package summary condenses the analytics of a view into a Digest, a small
// structure of fixed shape meant to be embedded verbatim as context for a
// language model. However long the input, the Digest stays within Limits.
package summary

import (
	"time"

	mstats "github.com/montanaflynn/stats"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/stats"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// Limits bounds the size of a Digest
type Limits struct {
	MaxDays      int // most recent days kept
	MaxDrops     int // largest drops kept
	MaxAnomalies int // strongest anomalies kept
	DropSpan     time.Duration
	DropPct      float64
}

// DefaultLimits keeps the rendered digest at a few kilobytes
func DefaultLimits() Limits {
	return Limits{
		MaxDays:      14,
		MaxDrops:     20,
		MaxAnomalies: 10,
		DropSpan:     DefaultDropSpan,
		DropPct:      DefaultDropPct,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDays <= 0 {
		l.MaxDays = d.MaxDays
	}
	if l.MaxDrops <= 0 {
		l.MaxDrops = d.MaxDrops
	}
	if l.MaxAnomalies <= 0 {
		l.MaxAnomalies = d.MaxAnomalies
	}
	if l.DropSpan <= 0 {
		l.DropSpan = d.DropSpan
	}
	if l.DropPct <= 0 {
		l.DropPct = d.DropPct
	}
	return l
}

// Period is the date range a digest covers
type Period struct {
	Start series.Date
	End   series.Date
}

// Global holds whole-view statistics
type Global struct {
	Min  float64
	Max  float64
	Mean float64
}

// DayDigest is one day with its per-hour means
type DayDigest struct {
	stats.DaySummary
	Hours []stats.HourMean
}

// AnomalyDigest lists the strongest anomalies of the view
type AnomalyDigest struct {
	Count     int
	Threshold float64
	Top       []anomaly.Point
}

// Omitted counts the entries dropped to respect Limits
type Omitted struct {
	Days      int
	Drops     int
	Anomalies int
}

// Digest is the bounded summary of a view
type Digest struct {
	Period    Period
	Points    int
	Sampling  time.Duration // median spacing between points
	Global    Global
	Days      []DayDigest
	Drops     []DropEvent
	DropSpan  time.Duration
	DropPct   float64
	Anomalies AnomalyDigest
	Omitted   Omitted
}

// Input gathers what Build summarises. Points is the filtered series the
// other fields were computed from; drops and global statistics are taken
// from it.
type Input struct {
	Points    analytics.Points
	Days      []stats.DaySummary
	Hourly    []stats.DayHours
	Anomalies []anomaly.Point
	Threshold float64
}

// Build assembles a Digest from in, enforcing limits. Days keep the most
// recent ones, drops keep the largest, anomalies keep the strongest.
func Build(in Input, limits Limits) Digest {
	limits = limits.withDefaults()
	u := analytics.Undefined()
	d := Digest{
		Points:   len(in.Points),
		Global:   Global{Min: u, Max: u, Mean: u},
		Days:     make([]DayDigest, 0),
		DropSpan: limits.DropSpan,
		DropPct:  limits.DropPct,
	}

	if len(in.Points) > 0 {
		d.Period = Period{Start: series.DateOf(in.Points[0].Time), End: series.DateOf(in.Points[len(in.Points)-1].Time)}
		k := stats.ComputeKPIs(in.Points)
		d.Global = Global{Min: k.Min, Max: k.Peak, Mean: k.Mean}
		d.Sampling = medianSpacing(in.Points)
	}

	hoursByDate := make(map[series.Date][]stats.HourMean, len(in.Hourly))
	for _, dh := range in.Hourly {
		hoursByDate[dh.Date] = dh.Hours
	}
	days := in.Days
	if len(days) > limits.MaxDays {
		d.Omitted.Days = len(days) - limits.MaxDays
		days = days[len(days)-limits.MaxDays:]
	}
	for _, day := range days {
		d.Days = append(d.Days, DayDigest{DaySummary: day, Hours: hoursByDate[day.Date]})
	}

	d.Drops, d.Omitted.Drops = largestDrops(DetectDrops(in.Points, limits.DropSpan, limits.DropPct), limits.MaxDrops)

	d.Anomalies.Count = len(anomaly.Flagged(in.Anomalies))
	d.Anomalies.Threshold = in.Threshold
	d.Anomalies.Top, d.Omitted.Anomalies = anomaly.Strongest(in.Anomalies, limits.MaxAnomalies)
	return d
}

func medianSpacing(points analytics.Points) time.Duration {
	if len(points) < 2 {
		return 0
	}
	gaps := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		gaps[i-1] = float64(points[i].Time.Sub(points[i-1].Time))
	}
	m, err := mstats.Median(gaps)
	if err != nil {
		return 0
	}
	return time.Duration(m)
}
