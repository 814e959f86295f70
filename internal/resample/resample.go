// Package resample aggregates a series into fixed-width time buckets aligned
// to wall-clock boundaries.
package resample

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// ErrUnknownGranularity is returned for a granularity name that is not supported
var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity is the bucket width of a resampled view
type Granularity string

const (
	Raw        Granularity = "raw"
	OneMin     Granularity = "1min"
	FiveMin    Granularity = "5min"
	FifteenMin Granularity = "15min"
	ThirtyMin  Granularity = "30min"
	OneHour    Granularity = "1hour"
)

// Default is the granularity used when none is requested
const Default = FiveMin

var widths = map[Granularity]time.Duration{
	Raw:        0,
	OneMin:     time.Minute,
	FiveMin:    5 * time.Minute,
	FifteenMin: 15 * time.Minute,
	ThirtyMin:  30 * time.Minute,
	OneHour:    time.Hour,
}

// Granularities lists the supported granularities, finest first
func Granularities() []Granularity {
	return []Granularity{Raw, OneMin, FiveMin, FifteenMin, ThirtyMin, OneHour}
}

// ParseGranularity parses a granularity name. "1h" and "hourly" are accepted
// for 1hour; empty means the default.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "":
		return Default, nil
	case "1h", "hourly", "60min":
		return OneHour, nil
	case "1m":
		return OneMin, nil
	}
	g := Granularity(s)
	if _, ok := widths[g]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
	return g, nil
}

// Width returns the bucket width, 0 for raw
func (g Granularity) Width() (time.Duration, error) {
	w, ok := widths[g]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGranularity, string(g))
	}
	return w, nil
}

// Bucket is the aggregate of the samples sharing one time bucket
type Bucket struct {
	Start time.Time
	Count int
	Mean  float64
	Min   float64
	Max   float64
	Std   float64 // sample standard deviation, undefined for Count < 2
}

// BucketStart returns the start of the bucket containing t. Boundaries are
// computed from t's wall clock in its own location: date + hour +
// floor(minute/width)*width. They never depend on neighbouring samples.
func BucketStart(t time.Time, width time.Duration) time.Time {
	if width <= 0 {
		return t
	}
	y, mo, d := t.Date()
	if width >= time.Hour {
		hours := int(width / time.Hour)
		return time.Date(y, mo, d, t.Hour()/hours*hours, 0, 0, 0, t.Location())
	}
	minutes := int(width / time.Minute)
	return time.Date(y, mo, d, t.Hour(), t.Minute()/minutes*minutes, 0, 0, t.Location())
}

// Resample aggregates s into buckets of granularity g. Buckets without
// samples are not emitted. Raw yields one bucket per sample.
func Resample(s series.Series, g Granularity) ([]Bucket, error) {
	width, err := g.Width()
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0)
	if len(s) == 0 {
		return buckets, nil
	}

	index := make(map[int64]int)
	accs := make([]*Accumulator, 0)
	ordered := true
	for _, sm := range s {
		start := BucketStart(sm.Time, width)
		key := start.UnixNano()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			if i > 0 && start.Before(buckets[i-1].Start) {
				ordered = false
			}
			buckets = append(buckets, Bucket{Start: start})
			accs = append(accs, NewAccumulator(float64(sm.Value)))
		}
		accs[i].AddValue(float64(sm.Value))
	}

	for i, acc := range accs {
		buckets[i].Count = int(acc.Count)
		buckets[i].Mean = acc.Mean()
		buckets[i].Min = acc.Min
		buckets[i].Max = acc.Max
		buckets[i].Std = acc.StdDev()
	}
	if !ordered {
		sort.Slice(buckets, func(a, b int) bool { return buckets[a].Start.Before(buckets[b].Start) })
	}
	return buckets, nil
}

// Points returns bucket means as analytics points
func Points(buckets []Bucket) analytics.Points {
	points := make(analytics.Points, len(buckets))
	for i, b := range buckets {
		points[i] = analytics.Point{Time: b.Start, Value: b.Mean}
	}
	return points
}

// AsSeries turns buckets back into a series of rounded means, one sample per
// bucket start.
func AsSeries(buckets []Bucket) series.Series {
	out := make(series.Series, len(buckets))
	for i, b := range buckets {
		out[i] = series.Sample{Time: b.Start, Value: int64(math.Round(b.Mean))}
	}
	return out
}

// TotalCount returns the number of samples across buckets
func TotalCount(buckets []Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}
