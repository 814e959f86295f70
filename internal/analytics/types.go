// Package analytics provides common types and utilities for the availability
// analytics packages (stats, anomaly, comparison, summary).
package analytics

import (
	"math"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// Point is a single time-series point with a float value. Raw samples and
// bucket means are both handed to the analytics packages as Points.
type Point struct {
	Time  time.Time
	Value float64
}

// Points is an ordered run of points
type Points []Point

// FromSeries converts raw samples to points
func FromSeries(s series.Series) Points {
	points := make(Points, len(s))
	for i, sm := range s {
		points[i] = Point{Time: sm.Time, Value: float64(sm.Value)}
	}
	return points
}

// Values extracts just the values from the points
func (ps Points) Values() []float64 {
	values := make([]float64, len(ps))
	for i, p := range ps {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the points
func (ps Points) Times() []time.Time {
	times := make([]time.Time, len(ps))
	for i, p := range ps {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of points
func (ps Points) Len() int {
	return len(ps)
}

// Mean calculates the mean of all values. Undefined for no points.
func (ps Points) Mean() float64 {
	if len(ps) == 0 {
		return Undefined()
	}
	sum := 0.0
	for _, p := range ps {
		sum += p.Value
	}
	return sum / float64(len(ps))
}

// StdDev calculates the sample standard deviation (n-1). Undefined for fewer
// than two points.
func (ps Points) StdDev() float64 {
	if len(ps) < 2 {
		return Undefined()
	}
	mean := ps.Mean()
	sumSq := 0.0
	for _, p := range ps {
		diff := p.Value - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(ps)-1))
}

// Undefined returns the sentinel used for statistics that have no value,
// such as the mean of nothing or a ratio over a zero denominator.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is the undefined sentinel or any other
// non-finite value.
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Ratio returns num/den, or Undefined when den is zero or either side is undefined
func Ratio(num, den float64) float64 {
	if den == 0 || IsUndefined(num) || IsUndefined(den) {
		return Undefined()
	}
	return num / den
}
