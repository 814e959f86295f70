// Package stats computes scalar and grouped statistics over availability
// points: KPI cards, dispersion, period-over-period change, rolling moments
// and the calendar profiles (per day, per hour, per weekday).
//
// Statistics with no defined value (mean of nothing, ratio over zero) are
// reported as analytics.Undefined rather than 0.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

// KPIs are the headline numbers of a view
type KPIs struct {
	Count  int
	Latest float64
	Peak   float64
	Mean   float64
	Min    float64
}

// ComputeKPIs returns the headline numbers for points
func ComputeKPIs(points analytics.Points) KPIs {
	if len(points) == 0 {
		u := analytics.Undefined()
		return KPIs{Latest: u, Peak: u, Mean: u, Min: u}
	}

	k := KPIs{
		Count:  len(points),
		Latest: points[len(points)-1].Value,
		Peak:   math.Inf(-1),
		Min:    math.Inf(1),
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Value
		k.Peak = math.Max(k.Peak, p.Value)
		k.Min = math.Min(k.Min, p.Value)
	}
	k.Mean = sum / float64(len(points))
	return k
}

// CoefficientOfVariation returns sample std / mean * 100. Undefined when the
// mean is zero or there are fewer than two points.
func CoefficientOfVariation(points analytics.Points) float64 {
	if len(points) < 2 {
		return analytics.Undefined()
	}
	mean, err := mstats.Mean(points.Values())
	if err != nil {
		return analytics.Undefined()
	}
	std, err := mstats.StandardDeviationSample(points.Values())
	if err != nil {
		return analytics.Undefined()
	}
	return analytics.Ratio(std, mean) * 100
}

// describe returns mean, sample std, min and max of values. Std is undefined
// for fewer than two values, everything is undefined for none.
func describe(values []float64) (mean, std, lo, hi float64) {
	u := analytics.Undefined()
	if len(values) == 0 {
		return u, u, u, u
	}
	mean, _ = mstats.Mean(values)
	lo, _ = mstats.Min(values)
	hi, _ = mstats.Max(values)
	std = u
	if len(values) > 1 {
		std, _ = mstats.StandardDeviationSample(values)
	}
	return mean, std, lo, hi
}

// percentile wraps mstats.Percentile, mapping empty input to Undefined.
func percentile(values []float64, p float64) float64 {
	v, err := mstats.Percentile(values, p)
	if err != nil {
		return analytics.Undefined()
	}
	return v
}
