package stats

import (
	"math"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

// Change is the difference between a point and the one before it, stamped
// with the later point's time.
type Change = analytics.Point

// VelocityReport describes how fast the series moves between consecutive
// points (usually 5 minute buckets).
type VelocityReport struct {
	Changes       analytics.Points
	MaxIncrease   Change // largest positive change, zero value when none
	MaxDecrease   Change // most negative change, zero value when none
	MeanAbsChange float64
}

// Velocity returns the consecutive differences of points
func Velocity(points analytics.Points) VelocityReport {
	report := VelocityReport{Changes: make(analytics.Points, 0, max(len(points)-1, 0)), MeanAbsChange: analytics.Undefined()}
	if len(points) < 2 {
		return report
	}

	sumAbs := 0.0
	for i := 1; i < len(points); i++ {
		c := Change{Time: points[i].Time, Value: points[i].Value - points[i-1].Value}
		report.Changes = append(report.Changes, c)
		sumAbs += math.Abs(c.Value)
		if c.Value > report.MaxIncrease.Value {
			report.MaxIncrease = c
		}
		if c.Value < report.MaxDecrease.Value {
			report.MaxDecrease = c
		}
	}
	report.MeanAbsChange = sumAbs / float64(len(report.Changes))
	return report
}
