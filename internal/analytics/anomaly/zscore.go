package anomaly

import (
	"math"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/window"
)

const (
	RollingZScoreName  = "rolling_zscore"
	TrailingZScoreName = "trailing_zscore"
)

// RollingZScoreDetector measures how many local standard deviations each
// point lies from its local mean. The local window either surrounds the
// point or trails it.
type RollingZScoreDetector struct {
	alignment Alignment
}

func init() {
	RegisterDetector(RollingZScoreName, &RollingZScoreDetector{alignment: Centered})
	RegisterDetector(TrailingZScoreName, &RollingZScoreDetector{alignment: Trailing})
}

// Name returns the algorithm name
func (z *RollingZScoreDetector) Name() string {
	if z.alignment == Trailing {
		return TrailingZScoreName
	}
	return RollingZScoreName
}

// Detect evaluates every point in one pass over the data. The alignment of
// the detector wins over config.Alignment.
func (z *RollingZScoreDetector) Detect(points analytics.Points, config Config) ([]Point, error) {
	config.Alignment = z.alignment
	if err := config.Validate(); err != nil {
		return nil, err
	}

	values := points.Values()
	var moments []window.Moments
	if z.alignment == Trailing {
		moments = window.Trailing(values, config.Window)
	} else {
		moments = window.Centered(values, config.Window)
	}

	out := make([]Point, len(points))
	for i, p := range points {
		m := moments[i]
		zs := CalculateZScore(p.Value, m.Mean, m.Std)
		ap := Point{
			Time:        p.Time,
			Value:       p.Value,
			RollingMean: m.Mean,
			RollingStd:  m.Std,
			ZScore:      zs,
			IsAnomaly:   math.Abs(zs) > config.Threshold,
		}
		if m.Std > 0 {
			ap.Expected = &Range{
				Min: m.Mean - config.Threshold*m.Std,
				Max: m.Mean + config.Threshold*m.Std,
			}
		}
		if ap.IsAnomaly {
			ap.Type = AnomalyTypeSpike
			if zs < 0 {
				ap.Type = AnomalyTypeDrop
			}
		}
		out[i] = ap
	}
	return out, nil
}

// CalculateZScore calculates the z-score of value. A zero or undefined
// stdDev means the window has no deviation to measure, and yields 0.
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 || analytics.IsUndefined(stdDev) || analytics.IsUndefined(mean) {
		return 0
	}
	return (value - mean) / stdDev
}
