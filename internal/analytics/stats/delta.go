package stats

import (
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// PeriodDelta compares the current filtered window with the window of the
// same length immediately before it.
type PeriodDelta struct {
	Percent      float64 // undefined when either window is empty or the previous mean is 0
	CurrentMean  float64
	PreviousMean float64
	Previous     filter.Spec
}

// DeltaVsPreviousPeriod returns the percent change of the mean of raw under
// spec against the mean of the preceding period of the same number of days,
// with the same hour and weekday filters. When spec leaves a date open, that
// bound is taken from the filtered data.
func DeltaVsPreviousPeriod(raw series.Series, spec filter.Spec) (PeriodDelta, error) {
	u := analytics.Undefined()
	result := PeriodDelta{Percent: u, CurrentMean: u, PreviousMean: u}

	current, err := filter.Apply(raw, spec)
	if err != nil {
		return result, err
	}
	if len(current) == 0 {
		return result, nil
	}

	bounded := spec
	if bounded.DateStart.IsZero() {
		bounded.DateStart = series.DateOf(current[0].Time)
	}
	if bounded.DateEnd.IsZero() {
		bounded.DateEnd = series.DateOf(current[len(current)-1].Time)
	}
	result.Previous = bounded.Shift(-bounded.DayCount())

	previous, err := filter.Apply(raw, result.Previous)
	if err != nil {
		return result, err
	}

	result.CurrentMean = analytics.FromSeries(current).Mean()
	result.PreviousMean = analytics.FromSeries(previous).Mean()
	result.Percent = analytics.Ratio(result.CurrentMean-result.PreviousMean, result.PreviousMean) * 100
	return result, nil
}
