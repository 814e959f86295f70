package comparison

import (
	mstats "github.com/montanaflynn/stats"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// HourBox is the five-number summary of one hour of the day
type HourBox struct {
	Hour   int
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Boxes holds hourly box statistics for weekdays and weekends
type Boxes struct {
	Weekday []HourBox
	Weekend []HourBox
}

// HourlyBoxes groups the raw samples of s by hour of day, separately for
// weekdays and weekends. Hours without samples are omitted.
func HourlyBoxes(s series.Series) Boxes {
	var weekday, weekend [24][]float64
	for _, sm := range s {
		h := sm.Time.Hour()
		if IsWeekend(sm.Time) {
			weekend[h] = append(weekend[h], float64(sm.Value))
		} else {
			weekday[h] = append(weekday[h], float64(sm.Value))
		}
	}
	return Boxes{Weekday: boxes(weekday), Weekend: boxes(weekend)}
}

func boxes(byHour [24][]float64) []HourBox {
	out := make([]HourBox, 0, 24)
	for h, values := range byHour {
		if len(values) == 0 {
			continue
		}
		box := HourBox{Hour: h, Count: len(values)}
		box.Min, _ = mstats.Min(values)
		box.Max, _ = mstats.Max(values)
		box.Median, _ = mstats.Median(values)
		box.Q1, box.Q3 = box.Median, box.Median
		if len(values) > 1 {
			if q, err := mstats.Quartile(values); err == nil {
				box.Q1, box.Q3 = q.Q1, q.Q3
			}
		}
		if analytics.IsUndefined(box.Q1) || analytics.IsUndefined(box.Q3) {
			box.Q1, box.Q3 = box.Median, box.Median
		}
		out = append(out, box)
	}
	return out
}
