// Package comparison reshapes a filtered series so that different days can
// be overlaid on a shared time-of-day axis.
package comparison

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// ErrUnknownMode is returned for an unsupported comparison mode
var ErrUnknownMode = errors.New("unknown comparison mode")

// MinutesPerDay bounds the time-of-day axis: every key is in [0, MinutesPerDay)
const MinutesPerDay = 24 * 60

// Mode selects the comparison view
type Mode string

const (
	ModeNone           Mode = "none"
	ModeWeekdayWeekend Mode = "weekday_weekend"
	ModeDayOverDay     Mode = "day_over_day"
)

// ParseMode parses a mode name. Empty means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeWeekdayWeekend, ModeDayOverDay:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MinuteOfDay returns the wall-clock minutes elapsed since t's own midnight,
// with seconds as a fraction. The result is in [0, MinutesPerDay).
func MinuteOfDay(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
}

// ProfilePoint is one time-of-day slot averaged across days
type ProfilePoint struct {
	Minute float64 // minutes since midnight
	Hour   float64 // the same slot in hours, e.g. 14.5 for 14:30
	Mean   float64
	Days   int // days that had data in the slot
}

// Overlay holds the weekday and weekend profiles
type Overlay struct {
	Weekday []ProfilePoint
	Weekend []ProfilePoint
}

// WeekdayVsWeekend splits s into weekday and weekend samples, resamples each
// part at g and averages every time-of-day slot across the days of that
// part. Slots no day has data for are omitted.
func WeekdayVsWeekend(s series.Series, g resample.Granularity) (Overlay, error) {
	var weekday, weekend series.Series
	for _, sm := range s {
		if IsWeekend(sm.Time) {
			weekend = append(weekend, sm)
		} else {
			weekday = append(weekday, sm)
		}
	}

	wd, err := profile(weekday, g)
	if err != nil {
		return Overlay{}, err
	}
	we, err := profile(weekend, g)
	if err != nil {
		return Overlay{}, err
	}
	return Overlay{Weekday: wd, Weekend: we}, nil
}

func profile(s series.Series, g resample.Granularity) ([]ProfilePoint, error) {
	buckets, err := resample.Resample(s, g)
	if err != nil {
		return nil, err
	}

	type slot struct {
		sum  float64
		days int
	}
	slots := make(map[float64]*slot)
	for _, b := range buckets {
		key := MinuteOfDay(b.Start)
		sl, ok := slots[key]
		if !ok {
			sl = &slot{}
			slots[key] = sl
		}
		sl.sum += b.Mean
		sl.days++
	}

	out := make([]ProfilePoint, 0, len(slots))
	for minute, sl := range slots {
		out = append(out, ProfilePoint{
			Minute: minute,
			Hour:   minute / 60,
			Mean:   sl.sum / float64(sl.days),
			Days:   sl.days,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out, nil
}

// TracePoint is one bucket of a day, keyed by its time of day
type TracePoint struct {
	Minute float64 // minutes since the day's midnight, in [0, MinutesPerDay)
	Time   time.Time
	Value  float64
}

// DayTrace is one day's buckets on the shared time-of-day axis
type DayTrace struct {
	Date    series.Date
	Weekday time.Weekday
	Points  []TracePoint
}

// DayOverDay resamples s at g and groups the buckets by calendar date, oldest
// day first. Partial days carry only the slots they have.
func DayOverDay(s series.Series, g resample.Granularity) ([]DayTrace, error) {
	buckets, err := resample.Resample(s, g)
	if err != nil {
		return nil, err
	}

	traces := make([]DayTrace, 0)
	for _, b := range buckets {
		d := series.DateOf(b.Start)
		if n := len(traces); n == 0 || traces[n-1].Date != d {
			traces = append(traces, DayTrace{Date: d, Weekday: d.Weekday()})
		}
		tr := &traces[len(traces)-1]
		tr.Points = append(tr.Points, TracePoint{Minute: MinuteOfDay(b.Start), Time: b.Start, Value: b.Mean})
	}
	return traces, nil
}
