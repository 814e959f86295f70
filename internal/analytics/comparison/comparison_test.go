package comparison

import (
	"errors"
	"testing"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

var loc = time.FixedZone("COT", -5*3600)

// everyMinute builds samples every minute from start for the given duration
func everyMinute(start time.Time, d time.Duration, value func(t time.Time) int64) series.Series {
	var out series.Series
	for ts := start; ts.Before(start.Add(d)); ts = ts.Add(time.Minute) {
		out = append(out, series.Sample{Time: ts, Value: value(ts)})
	}
	return out
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "none", "weekday_weekend", "day_over_day"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("month_over_month"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestDayOverDay_KeysWithinDay(t *testing.T) {
	// starts mid-afternoon so the first and last days are partial
	start := time.Date(2026, 2, 6, 15, 3, 0, 0, loc)
	s := everyMinute(start, 50*time.Hour, func(time.Time) int64 { return 10 })

	for _, g := range resample.Granularities() {
		traces, err := DayOverDay(s, g)
		if err != nil {
			t.Fatalf("%s: %v", g, err)
		}
		if len(traces) != 3 {
			t.Fatalf("%s: expected 3 days, got %d", g, len(traces))
		}
		for _, tr := range traces {
			for _, p := range tr.Points {
				if p.Minute < 0 || p.Minute >= MinutesPerDay {
					t.Fatalf("%s: key %v outside [0, 1440)", g, p.Minute)
				}
				if series.DateOf(p.Time) != tr.Date {
					t.Fatalf("%s: point %v filed under %s", g, p.Time, tr.Date)
				}
			}
		}
	}
}

func TestDayOverDay_PartialDaysOmitSlots(t *testing.T) {
	start := time.Date(2026, 2, 6, 22, 0, 0, 0, loc)
	s := everyMinute(start, 4*time.Hour, func(time.Time) int64 { return 1 })

	traces, err := DayOverDay(s, resample.OneHour)
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 2 {
		t.Fatalf("expected 2 days, got %d", len(traces))
	}
	if len(traces[0].Points) != 2 || traces[0].Points[0].Minute != 22*60 {
		t.Errorf("unexpected first day %+v", traces[0].Points)
	}
	if len(traces[1].Points) != 2 || traces[1].Points[0].Minute != 0 || traces[1].Points[1].Minute != 60 {
		t.Errorf("unexpected second day %+v", traces[1].Points)
	}
	if traces[1].Weekday != time.Saturday {
		t.Errorf("expected Saturday, got %v", traces[1].Weekday)
	}
}

func TestWeekdayVsWeekend(t *testing.T) {
	// Friday 2026-02-06 through Sunday 2026-02-08
	start := time.Date(2026, 2, 6, 0, 0, 0, 0, loc)
	s := everyMinute(start, 72*time.Hour, func(ts time.Time) int64 {
		if IsWeekend(ts) {
			if ts.Weekday() == time.Saturday {
				return 200
			}
			return 400
		}
		return 100
	})

	overlay, err := WeekdayVsWeekend(s, resample.OneHour)
	if err != nil {
		t.Fatalf("WeekdayVsWeekend failed: %v", err)
	}
	if len(overlay.Weekday) != 24 || len(overlay.Weekend) != 24 {
		t.Fatalf("expected 24 slots each, got %d and %d", len(overlay.Weekday), len(overlay.Weekend))
	}
	for i, p := range overlay.Weekend {
		if p.Days != 2 || p.Mean != 300 {
			t.Errorf("weekend slot %d: expected mean 300 over 2 days, got %+v", i, p)
		}
		if p.Hour != float64(i) {
			t.Errorf("weekend slot %d keyed at hour %v", i, p.Hour)
		}
	}
	if overlay.Weekday[5].Days != 1 || overlay.Weekday[5].Mean != 100 {
		t.Errorf("unexpected weekday slot %+v", overlay.Weekday[5])
	}
}

func TestWeekdayVsWeekend_HalfHourSlots(t *testing.T) {
	start := time.Date(2026, 2, 9, 14, 0, 0, 0, loc)
	s := everyMinute(start, time.Hour, func(time.Time) int64 { return 5 })

	overlay, err := WeekdayVsWeekend(s, resample.ThirtyMin)
	if err != nil {
		t.Fatal(err)
	}
	if len(overlay.Weekday) != 2 || overlay.Weekday[1].Hour != 14.5 {
		t.Errorf("unexpected slots %+v", overlay.Weekday)
	}
	if len(overlay.Weekend) != 0 {
		t.Errorf("expected no weekend slots, got %d", len(overlay.Weekend))
	}
}

func TestComparison_EmptyInput(t *testing.T) {
	overlay, err := WeekdayVsWeekend(nil, resample.FiveMin)
	if err != nil || len(overlay.Weekday) != 0 || len(overlay.Weekend) != 0 {
		t.Errorf("unexpected result %+v, %v", overlay, err)
	}
	traces, err := DayOverDay(series.Series{}, resample.FiveMin)
	if err != nil || len(traces) != 0 {
		t.Errorf("unexpected result %+v, %v", traces, err)
	}
	if _, err := DayOverDay(nil, "2min"); !errors.Is(err, resample.ErrUnknownGranularity) {
		t.Errorf("expected ErrUnknownGranularity, got %v", err)
	}
}

func TestHourlyBoxes(t *testing.T) {
	// Sunday 09:00-09:04 and Monday 09:00-09:04
	sunday := time.Date(2026, 2, 8, 9, 0, 0, 0, loc)
	monday := sunday.Add(24 * time.Hour)
	var s series.Series
	for i, v := range []int64{1, 2, 3, 4, 5} {
		s = append(s, series.Sample{Time: sunday.Add(time.Duration(i) * time.Minute), Value: v})
	}
	for i, v := range []int64{10, 20, 30, 40, 50} {
		s = append(s, series.Sample{Time: monday.Add(time.Duration(i) * time.Minute), Value: v})
	}

	b := HourlyBoxes(s)
	if len(b.Weekend) != 1 || len(b.Weekday) != 1 {
		t.Fatalf("expected one hour each, got %d and %d", len(b.Weekend), len(b.Weekday))
	}
	we := b.Weekend[0]
	if we.Hour != 9 || we.Count != 5 || we.Min != 1 || we.Max != 5 || we.Median != 3 {
		t.Errorf("unexpected weekend box %+v", we)
	}
	if we.Q1 > we.Median || we.Q3 < we.Median {
		t.Errorf("quartiles out of order %+v", we)
	}
	if b.Weekday[0].Median != 30 {
		t.Errorf("unexpected weekday box %+v", b.Weekday[0])
	}
}
