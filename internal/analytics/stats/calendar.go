package stats

import (
	"math"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// HourMean is the mean of one hour of one day
type HourMean struct {
	Hour  int
	Count int
	Mean  float64
}

// DaySummary describes one calendar day
type DaySummary struct {
	Date           series.Date
	Weekday        time.Weekday
	Count          int
	Mean           float64
	Min            float64
	Max            float64
	Std            float64
	GoldenHour     int // -1 when the day has no data
	GoldenHourMean float64
}

// DayHours holds the per-hour means of one day, hours without data omitted
type DayHours struct {
	Date    series.Date
	Weekday time.Weekday
	Hours   []HourMean
}

// HourStats is one hour of the typical-day profile
type HourStats struct {
	Hour  int
	Count int
	Mean  float64
	Std   float64
	Lower float64 // mean - std, clipped at 0
	Upper float64 // mean + std
}

// WeekdayStats aggregates every point falling on one day of the week
type WeekdayStats struct {
	Weekday time.Weekday
	Count   int
	Mean    float64
	Min     float64
	Max     float64
	Std     float64
}

// dayGroup is a run of points sharing a calendar date. Points are ordered,
// so each date forms one contiguous run.
type dayGroup struct {
	date   series.Date
	points analytics.Points
}

func groupByDay(points analytics.Points) []dayGroup {
	var groups []dayGroup
	for i, p := range points {
		d := series.DateOf(p.Time)
		if n := len(groups); n == 0 || groups[n-1].date != d {
			groups = append(groups, dayGroup{date: d, points: points[i : i+1]})
			continue
		}
		g := &groups[len(groups)-1]
		g.points = g.points[:len(g.points)+1]
	}
	return groups
}

func hourMeans(points analytics.Points) []HourMean {
	var sums [24]float64
	var counts [24]int
	for _, p := range points {
		h := p.Time.Hour()
		sums[h] += p.Value
		counts[h]++
	}
	hours := make([]HourMean, 0, 24)
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			hours = append(hours, HourMean{Hour: h, Count: counts[h], Mean: sums[h] / float64(counts[h])})
		}
	}
	return hours
}

// GoldenHour returns the hour with the highest mean. Ties go to the earliest
// hour. ok is false when hours is empty.
func GoldenHour(hours []HourMean) (HourMean, bool) {
	best := -1
	for i, h := range hours {
		if best < 0 || h.Mean > hours[best].Mean || (h.Mean == hours[best].Mean && h.Hour < hours[best].Hour) {
			best = i
		}
	}
	if best < 0 {
		return HourMean{Hour: -1, Mean: analytics.Undefined()}, false
	}
	return hours[best], true
}

// PerDay summarises each calendar date of points, oldest first
func PerDay(points analytics.Points) []DaySummary {
	groups := groupByDay(points)
	days := make([]DaySummary, 0, len(groups))
	for _, g := range groups {
		mean, std, lo, hi := describe(g.points.Values())
		golden, _ := GoldenHour(hourMeans(g.points))
		days = append(days, DaySummary{
			Date:           g.date,
			Weekday:        g.date.Weekday(),
			Count:          len(g.points),
			Mean:           mean,
			Min:            lo,
			Max:            hi,
			Std:            std,
			GoldenHour:     golden.Hour,
			GoldenHourMean: golden.Mean,
		})
	}
	return days
}

// HourlyByDay returns the per-hour means of each day, oldest day first
func HourlyByDay(points analytics.Points) []DayHours {
	groups := groupByDay(points)
	out := make([]DayHours, 0, len(groups))
	for _, g := range groups {
		out = append(out, DayHours{Date: g.date, Weekday: g.date.Weekday(), Hours: hourMeans(g.points)})
	}
	return out
}

// PerHourPattern returns the typical-day profile: statistics of every point
// falling in each hour of the day, across all days. Hours without data are
// omitted.
func PerHourPattern(points analytics.Points) []HourStats {
	var byHour [24][]float64
	for _, p := range points {
		h := p.Time.Hour()
		byHour[h] = append(byHour[h], p.Value)
	}

	out := make([]HourStats, 0, 24)
	for h, values := range byHour {
		if len(values) == 0 {
			continue
		}
		mean, std, _, _ := describe(values)
		hs := HourStats{Hour: h, Count: len(values), Mean: mean, Std: std, Lower: mean, Upper: mean}
		if !analytics.IsUndefined(std) {
			hs.Lower = math.Max(0, mean-std)
			hs.Upper = mean + std
		}
		out = append(out, hs)
	}
	return out
}

// DayOfWeekPattern aggregates points by day of the week, Monday first.
// Days without data are omitted.
func DayOfWeekPattern(points analytics.Points) []WeekdayStats {
	var byDay [7][]float64
	for _, p := range points {
		wd := p.Time.Weekday()
		byDay[wd] = append(byDay[wd], p.Value)
	}

	out := make([]WeekdayStats, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		values := byDay[wd]
		if len(values) == 0 {
			continue
		}
		mean, std, lo, hi := describe(values)
		out = append(out, WeekdayStats{Weekday: wd, Count: len(values), Mean: mean, Min: lo, Max: hi, Std: std})
	}
	return out
}
