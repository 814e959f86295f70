// Package filter selects the samples of a series that match a date range,
// an hour-of-day window and a set of weekdays.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// ErrInvalidSpec is returned for a Spec that cannot be applied
var ErrInvalidSpec = errors.New("invalid filter spec")

// WeekdaySet is a set of days of the week, one bit per time.Weekday
type WeekdaySet uint8

const (
	// AllWeekdays contains every day
	AllWeekdays WeekdaySet = 1<<7 - 1
	// WorkWeek contains Monday to Friday
	WorkWeek WeekdaySet = AllWeekdays &^ Weekend
	// Weekend contains Saturday and Sunday
	Weekend WeekdaySet = 1<<time.Saturday | 1<<time.Sunday
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// NewWeekdaySet returns the set holding days
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, d := range days {
		set |= 1 << d
	}
	return set
}

// ParseWeekdays parses a comma separated list such as "mon,tue,sat".
// "all", "weekdays" and "weekend" are accepted as shorthands.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
			continue
		case "all":
			set |= AllWeekdays
		case "weekdays":
			set |= WorkWeek
		case "weekend":
			set |= Weekend
		default:
			day, ok := weekdayNames[name]
			if !ok {
				return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSpec, part)
			}
			set |= 1 << day
		}
	}
	return set, nil
}

// Has reports whether d is in the set
func (w WeekdaySet) Has(d time.Weekday) bool {
	return w&(1<<d) != 0
}

// Weekdays lists the days in the set, Monday first
func (w WeekdaySet) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if w.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// String formats the set as a comma separated list of short names
func (w WeekdaySet) String() string {
	days := w.Weekdays()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = strings.ToLower(d.String()[:3])
	}
	return strings.Join(names, ",")
}

// Spec is a conjunction of date, hour and weekday predicates. Dates and hours
// are inclusive. A zero date leaves that side of the range open.
type Spec struct {
	DateStart series.Date
	DateEnd   series.Date
	HourStart int
	HourEnd   int
	Weekdays  WeekdaySet
}

// All returns the Spec that matches every sample
func All() Spec {
	return Spec{HourStart: 0, HourEnd: 23, Weekdays: AllWeekdays}
}

// Validate rejects specs with inverted or out of range bounds
func (s Spec) Validate() error {
	if s.HourStart < 0 || s.HourStart > 23 || s.HourEnd < 0 || s.HourEnd > 23 {
		return fmt.Errorf("%w: hours must be within 0-23, got %d-%d", ErrInvalidSpec, s.HourStart, s.HourEnd)
	}
	if s.HourStart > s.HourEnd {
		return fmt.Errorf("%w: hour_start %d after hour_end %d", ErrInvalidSpec, s.HourStart, s.HourEnd)
	}
	if !s.DateStart.IsZero() && !s.DateEnd.IsZero() && s.DateStart.After(s.DateEnd) {
		return fmt.Errorf("%w: date_start %s after date_end %s", ErrInvalidSpec, s.DateStart, s.DateEnd)
	}
	if s.Weekdays&^AllWeekdays != 0 {
		return fmt.Errorf("%w: weekday set %08b out of range", ErrInvalidSpec, uint8(s.Weekdays))
	}
	return nil
}

// Match reports whether t satisfies the spec, evaluated in t's location
func (s Spec) Match(t time.Time) bool {
	d := series.DateOf(t)
	if !s.DateStart.IsZero() && d.Before(s.DateStart) {
		return false
	}
	if !s.DateEnd.IsZero() && d.After(s.DateEnd) {
		return false
	}
	if h := t.Hour(); h < s.HourStart || h > s.HourEnd {
		return false
	}
	return s.Weekdays.Has(t.Weekday())
}

// Bounded reports whether both dates are set
func (s Spec) Bounded() bool {
	return !s.DateStart.IsZero() && !s.DateEnd.IsZero()
}

// DayCount returns the number of days covered by a bounded spec, 0 otherwise
func (s Spec) DayCount() int {
	if !s.Bounded() {
		return 0
	}
	return s.DateStart.DaysUntil(s.DateEnd) + 1
}

// Shift moves both dates by days. Open sides stay open.
func (s Spec) Shift(days int) Spec {
	out := s
	if !s.DateStart.IsZero() {
		out.DateStart = s.DateStart.AddDays(days)
	}
	if !s.DateEnd.IsZero() {
		out.DateEnd = s.DateEnd.AddDays(days)
	}
	return out
}

// String renders the spec in a canonical form usable as a cache key
func (s Spec) String() string {
	return fmt.Sprintf("%s..%s|h%02d-%02d|%s", s.DateStart, s.DateEnd, s.HourStart, s.HourEnd, s.Weekdays)
}

// Apply returns the samples of in that match spec, in their original order.
// An empty result is not an error.
func Apply(in series.Series, spec Spec) (series.Series, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make(series.Series, 0, len(in)/2)
	for _, sm := range in {
		if spec.Match(sm.Time) {
			out = append(out, sm)
		}
	}
	return out, nil
}
