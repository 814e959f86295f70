// Package series holds the raw availability series: samples, the immutable
// in-memory store and the loaders that feed it.
//
// The analytics packages assume a Store built by NewStore: values are
// non-negative and timestamps strictly increasing. Anything else must be
// rejected here, at load time.
package series

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNegativeValue is returned when a sample carries a negative count.
	ErrNegativeValue = errors.New("negative sample value")
	// ErrUnknownPolicy is returned for an unsupported duplicate policy.
	ErrUnknownPolicy = errors.New("unknown duplicate policy")
)

// Sample is a single availability reading.
type Sample struct {
	Time  time.Time
	Value int64
}

// Series is an ordered run of samples. Stages never modify a Series they
// receive; they always return a new one.
type Series []Sample

// Len returns the number of samples
func (s Series) Len() int {
	return len(s)
}

// Values returns the sample values as float64
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, sm := range s {
		values[i] = float64(sm.Value)
	}
	return values
}

// Span returns the first and last timestamps. ok is false for an empty series.
func (s Series) Span() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s[0].Time, s[len(s)-1].Time, true
}

// Clone returns a copy that shares nothing with s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// DuplicatePolicy decides which sample survives when two share a timestamp.
type DuplicatePolicy string

const (
	// LastWriteWins keeps the sample that appears last in the input.
	LastWriteWins DuplicatePolicy = "last_write_wins"
	// KeepFirst keeps the sample that appears first in the input.
	KeepFirst DuplicatePolicy = "keep_first"
)

// ParseDuplicatePolicy parses a policy name. Empty means LastWriteWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", LastWriteWins:
		return LastWriteWins, nil
	case KeepFirst:
		return KeepFirst, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Store is the immutable raw series. It is built once per load and only
// read afterwards.
type Store struct {
	series     Series
	location   *time.Location
	policy     DuplicatePolicy
	duplicates int
}

// NewStore validates, orders and deduplicates samples. Every timestamp is
// moved into loc, which is the location used for all calendar arithmetic
// (dates, hours, weekdays). A nil loc means UTC.
func NewStore(samples []Sample, loc *time.Location, policy DuplicatePolicy) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}
	policy, err := ParseDuplicatePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	ordered := make(Series, len(samples))
	for i, sm := range samples {
		if sm.Value < 0 {
			return nil, fmt.Errorf("%w: %d at %s", ErrNegativeValue, sm.Value, sm.Time.Format(time.RFC3339))
		}
		ordered[i] = Sample{Time: sm.Time.In(loc), Value: sm.Value}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	out := ordered[:0]
	duplicates := 0
	for _, sm := range ordered {
		if n := len(out); n > 0 && out[n-1].Time.Equal(sm.Time) {
			duplicates++
			if policy == LastWriteWins {
				out[n-1] = sm
			}
			continue
		}
		out = append(out, sm)
	}

	return &Store{
		series:     out,
		location:   loc,
		policy:     policy,
		duplicates: duplicates,
	}, nil
}

// Series returns the stored samples. Callers must treat the result as
// read-only.
func (s *Store) Series() Series {
	return s.series
}

// Len returns the number of stored samples
func (s *Store) Len() int {
	return len(s.series)
}

// Location returns the analysis location
func (s *Store) Location() *time.Location {
	return s.location
}

// Policy returns the duplicate policy the store was built with
func (s *Store) Policy() DuplicatePolicy {
	return s.policy
}

// Duplicates returns how many input samples were discarded as duplicates
func (s *Store) Duplicates() int {
	return s.duplicates
}

// Span returns the first and last stored timestamps
func (s *Store) Span() (first, last time.Time, ok bool) {
	return s.series.Span()
}
