// Package window computes mean and standard deviation over sliding windows in
// a single pass. Each step adds the value entering the window and removes the
// value leaving it, so a full pass is O(n) whatever the window width.
package window

import (
	"math"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

// flatTolerance is the relative standard deviation under which a window is
// treated as flat. Sliding sums pick up rounding noise that would otherwise
// surface as a tiny non-zero deviation.
const flatTolerance = 1e-9

// Moments are the statistics of one window
type Moments struct {
	Count int
	Mean  float64
	Std   float64 // sample standard deviation, undefined for Count < 2
}

// Accumulator keeps running sums for a window. Values are stored relative to
// a fixed shift so that a run of identical values sums to exactly zero.
type Accumulator struct {
	shift      float64
	count      int
	sum        float64
	sumSquares float64
}

// NewAccumulator returns an accumulator centred on shift. Any value works;
// a value close to the data (such as the first one) keeps rounding low.
func NewAccumulator(shift float64) *Accumulator {
	return &Accumulator{shift: shift}
}

// Add puts v into the window
func (a *Accumulator) Add(v float64) {
	d := v - a.shift
	a.count++
	a.sum += d
	a.sumSquares += d * d
}

// Remove takes v, previously added, out of the window
func (a *Accumulator) Remove(v float64) {
	d := v - a.shift
	a.count--
	a.sum -= d
	a.sumSquares -= d * d
	if a.count == 0 {
		a.sum, a.sumSquares = 0, 0
	}
}

// Count returns the number of values in the window
func (a *Accumulator) Count() int {
	return a.count
}

// Moments returns the current window statistics
func (a *Accumulator) Moments() Moments {
	if a.count == 0 {
		return Moments{Mean: analytics.Undefined(), Std: analytics.Undefined()}
	}
	n := float64(a.count)
	offset := a.sum / n
	m := Moments{Count: a.count, Mean: a.shift + offset, Std: analytics.Undefined()}
	if a.count < 2 {
		return m
	}

	variance := (a.sumSquares - a.sum*offset) / (n - 1)
	if variance <= 0 {
		m.Std = 0
		return m
	}
	std := math.Sqrt(variance)
	if std < flatTolerance*math.Max(1, math.Abs(m.Mean)) {
		std = 0
	}
	m.Std = std
	return m
}

// Centered returns, for every index i, the moments of values[i-half : i+half+1]
// clipped to the slice bounds. half must be non-negative.
func Centered(values []float64, half int) []Moments {
	n := len(values)
	out := make([]Moments, n)
	if n == 0 {
		return out
	}
	if half < 0 {
		half = 0
	}

	acc := NewAccumulator(values[0])
	for j := 0; j <= half && j < n; j++ {
		acc.Add(values[j])
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if j := i + half; j < n {
				acc.Add(values[j])
			}
			if j := i - half - 1; j >= 0 {
				acc.Remove(values[j])
			}
		}
		out[i] = acc.Moments()
	}
	return out
}

// Trailing returns, for every index i, the moments of values[i-lookback : i+1]
// clipped at the start. Only past and present values are used.
func Trailing(values []float64, lookback int) []Moments {
	n := len(values)
	out := make([]Moments, n)
	if n == 0 {
		return out
	}
	if lookback < 0 {
		lookback = 0
	}

	acc := NewAccumulator(values[0])
	for i := 0; i < n; i++ {
		acc.Add(values[i])
		if j := i - lookback - 1; j >= 0 {
			acc.Remove(values[j])
		}
		out[i] = acc.Moments()
	}
	return out
}
