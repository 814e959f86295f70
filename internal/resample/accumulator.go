package resample

import (
	"math"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

// Accumulator holds the running aggregate of one bucket. Sum and SumSquares
// are kept relative to Shift, so a bucket of identical values has exactly
// zero variance.
type Accumulator struct {
	Shift      float64
	Count      int64
	Sum        float64
	SumSquares float64
	Min        float64
	Max        float64
}

// NewAccumulator returns an empty accumulator. shift should be close to the
// values that will be added, typically the first one.
func NewAccumulator(shift float64) *Accumulator {
	return &Accumulator{Shift: shift, Min: math.Inf(1), Max: math.Inf(-1)}
}

// AddValue adds a single value to the aggregation
func (a *Accumulator) AddValue(value float64) {
	d := value - a.Shift
	a.Count++
	a.Sum += d
	a.SumSquares += d * d
	if value < a.Min {
		a.Min = value
	}
	if value > a.Max {
		a.Max = value
	}
}

// Merge combines another accumulator into this one
func (a *Accumulator) Merge(other *Accumulator) {
	if other.Count == 0 {
		return
	}
	// re-base other's sums onto our shift
	delta := other.Shift - a.Shift
	n := float64(other.Count)
	a.SumSquares += other.SumSquares + 2*delta*other.Sum + n*delta*delta
	a.Sum += other.Sum + n*delta
	a.Count += other.Count
	a.Min = math.Min(a.Min, other.Min)
	a.Max = math.Max(a.Max, other.Max)
}

// Mean returns the average, undefined when empty
func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return analytics.Undefined()
	}
	return a.Shift + a.Sum/float64(a.Count)
}

// Variance returns the sample variance (n-1), undefined for fewer than two values
func (a *Accumulator) Variance() float64 {
	if a.Count < 2 {
		return analytics.Undefined()
	}
	n := float64(a.Count)
	v := (a.SumSquares - a.Sum*a.Sum/n) / (n - 1)
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the sample standard deviation
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}
