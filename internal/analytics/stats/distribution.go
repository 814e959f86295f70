package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

// DefaultBins is the histogram resolution used when none is requested
const DefaultBins = 60

// Bin is one equal-width histogram bin, [Lower, Upper). The last bin also
// includes its upper edge.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Distribution is the value histogram of a view with its main percentiles
type Distribution struct {
	Count  int
	Bins   []Bin
	Median float64
	P5     float64
	P95    float64
	Q1     float64
	Q3     float64
}

// Histogram splits the value range of points into bins equal-width bins.
// bins <= 0 selects DefaultBins. When every value is equal a single bin is
// returned.
func Histogram(points analytics.Points, bins int) Distribution {
	if bins <= 0 {
		bins = DefaultBins
	}
	u := analytics.Undefined()
	d := Distribution{Count: len(points), Bins: []Bin{}, Median: u, P5: u, P95: u, Q1: u, Q3: u}
	if len(points) == 0 {
		return d
	}

	values := points.Values()
	lo, _ := mstats.Min(values)
	hi, _ := mstats.Max(values)

	d.Median, _ = mstats.Median(values)
	d.P5 = percentile(values, 5)
	d.P95 = percentile(values, 95)
	if q, err := mstats.Quartile(values); err == nil {
		d.Q1, d.Q3 = q.Q1, q.Q3
	}

	if hi == lo {
		d.Bins = []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
		return d
	}

	width := (hi - lo) / float64(bins)
	d.Bins = make([]Bin, bins)
	for i := range d.Bins {
		d.Bins[i].Lower = lo + float64(i)*width
		d.Bins[i].Upper = lo + float64(i+1)*width
	}
	d.Bins[bins-1].Upper = hi
	for _, v := range values {
		i := int(math.Floor((v - lo) / width))
		if i >= bins {
			i = bins - 1
		}
		d.Bins[i].Count++
	}
	return d
}
