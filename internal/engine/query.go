package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/comparison"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
)

// ErrInvalidQuery is returned for a query with out of range parameters
var ErrInvalidQuery = errors.New("invalid query")

// Query is the full parameter tuple of a view. Two equal queries over the
// same store always produce the same output.
type Query struct {
	Filter      filter.Spec
	Granularity resample.Granularity
	Window      int     // rolling half-width in points; 0 selects the default
	Threshold   float64 // anomaly threshold in standard deviations
	Alignment   anomaly.Alignment
	Mode        comparison.Mode
	Bins        int // histogram bins; 0 selects the default
}

// DefaultQuery matches everything at the default granularity
func DefaultQuery() Query {
	return Query{
		Filter:      filter.All(),
		Granularity: resample.Default,
		Threshold:   DefaultThreshold,
		Alignment:   anomaly.Centered,
		Mode:        comparison.ModeNone,
	}
}

// Validate checks every parameter. Filter errors wrap filter.ErrInvalidSpec.
func (q Query) Validate() error {
	if err := q.Filter.Validate(); err != nil {
		return err
	}
	if _, err := q.Granularity.Width(); err != nil {
		return err
	}
	if q.Window < 0 {
		return fmt.Errorf("%w: window %d", ErrInvalidQuery, q.Window)
	}
	if q.Threshold < 0 || math.IsNaN(q.Threshold) || math.IsInf(q.Threshold, 0) {
		return fmt.Errorf("%w: threshold %v", ErrInvalidQuery, q.Threshold)
	}
	if _, err := anomaly.ParseAlignment(string(q.Alignment)); err != nil {
		return err
	}
	if _, err := comparison.ParseMode(string(q.Mode)); err != nil {
		return err
	}
	if q.Bins < 0 {
		return fmt.Errorf("%w: bins %d", ErrInvalidQuery, q.Bins)
	}
	return nil
}

// Key renders the query canonically. Equal queries have equal keys.
func (q Query) Key() string {
	alignment, _ := anomaly.ParseAlignment(string(q.Alignment))
	mode, _ := comparison.ParseMode(string(q.Mode))

	var b strings.Builder
	b.WriteString("f=")
	b.WriteString(q.Filter.String())
	b.WriteString(";g=")
	b.WriteString(string(q.Granularity))
	b.WriteString(";w=")
	b.WriteString(strconv.Itoa(q.Window))
	b.WriteString(";t=")
	b.WriteString(strconv.FormatFloat(q.Threshold, 'g', -1, 64))
	b.WriteString(";a=")
	b.WriteString(string(alignment))
	b.WriteString(";m=")
	b.WriteString(string(mode))
	b.WriteString(";b=")
	b.WriteString(strconv.Itoa(q.Bins))
	return b.String()
}
