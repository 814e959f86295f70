// Package anomaly flags points that deviate from their local rolling mean by
// more than a caller supplied number of standard deviations.
package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

var (
	ErrInvalidThreshold = errors.New("threshold must be greater than zero")
	ErrInvalidWindow    = errors.New("window must be at least one point")
	ErrUnknownAlignment = errors.New("unknown window alignment")
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike AnomalyType = "spike" // above the expected band
	AnomalyTypeDrop  AnomalyType = "drop"  // below the expected band
)

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Alignment decides which neighbours form a point's window
type Alignment string

const (
	// Centered uses Window points on each side. Suited to retrospective
	// analysis; it looks at future points.
	Centered Alignment = "centered"
	// Trailing uses the Window points before the evaluated one. Suited to
	// live monitoring; it never looks ahead.
	Trailing Alignment = "trailing"
)

// ParseAlignment parses an alignment name. Empty means Centered.
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(s) {
	case "", Centered:
		return Centered, nil
	case Trailing:
		return Trailing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlignment, s)
	}
}

// Config holds configuration for anomaly detection
type Config struct {
	// Window is the number of neighbouring points on each side (centered)
	// or before the point (trailing). The point itself is always included.
	Window int

	// Threshold is the number of standard deviations beyond which a point
	// is flagged. There is no default.
	Threshold float64

	Alignment Alignment
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !(c.Threshold > 0) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Threshold)
	}
	if c.Window < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, c.Window)
	}
	_, err := ParseAlignment(string(c.Alignment))
	return err
}

// Point is one evaluated point
type Point struct {
	Time        time.Time
	Value       float64
	RollingMean float64
	RollingStd  float64 // undefined when the window holds a single point
	ZScore      float64 // 0 when the window has no deviation
	IsAnomaly   bool
	Type        AnomalyType // set for anomalies only
	Expected    *Range      // mean ± threshold·std, nil when std is 0 or undefined
}

// Detector evaluates every point of a series
type Detector interface {
	// Name returns the algorithm name
	Name() string

	// Detect returns one Point per input point, in input order
	Detect(points analytics.Points, config Config) ([]Point, error)
}

// Registry holds available anomaly detectors
var detectorRegistry = make(map[string]Detector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector Detector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (Detector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown anomaly detector: %s", name)
}

// ListDetectors returns the registered detector names, sorted
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect runs the rolling z-score detector matching config.Alignment
func Detect(points analytics.Points, config Config) ([]Point, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	name := RollingZScoreName
	if config.Alignment == Trailing {
		name = TrailingZScoreName
	}
	detector, err := GetDetector(name)
	if err != nil {
		return nil, err
	}
	return detector.Detect(points, config)
}

// Flagged returns the anomalous points, in time order
func Flagged(points []Point) []Point {
	out := make([]Point, 0)
	for _, p := range points {
		if p.IsAnomaly {
			out = append(out, p)
		}
	}
	return out
}

// Strongest returns up to n anomalous points with the largest |z|, in time
// order. It also returns how many anomalies were left out.
func Strongest(points []Point, n int) ([]Point, int) {
	flagged := Flagged(points)
	if n < 0 {
		n = 0
	}
	if len(flagged) <= n {
		return flagged, 0
	}

	ranked := make([]Point, len(flagged))
	copy(ranked, flagged)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].ZScore) > math.Abs(ranked[j].ZScore)
	})
	top := ranked[:n]
	sort.SliceStable(top, func(i, j int) bool { return top[i].Time.Before(top[j].Time) })
	return top, len(flagged) - n
}
