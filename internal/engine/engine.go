// Package engine wires the analytics stages together: store, filter,
// resample, then the stats, anomaly, comparison and summary builders. Every
// view is a pure function of the store and a Query.
package engine

import (
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/comparison"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/stats"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/summary"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/window"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

const (
	// DefaultThreshold is the anomaly threshold used by DefaultQuery
	DefaultThreshold = 2.5
	// DefaultAnomalyWindow is the anomaly half-width when the query has none
	DefaultAnomalyWindow = 6
	// VelocityGranularity is the bucket width velocity is measured at
	VelocityGranularity = resample.FiveMin
)

// Engine computes views over one immutable store
type Engine struct {
	store  *series.Store
	limits summary.Limits
}

// New returns an engine over store. Zero limits fields take their defaults.
func New(store *series.Store, limits summary.Limits) *Engine {
	return &Engine{store: store, limits: limits}
}

// Store returns the underlying store
func (e *Engine) Store() *series.Store {
	return e.store
}

// Filtered returns the raw samples matching q.Filter
func (e *Engine) Filtered(q Query) (series.Series, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return filter.Apply(e.store.Series(), q.Filter)
}

// Buckets returns the filtered samples resampled at q.Granularity
func (e *Engine) Buckets(q Query) ([]resample.Bucket, error) {
	s, err := e.Filtered(q)
	if err != nil {
		return nil, err
	}
	return resample.Resample(s, q.Granularity)
}

func (e *Engine) rawPoints(q Query) (analytics.Points, error) {
	s, err := e.Filtered(q)
	if err != nil {
		return nil, err
	}
	return analytics.FromSeries(s), nil
}

func (e *Engine) pointsAt(q Query, g resample.Granularity) (analytics.Points, error) {
	s, err := e.Filtered(q)
	if err != nil {
		return nil, err
	}
	buckets, err := resample.Resample(s, g)
	if err != nil {
		return nil, err
	}
	return resample.Points(buckets), nil
}

// KPIView holds the KPI cards of a view
type KPIView struct {
	KPIs                   stats.KPIs
	CoefficientOfVariation float64
	Delta                  stats.PeriodDelta
}

// KPIs computes the headline numbers at q.Granularity and the change
// against the previous period on raw samples.
func (e *Engine) KPIs(q Query) (KPIView, error) {
	points, err := e.pointsAt(q, q.Granularity)
	if err != nil {
		return KPIView{}, err
	}
	delta, err := stats.DeltaVsPreviousPeriod(e.store.Series(), q.Filter)
	if err != nil {
		return KPIView{}, err
	}
	return KPIView{
		KPIs:                   stats.ComputeKPIs(points),
		CoefficientOfVariation: stats.CoefficientOfVariation(points),
		Delta:                  delta,
	}, nil
}

// RollingView is the series at q.Granularity with its centered rolling moments
type RollingView struct {
	Window  int
	Points  analytics.Points
	Moments []window.Moments
}

// Rolling computes the trend line. A zero q.Window scales with the data.
func (e *Engine) Rolling(q Query) (RollingView, error) {
	points, err := e.pointsAt(q, q.Granularity)
	if err != nil {
		return RollingView{}, err
	}
	w := q.Window
	if w <= 0 {
		w = stats.AutoWindow(len(points))
	}
	return RollingView{Window: w, Points: points, Moments: stats.Rolling(points, w)}, nil
}

// AnomalyView is the detector output with the parameters it ran with
type AnomalyView struct {
	Granularity resample.Granularity
	Config      anomaly.Config
	Points      []anomaly.Point
}

// AnomalyGranularity returns the granularity anomalies are computed at for a
// view at g. Raw and 1min views are too noisy and are analysed at 5min.
func AnomalyGranularity(g resample.Granularity) resample.Granularity {
	if g == resample.Raw || g == resample.OneMin {
		return resample.FiveMin
	}
	return g
}

// Anomalies runs the rolling z-score detector
func (e *Engine) Anomalies(q Query) (AnomalyView, error) {
	g := AnomalyGranularity(q.Granularity)
	points, err := e.pointsAt(q, g)
	if err != nil {
		return AnomalyView{}, err
	}
	cfg := anomaly.Config{Window: q.Window, Threshold: q.Threshold, Alignment: q.Alignment}
	if cfg.Window <= 0 {
		cfg.Window = DefaultAnomalyWindow
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Alignment == "" {
		cfg.Alignment = anomaly.Centered
	}
	results, err := anomaly.Detect(points, cfg)
	if err != nil {
		return AnomalyView{}, err
	}
	return AnomalyView{Granularity: g, Config: cfg, Points: results}, nil
}

// Daily summarises each day of the filtered raw samples
func (e *Engine) Daily(q Query) ([]stats.DaySummary, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return nil, err
	}
	return stats.PerDay(points), nil
}

// Hourly returns the typical-day profile of the filtered raw samples
func (e *Engine) Hourly(q Query) ([]stats.HourStats, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return nil, err
	}
	return stats.PerHourPattern(points), nil
}

// Heatmap returns per-hour means for every day
func (e *Engine) Heatmap(q Query) ([]stats.DayHours, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return nil, err
	}
	return stats.HourlyByDay(points), nil
}

// Weekdays returns the day-of-week profile
func (e *Engine) Weekdays(q Query) ([]stats.WeekdayStats, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return nil, err
	}
	return stats.DayOfWeekPattern(points), nil
}

// Velocity returns consecutive changes between 5 minute buckets
func (e *Engine) Velocity(q Query) (stats.VelocityReport, error) {
	points, err := e.pointsAt(q, VelocityGranularity)
	if err != nil {
		return stats.VelocityReport{}, err
	}
	return stats.Velocity(points), nil
}

// Distribution returns the histogram of the filtered raw values
func (e *Engine) Distribution(q Query) (stats.Distribution, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return stats.Distribution{}, err
	}
	return stats.Histogram(points, q.Bins), nil
}

// ComparisonView holds whichever comparison q.Mode selects
type ComparisonView struct {
	Mode    comparison.Mode
	Overlay *comparison.Overlay
	Days    []comparison.DayTrace
}

// Compare builds the comparison selected by q.Mode at q.Granularity
func (e *Engine) Compare(q Query) (ComparisonView, error) {
	s, err := e.Filtered(q)
	if err != nil {
		return ComparisonView{}, err
	}
	mode, _ := comparison.ParseMode(string(q.Mode))
	view := ComparisonView{Mode: mode}

	switch mode {
	case comparison.ModeWeekdayWeekend:
		overlay, err := comparison.WeekdayVsWeekend(s, q.Granularity)
		if err != nil {
			return ComparisonView{}, err
		}
		view.Overlay = &overlay
	case comparison.ModeDayOverDay:
		days, err := comparison.DayOverDay(s, q.Granularity)
		if err != nil {
			return ComparisonView{}, err
		}
		view.Days = days
	}
	return view, nil
}

// Boxes returns the hourly weekday and weekend box statistics
func (e *Engine) Boxes(q Query) (comparison.Boxes, error) {
	s, err := e.Filtered(q)
	if err != nil {
		return comparison.Boxes{}, err
	}
	return comparison.HourlyBoxes(s), nil
}

// Digest builds the bounded summary of the filtered data. Drops are found on
// raw samples; anomalies come from the same detector run as Anomalies.
func (e *Engine) Digest(q Query) (summary.Digest, error) {
	points, err := e.rawPoints(q)
	if err != nil {
		return summary.Digest{}, err
	}
	anomalies, err := e.Anomalies(q)
	if err != nil {
		return summary.Digest{}, err
	}
	return summary.Build(summary.Input{
		Points:    points,
		Days:      stats.PerDay(points),
		Hourly:    stats.HourlyByDay(points),
		Anomalies: anomalies.Points,
		Threshold: anomalies.Config.Threshold,
	}, e.limits), nil
}
