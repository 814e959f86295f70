package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/comparison"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/summary"
	"github.com/sarenasr/Rappi-Dashboard/internal/cache"
	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

// View names, used as cache key prefixes
const (
	ViewSeries       = "series"
	ViewKPIs         = "kpis"
	ViewRolling      = "rolling"
	ViewAnomalies    = "anomalies"
	ViewDaily        = "daily"
	ViewHourly       = "hourly"
	ViewHeatmap      = "heatmap"
	ViewWeekdays     = "weekdays"
	ViewVelocity     = "velocity"
	ViewDistribution = "distribution"
	ViewCompare      = "compare"
	ViewBoxes        = "boxes"
	ViewDigest       = "digest"
	ViewDigestText   = "digest_text"
)

// AnalyticsService computes views over the current dataset. Encoded views
// are memoized under the view name, the dataset version and the query key.
type AnalyticsService struct {
	logger   *logging.Logger
	dataset  *DatasetService
	cache    cache.Cache
	defaults config.EngineConfig
}

// NewAnalyticsService creates a new AnalyticsService. defaults fills the
// parameters a request omits.
func NewAnalyticsService(logger *logging.Logger, dataset *DatasetService, c cache.Cache, defaults config.EngineConfig) *AnalyticsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AnalyticsService{
		logger:   logger,
		dataset:  dataset,
		cache:    c,
		defaults: defaults,
	}
}

// Limits returns the digest bounds configured in cfg
func Limits(cfg config.EngineConfig) summary.Limits {
	return summary.Limits{
		MaxDays:      cfg.MaxDays,
		MaxDrops:     cfg.MaxDrops,
		MaxAnomalies: cfg.MaxAnomalies,
		DropSpan:     cfg.DropSpan,
		DropPct:      cfg.DropPct,
	}
}

// ParseQuery validates req and fills omitted parameters from the configured
// defaults
func (s *AnalyticsService) ParseQuery(req *models.ViewRequest) (engine.Query, error) {
	if err := models.Validate(req); err != nil {
		return engine.Query{}, classify(err)
	}

	q := engine.DefaultQuery()
	q.Filter.HourStart = s.defaults.HourStart
	q.Filter.HourEnd = s.defaults.HourEnd
	if s.defaults.HourStart == 0 && s.defaults.HourEnd == 0 {
		// unset hour defaults mean the whole day
		q.Filter.HourEnd = 23
	}

	var err error
	if req.Start != "" {
		if q.Filter.DateStart, err = series.ParseDate(req.Start); err != nil {
			return engine.Query{}, classify(fmt.Errorf("%w: %v", filter.ErrInvalidSpec, err))
		}
	}
	if req.End != "" {
		if q.Filter.DateEnd, err = series.ParseDate(req.End); err != nil {
			return engine.Query{}, classify(fmt.Errorf("%w: %v", filter.ErrInvalidSpec, err))
		}
	}
	if req.HourStart != nil {
		q.Filter.HourStart = *req.HourStart
	}
	if req.HourEnd != nil {
		q.Filter.HourEnd = *req.HourEnd
	}
	if req.Weekdays != "" {
		if q.Filter.Weekdays, err = filter.ParseWeekdays(req.Weekdays); err != nil {
			return engine.Query{}, classify(err)
		}
	}

	granularity := req.Granularity
	if granularity == "" {
		granularity = s.defaults.Granularity
	}
	if q.Granularity, err = resample.ParseGranularity(granularity); err != nil {
		return engine.Query{}, classify(err)
	}

	q.Window = s.defaults.Window
	if req.Window != nil {
		q.Window = *req.Window
	}
	if s.defaults.Threshold > 0 {
		q.Threshold = s.defaults.Threshold
	}
	if req.Threshold != nil {
		q.Threshold = *req.Threshold
	}

	alignment := req.Alignment
	if alignment == "" {
		alignment = s.defaults.Alignment
	}
	if q.Alignment, err = anomaly.ParseAlignment(alignment); err != nil {
		return engine.Query{}, classify(err)
	}
	if q.Mode, err = comparison.ParseMode(req.Mode); err != nil {
		return engine.Query{}, classify(err)
	}
	q.Bins = req.Bins

	if err := q.Validate(); err != nil {
		return engine.Query{}, classify(err)
	}
	return q, nil
}

// memoize returns the cached encoding of a view, computing and storing it on
// a miss. Cache failures degrade to recomputing.
func (s *AnalyticsService) memoize(ctx context.Context, view string, q engine.Query,
	build func(*engine.Engine) (interface{}, error),
) ([]byte, error) {
	snap, err := s.dataset.Current()
	if err != nil {
		return nil, err
	}
	ctx = logging.WithGeneration(ctx, snap.Generation)
	key := cache.Key(view, snap.Version, q.Key())

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("View cache read failed", "view", view, "error", err)
	} else if ok {
		logging.DebugCtx(ctx, "View served from cache", "view", view)
		return data, nil
	}

	startTime := time.Now()
	result, err := build(snap.Engine)
	if err != nil {
		return nil, classify(err)
	}

	var data []byte
	if text, ok := result.(string); ok {
		data = []byte(text)
	} else if data, err = json.Marshal(result); err != nil {
		return nil, classify(err)
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("View cache write failed", "view", view, "error", err)
	}
	logging.DebugCtx(ctx, "View computed",
		"view", view,
		"bytes", len(data),
		"latency_ms", time.Since(startTime).Milliseconds())
	return data, nil
}

// Dataset describes the current dataset
func (s *AnalyticsService) Dataset() (models.DatasetResponse, error) {
	snap, err := s.dataset.Current()
	if err != nil {
		return models.DatasetResponse{}, err
	}
	return datasetResponse(snap, s.dataset.InstanceID()), nil
}

// Series returns the resampled series
func (s *AnalyticsService) Series(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewSeries, q, func(e *engine.Engine) (interface{}, error) {
		buckets, err := e.Buckets(q)
		if err != nil {
			return nil, err
		}
		return seriesResponse(q, buckets), nil
	})
}

// KPIs returns the KPI cards
func (s *AnalyticsService) KPIs(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewKPIs, q, func(e *engine.Engine) (interface{}, error) {
		v, err := e.KPIs(q)
		if err != nil {
			return nil, err
		}
		return kpiResponse(q, v), nil
	})
}

// Rolling returns the trend line
func (s *AnalyticsService) Rolling(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewRolling, q, func(e *engine.Engine) (interface{}, error) {
		v, err := e.Rolling(q)
		if err != nil {
			return nil, err
		}
		return rollingResponse(q, v), nil
	})
}

// Anomalies returns the detector output
func (s *AnalyticsService) Anomalies(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewAnomalies, q, func(e *engine.Engine) (interface{}, error) {
		v, err := e.Anomalies(q)
		if err != nil {
			return nil, err
		}
		return anomalyResponse(q, v), nil
	})
}

// Daily returns per-day statistics
func (s *AnalyticsService) Daily(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewDaily, q, func(e *engine.Engine) (interface{}, error) {
		days, err := e.Daily(q)
		if err != nil {
			return nil, err
		}
		return dailyResponse(q, days), nil
	})
}

// Hourly returns the typical-day profile
func (s *AnalyticsService) Hourly(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewHourly, q, func(e *engine.Engine) (interface{}, error) {
		hours, err := e.Hourly(q)
		if err != nil {
			return nil, err
		}
		return hourlyResponse(q, hours), nil
	})
}

// Heatmap returns per-hour means for every day
func (s *AnalyticsService) Heatmap(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewHeatmap, q, func(e *engine.Engine) (interface{}, error) {
		days, err := e.Heatmap(q)
		if err != nil {
			return nil, err
		}
		return heatmapResponse(q, days), nil
	})
}

// Weekdays returns the day-of-week profile
func (s *AnalyticsService) Weekdays(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewWeekdays, q, func(e *engine.Engine) (interface{}, error) {
		days, err := e.Weekdays(q)
		if err != nil {
			return nil, err
		}
		return weekdaysResponse(q, days), nil
	})
}

// Velocity returns consecutive changes
func (s *AnalyticsService) Velocity(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewVelocity, q, func(e *engine.Engine) (interface{}, error) {
		v, err := e.Velocity(q)
		if err != nil {
			return nil, err
		}
		return velocityResponse(q, v), nil
	})
}

// Distribution returns the value histogram
func (s *AnalyticsService) Distribution(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewDistribution, q, func(e *engine.Engine) (interface{}, error) {
		d, err := e.Distribution(q)
		if err != nil {
			return nil, err
		}
		return distributionResponse(q, d), nil
	})
}

// Compare returns the comparison selected by q.Mode
func (s *AnalyticsService) Compare(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewCompare, q, func(e *engine.Engine) (interface{}, error) {
		v, err := e.Compare(q)
		if err != nil {
			return nil, err
		}
		return compareResponse(q, v), nil
	})
}

// Boxes returns hourly box statistics
func (s *AnalyticsService) Boxes(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewBoxes, q, func(e *engine.Engine) (interface{}, error) {
		b, err := e.Boxes(q)
		if err != nil {
			return nil, err
		}
		return boxesResponse(q, b), nil
	})
}

// Digest returns the bounded summary as JSON
func (s *AnalyticsService) Digest(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewDigest, q, func(e *engine.Engine) (interface{}, error) {
		d, err := e.Digest(q)
		if err != nil {
			return nil, err
		}
		return digestResponse(q, d), nil
	})
}

// DigestText returns the bounded summary rendered as plain text
func (s *AnalyticsService) DigestText(ctx context.Context, q engine.Query) ([]byte, error) {
	return s.memoize(ctx, ViewDigestText, q, func(e *engine.Engine) (interface{}, error) {
		d, err := e.Digest(q)
		if err != nil {
			return nil, err
		}
		return summary.Render(d), nil
	})
}
