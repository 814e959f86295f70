package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/cache"
	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		Granularity:  "5min",
		Threshold:    2.5,
		Alignment:    "centered",
		HourStart:    0,
		HourEnd:      23,
		MaxDays:      7,
		MaxDrops:     5,
		MaxAnomalies: 10,
		DropPct:      20,
	}
}

func newLoadedServices(t *testing.T) (*AnalyticsService, *cache.Memory) {
	t.Helper()
	path := writeFixture(t, fixtureSeries(3, 0))
	mem := cache.NewMemory(128)
	cfg := testEngineConfig()
	dataset := NewDatasetService(testLogger(), testDatasetConfig(path), Limits(cfg), mem, nil, "")
	if _, err := dataset.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewAnalyticsService(testLogger(), dataset, mem, cfg), mem
}

func intPtr(v int) *int { return &v }

func TestParseQuery_Defaults(t *testing.T) {
	svc, _ := newLoadedServices(t)

	q, err := svc.ParseQuery(&models.ViewRequest{})
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Granularity != resample.FiveMin {
		t.Errorf("expected 5min, got %s", q.Granularity)
	}
	if q.Threshold != 2.5 {
		t.Errorf("expected threshold 2.5, got %v", q.Threshold)
	}
	if q.Alignment != anomaly.Centered {
		t.Errorf("expected centered, got %s", q.Alignment)
	}
	if q.Filter.HourStart != 0 || q.Filter.HourEnd != 23 {
		t.Errorf("expected hours 0-23, got %d-%d", q.Filter.HourStart, q.Filter.HourEnd)
	}
	if !q.Filter.DateStart.IsZero() || !q.Filter.DateEnd.IsZero() {
		t.Error("expected an open date range")
	}
}

func TestParseQuery_UnsetHourDefaults(t *testing.T) {
	path := writeFixture(t, fixtureSeries(1, 0))
	dataset := NewDatasetService(testLogger(), testDatasetConfig(path), Limits(config.EngineConfig{}), nil, nil, "")
	svc := NewAnalyticsService(testLogger(), dataset, nil, config.EngineConfig{})

	q, err := svc.ParseQuery(&models.ViewRequest{})
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Filter.HourEnd != 23 {
		t.Errorf("expected the whole day, got hour_end %d", q.Filter.HourEnd)
	}
	if q.Granularity != resample.Default {
		t.Errorf("expected default granularity, got %s", q.Granularity)
	}
}

func TestParseQuery_Overrides(t *testing.T) {
	svc, _ := newLoadedServices(t)

	q, err := svc.ParseQuery(&models.ViewRequest{
		Start:       "2026-01-02",
		End:         "2026-01-03",
		HourStart:   intPtr(8),
		HourEnd:     intPtr(20),
		Weekdays:    "fri,sat",
		Granularity: "hourly",
		Window:      intPtr(4),
		Alignment:   "trailing",
		Mode:        "day_over_day",
		Bins:        12,
	})
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Granularity != resample.OneHour {
		t.Errorf("expected 1hour, got %s", q.Granularity)
	}
	if q.Filter.HourStart != 8 || q.Filter.HourEnd != 20 {
		t.Errorf("unexpected hours %d-%d", q.Filter.HourStart, q.Filter.HourEnd)
	}
	if q.Filter.DateStart.String() != "2026-01-02" || q.Filter.DateEnd.String() != "2026-01-03" {
		t.Errorf("unexpected dates %s..%s", q.Filter.DateStart, q.Filter.DateEnd)
	}
	if q.Window != 4 || q.Bins != 12 || q.Alignment != anomaly.Trailing {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestParseQuery_Errors(t *testing.T) {
	svc, _ := newLoadedServices(t)

	tests := []struct {
		name string
		req  models.ViewRequest
		code string
	}{
		{"bad date", models.ViewRequest{Start: "02/01/2026"}, CodeInvalidRequest},
		{"hour out of range", models.ViewRequest{HourEnd: intPtr(24)}, CodeInvalidRequest},
		{"unknown granularity", models.ViewRequest{Granularity: "2min"}, CodeInvalidRequest},
		{"unknown weekday", models.ViewRequest{Weekdays: "funday"}, CodeInvalidRequest},
		{"hours inverted", models.ViewRequest{HourStart: intPtr(20), HourEnd: intPtr(8)}, CodeInvalidSpec},
		{"dates inverted", models.ViewRequest{Start: "2026-01-03", End: "2026-01-02"}, CodeInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.ParseQuery(&req)
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("expected ServiceError, got %v", err)
			}
			if se.Code != tt.code {
				t.Errorf("expected %s, got %s (%s)", tt.code, se.Code, se.Message)
			}
		})
	}
}

func TestAnalyticsService_Series(t *testing.T) {
	svc, mem := newLoadedServices(t)
	q := engine.DefaultQuery()
	q.Granularity = resample.OneHour

	data, err := svc.Series(context.Background(), q)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	var resp models.SeriesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Buckets) != 72 {
		t.Errorf("expected 72 hourly buckets, got %d", len(resp.Buckets))
	}
	if resp.Samples != 3*24*60 {
		t.Errorf("expected %d samples, got %d", 3*24*60, resp.Samples)
	}
	if resp.Query.Granularity != "1hour" {
		t.Errorf("expected granularity echo 1hour, got %q", resp.Query.Granularity)
	}

	again, err := svc.Series(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("expected the memoized view to be identical")
	}
	if hits := mem.Stats()["hits"]; hits != uint64(1) {
		t.Errorf("expected 1 cache hit, got %v", hits)
	}
}

func TestAnalyticsService_CacheKeyedByQuery(t *testing.T) {
	svc, mem := newLoadedServices(t)
	ctx := context.Background()

	a := engine.DefaultQuery()
	b := engine.DefaultQuery()
	b.Filter.HourStart = 6

	if _, err := svc.KPIs(ctx, a); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.KPIs(ctx, b); err != nil {
		t.Fatal(err)
	}
	if mem.Len() != 2 {
		t.Errorf("expected 2 cached views, got %d", mem.Len())
	}
}

func TestAnalyticsService_AllViews(t *testing.T) {
	svc, _ := newLoadedServices(t)
	ctx := context.Background()
	q := engine.DefaultQuery()
	q.Granularity = resample.FifteenMin

	views := map[string]func(context.Context, engine.Query) ([]byte, error){
		ViewSeries:       svc.Series,
		ViewKPIs:         svc.KPIs,
		ViewRolling:      svc.Rolling,
		ViewAnomalies:    svc.Anomalies,
		ViewDaily:        svc.Daily,
		ViewHourly:       svc.Hourly,
		ViewHeatmap:      svc.Heatmap,
		ViewWeekdays:     svc.Weekdays,
		ViewVelocity:     svc.Velocity,
		ViewDistribution: svc.Distribution,
		ViewCompare:      svc.Compare,
		ViewBoxes:        svc.Boxes,
		ViewDigest:       svc.Digest,
	}
	for name, view := range views {
		t.Run(name, func(t *testing.T) {
			data, err := view(ctx, q)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if !json.Valid(data) {
				t.Errorf("%s returned invalid JSON: %s", name, data)
			}
		})
	}

	text, err := svc.DigestText(ctx, q)
	if err != nil {
		t.Fatalf("DigestText: %v", err)
	}
	if !strings.Contains(string(text), "STORE AVAILABILITY") {
		t.Errorf("unexpected digest text: %s", text)
	}
}

func TestAnalyticsService_DailyValues(t *testing.T) {
	svc, _ := newLoadedServices(t)

	data, err := svc.Daily(context.Background(), engine.DefaultQuery())
	if err != nil {
		t.Fatal(err)
	}
	var resp models.DailyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.Days))
	}
	if resp.Days[0].Date != "2026-01-02" {
		t.Errorf("expected first day 2026-01-02, got %s", resp.Days[0].Date)
	}
}

func TestAnalyticsService_EmptySelection(t *testing.T) {
	svc, _ := newLoadedServices(t)
	q := engine.DefaultQuery()
	// the fixture covers Friday to Sunday only
	weekdays, err := filter.ParseWeekdays("mon")
	if err != nil {
		t.Fatal(err)
	}
	q.Filter.Weekdays = weekdays

	data, err := svc.KPIs(context.Background(), q)
	if err != nil {
		t.Fatalf("KPIs: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("invalid JSON for an empty selection: %s", data)
	}
}

func TestAnalyticsService_NotLoaded(t *testing.T) {
	dataset := NewDatasetService(testLogger(), testDatasetConfig("unused.csv"), Limits(testEngineConfig()), nil, nil, "")
	svc := NewAnalyticsService(testLogger(), dataset, nil, testEngineConfig())

	_, err := svc.Series(context.Background(), engine.DefaultQuery())
	var se *ServiceError
	if !errors.As(err, &se) || se.Code != CodeDatasetNotLoaded {
		t.Fatalf("expected %s, got %v", CodeDatasetNotLoaded, err)
	}
	if _, err := svc.Dataset(); err == nil {
		t.Error("expected Dataset to fail before the first load")
	}
}

func TestAnalyticsService_Dataset(t *testing.T) {
	svc, _ := newLoadedServices(t)

	resp, err := svc.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	if resp.Generation != 1 || resp.Samples != 3*24*60 {
		t.Errorf("unexpected dataset response %+v", resp)
	}
	if resp.InstanceID == "" {
		t.Error("expected an instance id")
	}
}
