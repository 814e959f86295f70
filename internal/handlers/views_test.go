package handlers

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/cache"
	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

// writeTestDataset writes two days of per-minute samples starting on a
// Saturday
func writeTestDataset(t *testing.T) string {
	t.Helper()
	loc := time.FixedZone("COT", -5*3600)
	start := time.Date(2026, 1, 3, 0, 0, 0, 0, loc)

	s := make(series.Series, 0, 2*24*60)
	for i := 0; i < 2*24*60; i++ {
		ts := start.Add(time.Duration(i) * time.Minute)
		v := 4000 + 2000*math.Sin(float64(ts.Hour())/24*2*math.Pi)
		s = append(s, series.Sample{Time: ts, Value: int64(v)})
	}

	path := filepath.Join(t.TempDir(), "availability.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := series.WriteCSV(f, s); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, load bool) (*fiber.App, *services.DatasetService) {
	t.Helper()
	logger := logging.NewDevelopment()
	engineCfg := config.EngineConfig{Granularity: "5min", Threshold: 2.5, Alignment: "centered", HourEnd: 23}
	datasetCfg := config.DatasetConfig{Path: writeTestDataset(t), Timezone: "-05:00"}

	mem := cache.NewMemory(64)
	dataset := services.NewDatasetService(logger, datasetCfg, services.Limits(engineCfg), mem, nil, "")
	if load {
		if _, err := dataset.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	analytics := services.NewAnalyticsService(logger, dataset, mem, engineCfg)
	h := New(logger, dataset, analytics)

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/v1/dataset", h.Dataset)
	app.Get("/v1/series", h.Series)
	app.Get("/v1/kpis", h.KPIs)
	app.Get("/v1/rolling", h.Rolling)
	app.Get("/v1/anomalies", h.Anomalies)
	app.Get("/v1/daily", h.Daily)
	app.Get("/v1/hourly", h.Hourly)
	app.Get("/v1/heatmap", h.Heatmap)
	app.Get("/v1/weekdays", h.Weekdays)
	app.Get("/v1/velocity", h.Velocity)
	app.Get("/v1/distribution", h.Distribution)
	app.Get("/v1/compare", h.Compare)
	app.Get("/v1/boxes", h.Boxes)
	app.Get("/v1/digest", h.Digest)
	app.Get("/v1/digest/text", h.DigestText)
	app.Post("/admin/reload", h.Reload)
	return app, dataset
}

// doJSON performs a request and decodes the JSON body into out
func doJSON(t *testing.T, app *fiber.App, method, target string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", body, err)
		}
	}
	return resp.StatusCode
}

func TestHandler_Series(t *testing.T) {
	app, _ := newTestApp(t, true)

	var resp models.SeriesResponse
	status := doJSON(t, app, "GET", "/v1/series?granularity=1hour&hour_start=8&hour_end=11", &resp)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, status)
	}
	// two days, four hours each
	if len(resp.Buckets) != 8 {
		t.Errorf("Expected 8 buckets, got %d", len(resp.Buckets))
	}
	if resp.Query.HourStart != 8 || resp.Query.HourEnd != 11 {
		t.Errorf("Unexpected query echo %+v", resp.Query)
	}
}

func TestHandler_Views(t *testing.T) {
	app, _ := newTestApp(t, true)

	paths := []string{
		"/v1/series",
		"/v1/kpis",
		"/v1/rolling?window=3",
		"/v1/anomalies?granularity=15min&threshold=2",
		"/v1/daily",
		"/v1/hourly",
		"/v1/heatmap",
		"/v1/weekdays",
		"/v1/velocity",
		"/v1/distribution?bins=10",
		"/v1/compare?mode=weekday_weekend",
		"/v1/compare?mode=day_over_day",
		"/v1/boxes",
		"/v1/digest",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("Failed to perform request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
		})
	}
}

func TestHandler_DigestText(t *testing.T) {
	app, _ := newTestApp(t, true)

	req := httptest.NewRequest("GET", "/v1/digest/text", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, fiber.MIMETextPlain) {
		t.Errorf("Expected text content type, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "STORE AVAILABILITY DATA SUMMARY") {
		t.Errorf("Unexpected digest body: %s", body)
	}
}

func TestHandler_InvalidParameters(t *testing.T) {
	app, _ := newTestApp(t, true)

	tests := []struct {
		path string
		code string
	}{
		{"/v1/series?granularity=2min", services.CodeInvalidRequest},
		{"/v1/series?hour_start=25", services.CodeInvalidRequest},
		{"/v1/series?hour_start=abc", services.CodeInvalidRequest},
		{"/v1/series?start=2026-01-04&end=2026-01-03", services.CodeInvalidSpec},
		{"/v1/anomalies?alignment=sideways", services.CodeInvalidRequest},
		{"/v1/compare?mode=yearly", services.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var errResp models.ErrorResponse
			status := doJSON(t, app, "GET", tt.path, &errResp)
			if status != fiber.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", status)
			}
			if errResp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, errResp.Error.Code)
			}
		})
	}
}

func TestHandler_NotLoaded(t *testing.T) {
	app, _ := newTestApp(t, false)

	var errResp models.ErrorResponse
	status := doJSON(t, app, "GET", "/v1/kpis", &errResp)
	if status != fiber.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", status)
	}
	if errResp.Error.Code != services.CodeDatasetNotLoaded {
		t.Errorf("Expected code %s, got %s", services.CodeDatasetNotLoaded, errResp.Error.Code)
	}

	status = doJSON(t, app, "GET", "/v1/dataset", &errResp)
	if status != fiber.StatusServiceUnavailable {
		t.Errorf("Expected status 503 for dataset, got %d", status)
	}
}

func TestHandler_Reload(t *testing.T) {
	app, dataset := newTestApp(t, false)

	var reloadResp models.ReloadResponse
	status := doJSON(t, app, "POST", "/admin/reload", &reloadResp)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if !reloadResp.Success || reloadResp.Dataset.Generation != 1 {
		t.Errorf("Unexpected reload response %+v", reloadResp)
	}
	if reloadResp.Dataset.Samples != 2*24*60 {
		t.Errorf("Expected %d samples, got %d", 2*24*60, reloadResp.Dataset.Samples)
	}

	var datasetResp models.DatasetResponse
	if status := doJSON(t, app, "GET", "/v1/dataset", &datasetResp); status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if datasetResp.InstanceID != dataset.InstanceID() {
		t.Errorf("Expected instance %s, got %s", dataset.InstanceID(), datasetResp.InstanceID)
	}
}

func TestHandler_ReloadFailure(t *testing.T) {
	logger := logging.NewDevelopment()
	dataset := services.NewDatasetService(logger, config.DatasetConfig{Path: filepath.Join(t.TempDir(), "missing.csv")},
		services.Limits(config.EngineConfig{}), nil, nil, "")
	h := New(logger, dataset, services.NewAnalyticsService(logger, dataset, nil, config.EngineConfig{}))

	app := fiber.New()
	app.Post("/admin/reload", h.Reload)

	var errResp models.ErrorResponse
	status := doJSON(t, app, "POST", "/admin/reload", &errResp)
	if status != fiber.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", status)
	}
	if errResp.Error.Code != services.CodeReloadFailed {
		t.Errorf("Expected code %s, got %s", services.CodeReloadFailed, errResp.Error.Code)
	}
}
