package router

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

const (
	readerKey = "reader-key-0123456789abcdefghijklmn"
	adminKey  = "admin-key-0123456789abcdefghijklmno"
)

func newTestRouter(t *testing.T, auth config.AuthConfig) *fiber.App {
	t.Helper()
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, 0, 24*60)
	for i := 0; i < 24*60; i++ {
		s = append(s, series.Sample{Time: start.Add(time.Duration(i) * time.Minute), Value: int64(1000 + i)})
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := series.WriteCSV(f, s); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	cfg := config.DefaultConfig()
	cfg.Dataset.Path = path
	cfg.Dataset.Timezone = "UTC"
	cfg.Auth = auth

	logger := logging.NewDevelopment()
	dataset := services.NewDatasetService(logger, cfg.Dataset, services.Limits(cfg.Engine), nil, nil, "")
	if _, err := dataset.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	analytics := services.NewAnalyticsService(logger, dataset, nil, cfg.Engine)
	return New(logger, dataset, analytics, *cfg)
}

func request(t *testing.T, app *fiber.App, method, target, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRouter_Routes(t *testing.T) {
	app := newTestRouter(t, config.AuthConfig{})

	routes := []string{
		"/health",
		"/v1/dataset",
		"/v1/series",
		"/v1/kpis",
		"/v1/rolling",
		"/v1/anomalies",
		"/v1/daily",
		"/v1/hourly",
		"/v1/heatmap",
		"/v1/weekdays",
		"/v1/velocity",
		"/v1/distribution",
		"/v1/compare",
		"/v1/boxes",
		"/v1/digest",
		"/v1/digest/text",
	}
	for _, route := range routes {
		if status, body := request(t, app, "GET", route, ""); status != fiber.StatusOK {
			t.Errorf("GET %s: expected 200, got %d: %s", route, status, body)
		}
	}

	if status, _ := request(t, app, "POST", "/admin/reload", ""); status != fiber.StatusOK {
		t.Errorf("POST /admin/reload: expected 200, got %d", status)
	}
	if status, body := request(t, app, "GET", "/v1/unknown", ""); status != fiber.StatusNotFound || !strings.Contains(body, "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND, got %d: %s", status, body)
	}
}

func TestRouter_Auth(t *testing.T) {
	app := newTestRouter(t, config.AuthConfig{
		Enabled:   true,
		APIKeys:   []string{readerKey},
		AdminKeys: []string{adminKey},
	})

	tests := []struct {
		method, path, key string
		want              int
	}{
		{"GET", "/health", "", fiber.StatusOK},
		{"GET", "/v1/kpis", "", fiber.StatusUnauthorized},
		{"GET", "/v1/kpis", readerKey, fiber.StatusOK},
		{"POST", "/admin/reload", readerKey, fiber.StatusUnauthorized},
		{"POST", "/admin/reload", adminKey, fiber.StatusOK},
	}
	for _, tt := range tests {
		if status, body := request(t, app, tt.method, tt.path, tt.key); status != tt.want {
			t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, status, body)
		}
	}
}
