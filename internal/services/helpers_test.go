package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

var bogota = time.FixedZone("COT", -5*3600)

// fixtureStart is a Friday, so the three fixture days are Fri, Sat, Sun
var fixtureStart = time.Date(2026, 1, 2, 0, 0, 0, 0, bogota)

// fixtureSeries returns per-minute samples following a daily curve
func fixtureSeries(days int, offset int64) series.Series {
	s := make(series.Series, 0, days*24*60)
	for i := 0; i < days*24*60; i++ {
		ts := fixtureStart.Add(time.Duration(i) * time.Minute)
		hour := float64(ts.Hour()) + float64(ts.Minute())/60
		v := 5000 + 3000*math.Sin((hour-6)/24*2*math.Pi)
		s = append(s, series.Sample{Time: ts, Value: int64(v) + offset})
	}
	return s
}

// writeFixture writes s as a CSV file and returns its path
func writeFixture(t *testing.T, s series.Series) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "availability.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := series.WriteCSV(f, s); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func testDatasetConfig(path string) config.DatasetConfig {
	return config.DatasetConfig{
		Path:            path,
		Timezone:        "-05:00",
		DuplicatePolicy: "last_write_wins",
	}
}

func testLogger() *logging.Logger {
	return logging.NewDevelopment()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
