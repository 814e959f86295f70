// Command unify merges raw wide-format availability exports into the single
// time,available_stores CSV the engine loads. Exports overlap at their edges;
// the first file to provide a timestamp wins.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
)

func main() {
	input := flag.String("input", "./data/raw", "Directory holding the raw export CSV files")
	output := flag.String("output", "./data/availability.csv", "Unified CSV output path")
	timezone := flag.String("timezone", "America/Bogota", "Timezone timestamps are written in")
	flag.Parse()

	logger := logging.NewDevelopment()

	loc, err := loadLocation(*timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", "timezone", *timezone, "error", err)
	}

	files, err := filepath.Glob(filepath.Join(*input, "*.csv"))
	if err != nil {
		logger.Fatal("Failed to list exports", "input", *input, "error", err)
	}
	if len(files) == 0 {
		logger.Fatal("No export files found", "input", *input)
	}
	sort.Strings(files)

	var samples []series.Sample
	for _, path := range files {
		fileSamples, err := readExportFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable export", "file", path, "error", err)
			continue
		}
		logger.Debug("Export read", "file", filepath.Base(path), "samples", len(fileSamples))
		samples = append(samples, fileSamples...)
	}

	store, err := series.NewStore(samples, loc, series.KeepFirst)
	if err != nil {
		logger.Fatal("Failed to merge exports", "error", err)
	}

	if err := writeFile(*output, store.Series()); err != nil {
		logger.Fatal("Failed to write unified CSV", "output", *output, "error", err)
	}

	first, last, _ := store.Span()
	logger.Info("Unified dataset written",
		"output", *output,
		"files", len(files),
		"samples", store.Len(),
		"duplicates", store.Duplicates(),
		"first", first,
		"last", last)
}

func readExportFile(path string) ([]series.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return series.ReadExport(f)
}

func writeFile(path string, s series.Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := series.WriteCSV(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func loadLocation(name string) (*time.Location, error) {
	if strings.EqualFold(name, "utc") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	return loc, nil
}
