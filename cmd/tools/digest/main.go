// Command digest prints the plain-text availability summary for a dataset
// without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	dataPath := flag.String("data", "", "Dataset CSV (overrides dataset.path)")
	timezone := flag.String("timezone", "", "Analysis timezone (overrides dataset.timezone)")
	start := flag.String("start", "", "First date, YYYY-MM-DD")
	end := flag.String("end", "", "Last date, YYYY-MM-DD")
	weekdays := flag.String("weekdays", "", "Weekday filter, e.g. mon,tue or weekend")
	hourStart := flag.Int("hour-start", -1, "First hour of day")
	hourEnd := flag.Int("hour-end", -1, "Last hour of day")
	asJSON := flag.Bool("json", false, "Print the digest as JSON")
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}
	if *timezone != "" {
		cfg.Dataset.Timezone = *timezone
	}

	// quiet unless something goes wrong
	cfg.Logging.Level = "warn"
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	dataset := services.NewDatasetService(logger, cfg.Dataset, services.Limits(cfg.Engine), nil, nil, "")
	ctx := context.Background()
	if _, err := dataset.Load(ctx); err != nil {
		logger.Fatal("Failed to load dataset", "path", cfg.Dataset.Path, "error", err)
	}
	analytics := services.NewAnalyticsService(logger, dataset, nil, cfg.Engine)

	req := &models.ViewRequest{Start: *start, End: *end, Weekdays: *weekdays}
	if *hourStart >= 0 {
		req.HourStart = hourStart
	}
	if *hourEnd >= 0 {
		req.HourEnd = hourEnd
	}
	q, err := analytics.ParseQuery(req)
	if err != nil {
		logger.Fatal("Invalid filter", "error", err)
	}

	view := analytics.DigestText
	if *asJSON {
		view = analytics.Digest
	}
	out, err := view(ctx, q)
	if err != nil {
		logger.Fatal("Failed to build digest", "error", err)
	}
	_, _ = os.Stdout.Write(out)
	if *asJSON {
		fmt.Println()
	}
}
