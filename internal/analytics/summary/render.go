package summary

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
)

const timeLayout = "2006-01-02 15:04"

var printer = message.NewPrinter(language.English)

// Render writes d as the plain-text block handed to the conversational
// consumer. Section order and shape are fixed; only the entries vary, and
// their number is bounded by the Limits d was built with.
func Render(d Digest) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(printer.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line("=== STORE AVAILABILITY DATA SUMMARY ===")
	if d.Points == 0 {
		line("No data points match the current filters.")
		return b.String()
	}
	line("Period: %s to %s", d.Period.Start, d.Period.End)
	line("Total data points: %d", d.Points)
	line("Sampling: ~%s", d.Sampling)
	line("Global min: %s", number(d.Global.Min))
	line("Global max: %s", number(d.Global.Max))
	line("Global mean: %s", number(d.Global.Mean))
	line("")

	line("=== DAILY STATS ===")
	if d.Omitted.Days > 0 {
		line("(%d earlier days omitted)", d.Omitted.Days)
	}
	for _, day := range d.Days {
		line("%s (%s): avg=%s, min=%s, max=%s, std=%s",
			day.Date, day.Weekday, number(day.Mean), number(day.Min), number(day.Max), number(day.Std))
	}
	line("")

	line("=== HOURLY AVERAGES PER DAY ===")
	for _, day := range d.Days {
		parts := make([]string, len(day.Hours))
		for i, h := range day.Hours {
			parts[i] = fmt.Sprintf("%dh:%s", h.Hour, number(h.Mean))
		}
		line("%s: %s", day.Date, strings.Join(parts, ", "))
	}
	line("")

	line("=== NOTABLE DROPS (>%s%% within %s) ===", plain(d.DropPct), shortDuration(d.DropSpan))
	if len(d.Drops) == 0 {
		line("  No drops >%s%% detected within %s.", plain(d.DropPct), shortDuration(d.DropSpan))
	}
	for _, e := range d.Drops {
		endLayout := "15:04"
		if e.End.Format("2006-01-02") != e.Start.Format("2006-01-02") {
			endLayout = timeLayout
		}
		line("  %s -> %s: %s -> %s stores (-%.1f%%)",
			e.Start.Format(timeLayout), e.End.Format(endLayout), number(e.From), number(e.To), e.PctDrop)
	}
	if d.Omitted.Drops > 0 {
		line("  (%d smaller drops omitted)", d.Omitted.Drops)
	}
	line("")

	line("=== GOLDEN HOUR (peak hour per day) ===")
	for _, day := range d.Days {
		if day.GoldenHour < 0 {
			continue
		}
		line("  %s: %d:00 with avg %s stores", day.Date, day.GoldenHour, number(day.GoldenHourMean))
	}
	line("")

	line("=== ANOMALIES (|z| > %s) ===", plain(d.Anomalies.Threshold))
	if d.Anomalies.Count == 0 {
		line("  No anomalies detected.")
	}
	for _, p := range d.Anomalies.Top {
		line("  %s: %s stores (z=%+.2f, %s)", p.Time.Format(timeLayout), number(p.Value), p.ZScore, p.Type)
	}
	if d.Omitted.Anomalies > 0 {
		line("  (%d of %d anomalies omitted)", d.Omitted.Anomalies, d.Anomalies.Count)
	}

	return b.String()
}

// number formats v rounded to a whole number with thousands separators
func number(v float64) string {
	if analytics.IsUndefined(v) {
		return "n/a"
	}
	return printer.Sprintf("%.0f", v)
}

// plain formats v in its shortest form, without grouping
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shortDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dmin", int(d/time.Minute))
	}
	return d.String()
}
