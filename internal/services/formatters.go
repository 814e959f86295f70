package services

import (
	"strconv"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/comparison"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/stats"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/summary"
	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Times are rendered in the dataset location, which the store already put
// every timestamp in.
const timeLayout = time.RFC3339

// Statistics are rounded to keep payloads small; counts are exact.
const decimals = 4

func num(v float64) *float64 {
	return utils.RoundedFloat(v, decimals)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func echo(q engine.Query) models.QueryEcho {
	return models.QueryEcho{
		Start:       q.Filter.DateStart.String(),
		End:         q.Filter.DateEnd.String(),
		HourStart:   q.Filter.HourStart,
		HourEnd:     q.Filter.HourEnd,
		Weekdays:    q.Filter.Weekdays.String(),
		Granularity: string(q.Granularity),
	}
}

func datasetResponse(snap *Snapshot, instanceID string) models.DatasetResponse {
	store := snap.Store()
	resp := models.DatasetResponse{
		InstanceID: instanceID,
		Generation: snap.Generation,
		Version:    strconv.FormatUint(snap.Version, 16),
		Source:     snap.Source,
		Samples:    store.Len(),
		Rows:       snap.Rows,
		Skipped:    snap.Skipped,
		Duplicates: store.Duplicates(),
		Policy:     string(store.Policy()),
		Location:   store.Location().String(),
		LoadedAt:   snap.LoadedAt.Format(timeLayout),
	}
	if first, last, ok := store.Span(); ok {
		resp.First = formatTime(first)
		resp.Last = formatTime(last)
	}
	return resp
}

func seriesResponse(q engine.Query, buckets []resample.Bucket) models.SeriesResponse {
	out := make([]models.BucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = models.BucketResponse{
			Time:  formatTime(b.Start),
			Count: b.Count,
			Mean:  num(b.Mean),
			Min:   num(b.Min),
			Max:   num(b.Max),
			Std:   num(b.Std),
		}
	}
	return models.SeriesResponse{Query: echo(q), Samples: resample.TotalCount(buckets), Buckets: out}
}

func kpiResponse(q engine.Query, v engine.KPIView) models.KPIResponse {
	return models.KPIResponse{
		Query:                  echo(q),
		Count:                  v.KPIs.Count,
		Latest:                 num(v.KPIs.Latest),
		Peak:                   num(v.KPIs.Peak),
		Mean:                   num(v.KPIs.Mean),
		Min:                    num(v.KPIs.Min),
		CoefficientOfVariation: num(v.CoefficientOfVariation),
		Delta: models.DeltaResponse{
			Percent:       num(v.Delta.Percent),
			CurrentMean:   num(v.Delta.CurrentMean),
			PreviousMean:  num(v.Delta.PreviousMean),
			PreviousStart: v.Delta.Previous.DateStart.String(),
			PreviousEnd:   v.Delta.Previous.DateEnd.String(),
		},
	}
}

func rollingResponse(q engine.Query, v engine.RollingView) models.RollingResponse {
	out := make([]models.RollingPoint, len(v.Points))
	for i, p := range v.Points {
		out[i] = models.RollingPoint{Time: formatTime(p.Time), Value: num(p.Value)}
		if i < len(v.Moments) {
			m := v.Moments[i]
			out[i].Mean = num(m.Mean)
			out[i].Std = num(m.Std)
			out[i].Count = m.Count
		}
	}
	return models.RollingResponse{Query: echo(q), Window: v.Window, Points: out}
}

func anomalyPoint(p anomaly.Point) models.AnomalyPoint {
	out := models.AnomalyPoint{
		Time:        formatTime(p.Time),
		Value:       num(p.Value),
		RollingMean: num(p.RollingMean),
		RollingStd:  num(p.RollingStd),
		ZScore:      num(p.ZScore),
		IsAnomaly:   p.IsAnomaly,
		Type:        string(p.Type),
	}
	if p.Expected != nil {
		out.ExpectedMin = num(p.Expected.Min)
		out.ExpectedMax = num(p.Expected.Max)
	}
	return out
}

func anomalyPoints(points []anomaly.Point) []models.AnomalyPoint {
	out := make([]models.AnomalyPoint, len(points))
	for i, p := range points {
		out[i] = anomalyPoint(p)
	}
	return out
}

func anomalyResponse(q engine.Query, v engine.AnomalyView) models.AnomalyResponse {
	return models.AnomalyResponse{
		Query:       echo(q),
		Granularity: string(v.Granularity),
		Window:      v.Config.Window,
		Threshold:   v.Config.Threshold,
		Alignment:   string(v.Config.Alignment),
		Anomalies:   len(anomaly.Flagged(v.Points)),
		Points:      anomalyPoints(v.Points),
	}
}

func dayResponse(d stats.DaySummary) models.DayResponse {
	out := models.DayResponse{
		Date:    d.Date.String(),
		Weekday: d.Weekday.String(),
		Count:   d.Count,
		Mean:    num(d.Mean),
		Min:     num(d.Min),
		Max:     num(d.Max),
		Std:     num(d.Std),
	}
	if d.GoldenHour >= 0 {
		hour := d.GoldenHour
		out.GoldenHour = &hour
		out.GoldenHourMean = num(d.GoldenHourMean)
	}
	return out
}

func dailyResponse(q engine.Query, days []stats.DaySummary) models.DailyResponse {
	out := make([]models.DayResponse, len(days))
	for i, d := range days {
		out[i] = dayResponse(d)
	}
	return models.DailyResponse{Query: echo(q), Days: out}
}

func hourlyResponse(q engine.Query, hours []stats.HourStats) models.HourlyResponse {
	out := make([]models.HourResponse, len(hours))
	for i, h := range hours {
		out[i] = models.HourResponse{
			Hour:  h.Hour,
			Count: h.Count,
			Mean:  num(h.Mean),
			Std:   num(h.Std),
			Lower: num(h.Lower),
			Upper: num(h.Upper),
		}
	}
	return models.HourlyResponse{Query: echo(q), Hours: out}
}

func hourMeans(hours []stats.HourMean) []models.HourMean {
	out := make([]models.HourMean, len(hours))
	for i, h := range hours {
		out[i] = models.HourMean{Hour: h.Hour, Count: h.Count, Mean: num(h.Mean)}
	}
	return out
}

func heatmapResponse(q engine.Query, days []stats.DayHours) models.HeatmapResponse {
	out := make([]models.HeatmapDay, len(days))
	for i, d := range days {
		out[i] = models.HeatmapDay{Date: d.Date.String(), Weekday: d.Weekday.String(), Hours: hourMeans(d.Hours)}
	}
	return models.HeatmapResponse{Query: echo(q), Days: out}
}

func weekdaysResponse(q engine.Query, days []stats.WeekdayStats) models.WeekdaysResponse {
	out := make([]models.WeekdayResponse, len(days))
	for i, d := range days {
		out[i] = models.WeekdayResponse{
			Weekday: d.Weekday.String(),
			Count:   d.Count,
			Mean:    num(d.Mean),
			Min:     num(d.Min),
			Max:     num(d.Max),
			Std:     num(d.Std),
		}
	}
	return models.WeekdaysResponse{Query: echo(q), Weekdays: out}
}

func valuePoints(points analytics.Points) []models.ValuePoint {
	out := make([]models.ValuePoint, len(points))
	for i, p := range points {
		out[i] = models.ValuePoint{Time: formatTime(p.Time), Value: num(p.Value)}
	}
	return out
}

// change returns nil for the zero Change a report uses for "none"
func change(c stats.Change) *models.ValuePoint {
	if c.Time.IsZero() {
		return nil
	}
	return &models.ValuePoint{Time: formatTime(c.Time), Value: num(c.Value)}
}

func velocityResponse(q engine.Query, v stats.VelocityReport) models.VelocityResponse {
	return models.VelocityResponse{
		Query:         echo(q),
		Granularity:   string(engine.VelocityGranularity),
		Changes:       valuePoints(v.Changes),
		MaxIncrease:   change(v.MaxIncrease),
		MaxDecrease:   change(v.MaxDecrease),
		MeanAbsChange: num(v.MeanAbsChange),
	}
}

func distributionResponse(q engine.Query, d stats.Distribution) models.DistributionResponse {
	bins := make([]models.BinResponse, len(d.Bins))
	for i, b := range d.Bins {
		bins[i] = models.BinResponse{Lower: b.Lower, Upper: b.Upper, Count: b.Count}
	}
	return models.DistributionResponse{
		Query:  echo(q),
		Count:  d.Count,
		Bins:   bins,
		Median: num(d.Median),
		P5:     num(d.P5),
		P95:    num(d.P95),
		Q1:     num(d.Q1),
		Q3:     num(d.Q3),
	}
}

func profilePoints(points []comparison.ProfilePoint) []models.ProfilePoint {
	out := make([]models.ProfilePoint, len(points))
	for i, p := range points {
		out[i] = models.ProfilePoint{Minute: p.Minute, Hour: p.Hour, Mean: num(p.Mean), Days: p.Days}
	}
	return out
}

func compareResponse(q engine.Query, v engine.ComparisonView) models.CompareResponse {
	resp := models.CompareResponse{Query: echo(q), Mode: string(v.Mode)}
	if v.Overlay != nil {
		resp.Weekday = profilePoints(v.Overlay.Weekday)
		resp.Weekend = profilePoints(v.Overlay.Weekend)
	}
	if v.Days != nil {
		resp.Days = make([]models.DayTrace, len(v.Days))
		for i, d := range v.Days {
			points := make([]models.TracePoint, len(d.Points))
			for j, p := range d.Points {
				points[j] = models.TracePoint{Minute: p.Minute, Time: formatTime(p.Time), Value: num(p.Value)}
			}
			resp.Days[i] = models.DayTrace{Date: d.Date.String(), Weekday: d.Weekday.String(), Points: points}
		}
	}
	return resp
}

func hourBoxes(boxes []comparison.HourBox) []models.HourBox {
	out := make([]models.HourBox, len(boxes))
	for i, b := range boxes {
		out[i] = models.HourBox{
			Hour:   b.Hour,
			Count:  b.Count,
			Min:    num(b.Min),
			Q1:     num(b.Q1),
			Median: num(b.Median),
			Q3:     num(b.Q3),
			Max:    num(b.Max),
		}
	}
	return out
}

func boxesResponse(q engine.Query, b comparison.Boxes) models.BoxesResponse {
	return models.BoxesResponse{Query: echo(q), Weekday: hourBoxes(b.Weekday), Weekend: hourBoxes(b.Weekend)}
}

func digestResponse(q engine.Query, d summary.Digest) models.DigestResponse {
	days := make([]models.DigestDay, len(d.Days))
	for i, day := range d.Days {
		days[i] = models.DigestDay{DayResponse: dayResponse(day.DaySummary), Hours: hourMeans(day.Hours)}
	}
	drops := make([]models.DropResponse, len(d.Drops))
	for i, e := range d.Drops {
		drops[i] = models.DropResponse{
			Start:   formatTime(e.Start),
			End:     formatTime(e.End),
			From:    num(e.From),
			To:      num(e.To),
			PctDrop: num(e.PctDrop),
		}
	}
	return models.DigestResponse{
		Query:            echo(q),
		PeriodStart:      d.Period.Start.String(),
		PeriodEnd:        d.Period.End.String(),
		Points:           d.Points,
		SamplingSeconds:  d.Sampling.Seconds(),
		Min:              num(d.Global.Min),
		Max:              num(d.Global.Max),
		Mean:             num(d.Global.Mean),
		Days:             days,
		Drops:            drops,
		DropSpanMinutes:  d.DropSpan.Minutes(),
		DropPct:          d.DropPct,
		Anomalies:        d.Anomalies.Count,
		Threshold:        d.Anomalies.Threshold,
		TopAnomalies:     anomalyPoints(d.Anomalies.Top),
		OmittedDays:      d.Omitted.Days,
		OmittedDrops:     d.Omitted.Drops,
		OmittedAnomalies: d.Omitted.Anomalies,
	}
}
