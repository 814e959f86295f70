package models

// Undefined statistics (the mean of nothing, the std of one point) are
// encoded as null, which is why most numeric fields are *float64.

// HealthResponse represents health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Version    string `json:"version"`
	Generation uint64 `json:"generation"`
	Loaded     bool   `json:"loaded"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DatasetResponse describes the loaded dataset
type DatasetResponse struct {
	InstanceID string `json:"instance_id"`
	Generation uint64 `json:"generation"`
	Version    string `json:"version"`
	Source     string `json:"source"`
	Samples    int    `json:"samples"`
	Rows       int    `json:"rows"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
	Policy     string `json:"duplicate_policy"`
	Location   string `json:"location"`
	First      string `json:"first,omitempty"`
	Last       string `json:"last,omitempty"`
	LoadedAt   string `json:"loaded_at"`
}

// ReloadResponse is returned by the reload endpoint
type ReloadResponse struct {
	Success bool            `json:"success"`
	Dataset DatasetResponse `json:"dataset"`
}

// QueryEcho repeats the normalised query a view was computed for
type QueryEcho struct {
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	HourStart   int    `json:"hour_start"`
	HourEnd     int    `json:"hour_end"`
	Weekdays    string `json:"weekdays"`
	Granularity string `json:"granularity"`
}

// ValuePoint is a timestamped value
type ValuePoint struct {
	Time  string   `json:"time"`
	Value *float64 `json:"value"`
}

// BucketResponse is one resampled bucket
type BucketResponse struct {
	Time  string   `json:"time"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Std   *float64 `json:"std"`
}

// SeriesResponse is the resampled series
type SeriesResponse struct {
	Query   QueryEcho        `json:"query"`
	Samples int              `json:"samples"`
	Buckets []BucketResponse `json:"buckets"`
}

// DeltaResponse compares the view with the previous period
type DeltaResponse struct {
	Percent       *float64 `json:"percent"`
	CurrentMean   *float64 `json:"current_mean"`
	PreviousMean  *float64 `json:"previous_mean"`
	PreviousStart string   `json:"previous_start,omitempty"`
	PreviousEnd   string   `json:"previous_end,omitempty"`
}

// KPIResponse holds the KPI cards
type KPIResponse struct {
	Query                  QueryEcho     `json:"query"`
	Count                  int           `json:"count"`
	Latest                 *float64      `json:"latest"`
	Peak                   *float64      `json:"peak"`
	Mean                   *float64      `json:"mean"`
	Min                    *float64      `json:"min"`
	CoefficientOfVariation *float64      `json:"coefficient_of_variation"`
	Delta                  DeltaResponse `json:"delta"`
}

// RollingPoint is a point with its rolling moments
type RollingPoint struct {
	Time  string   `json:"time"`
	Value *float64 `json:"value"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Count int      `json:"count"`
}

// RollingResponse is the trend line view
type RollingResponse struct {
	Query  QueryEcho      `json:"query"`
	Window int            `json:"window"`
	Points []RollingPoint `json:"points"`
}

// AnomalyPoint is one evaluated point
type AnomalyPoint struct {
	Time        string   `json:"time"`
	Value       *float64 `json:"value"`
	RollingMean *float64 `json:"rolling_mean"`
	RollingStd  *float64 `json:"rolling_std"`
	ZScore      *float64 `json:"z_score"`
	IsAnomaly   bool     `json:"is_anomaly"`
	Type        string   `json:"type,omitempty"`
	ExpectedMin *float64 `json:"expected_min,omitempty"`
	ExpectedMax *float64 `json:"expected_max,omitempty"`
}

// AnomalyResponse is the detector output
type AnomalyResponse struct {
	Query       QueryEcho      `json:"query"`
	Granularity string         `json:"granularity"`
	Window      int            `json:"window"`
	Threshold   float64        `json:"threshold"`
	Alignment   string         `json:"alignment"`
	Anomalies   int            `json:"anomalies"`
	Points      []AnomalyPoint `json:"points"`
}

// DayResponse summarises one calendar day
type DayResponse struct {
	Date           string   `json:"date"`
	Weekday        string   `json:"weekday"`
	Count          int      `json:"count"`
	Mean           *float64 `json:"mean"`
	Min            *float64 `json:"min"`
	Max            *float64 `json:"max"`
	Std            *float64 `json:"std"`
	GoldenHour     *int     `json:"golden_hour"`
	GoldenHourMean *float64 `json:"golden_hour_mean"`
}

// DailyResponse lists the days of the view
type DailyResponse struct {
	Query QueryEcho     `json:"query"`
	Days  []DayResponse `json:"days"`
}

// HourResponse is one hour of the typical-day profile
type HourResponse struct {
	Hour  int      `json:"hour"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
}

// HourlyResponse is the typical-day profile
type HourlyResponse struct {
	Query QueryEcho      `json:"query"`
	Hours []HourResponse `json:"hours"`
}

// HourMean is a mean for one hour of one day
type HourMean struct {
	Hour  int      `json:"hour"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
}

// HeatmapDay holds the hourly means of one day
type HeatmapDay struct {
	Date    string     `json:"date"`
	Weekday string     `json:"weekday"`
	Hours   []HourMean `json:"hours"`
}

// HeatmapResponse is the day by hour grid
type HeatmapResponse struct {
	Query QueryEcho    `json:"query"`
	Days  []HeatmapDay `json:"days"`
}

// WeekdayResponse aggregates one day of the week
type WeekdayResponse struct {
	Weekday string   `json:"weekday"`
	Count   int      `json:"count"`
	Mean    *float64 `json:"mean"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Std     *float64 `json:"std"`
}

// WeekdaysResponse is the day-of-week profile
type WeekdaysResponse struct {
	Query    QueryEcho         `json:"query"`
	Weekdays []WeekdayResponse `json:"weekdays"`
}

// VelocityResponse describes consecutive changes
type VelocityResponse struct {
	Query         QueryEcho    `json:"query"`
	Granularity   string       `json:"granularity"`
	Changes       []ValuePoint `json:"changes"`
	MaxIncrease   *ValuePoint  `json:"max_increase"`
	MaxDecrease   *ValuePoint  `json:"max_decrease"`
	MeanAbsChange *float64     `json:"mean_abs_change"`
}

// BinResponse is one histogram bin
type BinResponse struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DistributionResponse is the value histogram
type DistributionResponse struct {
	Query  QueryEcho     `json:"query"`
	Count  int           `json:"count"`
	Bins   []BinResponse `json:"bins"`
	Median *float64      `json:"median"`
	P5     *float64      `json:"p5"`
	P95    *float64      `json:"p95"`
	Q1     *float64      `json:"q1"`
	Q3     *float64      `json:"q3"`
}

// ProfilePoint is one time-of-day slot of an overlay
type ProfilePoint struct {
	Minute float64  `json:"minute"`
	Hour   float64  `json:"hour"`
	Mean   *float64 `json:"mean"`
	Days   int      `json:"days"`
}

// TracePoint is one bucket of a day trace
type TracePoint struct {
	Minute float64  `json:"minute"`
	Time   string   `json:"time"`
	Value  *float64 `json:"value"`
}

// DayTrace is one day on the time-of-day axis
type DayTrace struct {
	Date    string       `json:"date"`
	Weekday string       `json:"weekday"`
	Points  []TracePoint `json:"points"`
}

// CompareResponse holds the comparison selected by mode
type CompareResponse struct {
	Query   QueryEcho      `json:"query"`
	Mode    string         `json:"mode"`
	Weekday []ProfilePoint `json:"weekday,omitempty"`
	Weekend []ProfilePoint `json:"weekend,omitempty"`
	Days    []DayTrace     `json:"days,omitempty"`
}

// HourBox is a five-number summary for one hour
type HourBox struct {
	Hour   int      `json:"hour"`
	Count  int      `json:"count"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Max    *float64 `json:"max"`
}

// BoxesResponse holds weekday and weekend hourly boxes
type BoxesResponse struct {
	Query   QueryEcho `json:"query"`
	Weekday []HourBox `json:"weekday"`
	Weekend []HourBox `json:"weekend"`
}

// DigestDay is one day of the digest
type DigestDay struct {
	DayResponse
	Hours []HourMean `json:"hours"`
}

// DropResponse is one sharp drop
type DropResponse struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	From    *float64 `json:"from"`
	To      *float64 `json:"to"`
	PctDrop *float64 `json:"pct_drop"`
}

// DigestResponse is the bounded summary of a view
type DigestResponse struct {
	Query            QueryEcho      `json:"query"`
	PeriodStart      string         `json:"period_start,omitempty"`
	PeriodEnd        string         `json:"period_end,omitempty"`
	Points           int            `json:"points"`
	SamplingSeconds  float64        `json:"sampling_seconds"`
	Min              *float64       `json:"min"`
	Max              *float64       `json:"max"`
	Mean             *float64       `json:"mean"`
	Days             []DigestDay    `json:"days"`
	Drops            []DropResponse `json:"drops"`
	DropSpanMinutes  float64        `json:"drop_span_minutes"`
	DropPct          float64        `json:"drop_pct"`
	Anomalies        int            `json:"anomalies"`
	Threshold        float64        `json:"threshold"`
	TopAnomalies     []AnomalyPoint `json:"top_anomalies"`
	OmittedDays      int            `json:"omitted_days"`
	OmittedDrops     int            `json:"omitted_drops"`
	OmittedAnomalies int            `json:"omitted_anomalies"`
}
