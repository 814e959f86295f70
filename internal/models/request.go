package models

// ViewRequest holds the query parameters shared by every view endpoint.
// Omitted fields take the engine defaults from configuration.
type ViewRequest struct {
	Start       string   `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End         string   `query:"end" validate:"omitempty,datetime=2006-01-02"`
	HourStart   *int     `query:"hour_start" validate:"omitempty,min=0,max=23"`
	HourEnd     *int     `query:"hour_end" validate:"omitempty,min=0,max=23"`
	Weekdays    string   `query:"weekdays" validate:"omitempty,weekdays"`
	Granularity string   `query:"granularity" validate:"omitempty,oneof=raw 1min 1m 5min 15min 30min 1hour 1h hourly 60min"`
	Window      *int     `query:"window" validate:"omitempty,min=0,max=10000"`
	Threshold   *float64 `query:"threshold" validate:"omitempty,gt=0,lte=100"`
	Alignment   string   `query:"alignment" validate:"omitempty,oneof=centered trailing"`
	Mode        string   `query:"mode" validate:"omitempty,oneof=none weekday_weekend day_over_day"`
	Bins        int      `query:"bins" validate:"min=0,max=1000"`
}
