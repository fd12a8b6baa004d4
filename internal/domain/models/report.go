package models

import "time"

// DailyReport is one instrument's aggregated trading day.
type DailyReport struct {
	ISIN              string    `json:"isin"`
	Date              time.Time `json:"date"`
	OpeningPrice      float64   `json:"opening_price"`
	ClosingPrice      float64   `json:"closing_price"`
	MinimumPrice      float64   `json:"minimum_price"`
	MaximumPrice      float64   `json:"maximum_price"`
	DailyTradedVolume float64   `json:"daily_traded_volume"`
	// ChangePrevClosing is nil on an instrument's first date.
	ChangePrevClosing *float64 `json:"change_prev_closing_pct,omitempty"`
}

// RunSummary describes one completed ETL run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	ReportKey  string    `json:"report_key"`
	Written    bool      `json:"written"`
	CutoffDate string    `json:"cutoff_date"`
	Dates      []string  `json:"dates"`
	RawRows    int       `json:"raw_rows"`
	ReportRows int       `json:"report_rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
