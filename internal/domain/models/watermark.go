package models

import (
	"time"
)

// Watermark table columns.
const (
	MetaSourceDateCol  = "source_date"
	MetaProcessedAtCol = "processed_at"
)

// MetaColumns is the fixed schema of the watermark table.
var MetaColumns = []string{MetaSourceDateCol, MetaProcessedAtCol}

// SentinelCutoff marks a window with nothing left to process.
var SentinelCutoff = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)

// WatermarkRecord is one processed source date.
type WatermarkRecord struct {
	SourceDate  time.Time
	ProcessedAt time.Time
}

// ExtractionWindow is the result of watermark resolution.
type ExtractionWindow struct {
	// CutoffDate is the earliest date whose report rows are emitted.
	CutoffDate time.Time
	// Dates lists every partition to read, starting with the anchor date
	// before CutoffDate when there is one.
	Dates []time.Time
}

// Done reports whether every date up to today has already been processed.
func (w ExtractionWindow) Done() bool {
	return len(w.Dates) == 0 && w.CutoffDate.Equal(SentinelCutoff)
}

// UpdateDates returns the window dates on or after the cutoff. These are
// the dates committed to the watermark once the report is written.
func (w ExtractionWindow) UpdateDates() []time.Time {
	out := make([]time.Time, 0, len(w.Dates))
	for _, d := range w.Dates {
		if !d.Before(w.CutoffDate) {
			out = append(out, d)
		}
	}
	return out
}
