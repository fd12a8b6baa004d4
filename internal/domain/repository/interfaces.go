package repository

import (
	"context"

	"XetraPull/internal/domain/models"
	"XetraPull/pkg/table"
)

// TableStore is a bucket of tabular objects addressed by key.
type TableStore interface {
	// List returns every key starting with prefix, or an empty slice.
	List(ctx context.Context, prefix string) ([]string, error)
	// ReadTable decodes a CSV object. A missing key reports found=false
	// with a nil error.
	ReadTable(ctx context.Context, key string) (frame *table.Frame, found bool, err error)
	// WriteTable encodes and stores a frame. An empty frame is not written
	// and reports written=false.
	WriteTable(ctx context.Context, frame *table.Frame, key string, format Format) (written bool, err error)
}

// ReportSink mirrors report rows to a queryable store.
type ReportSink interface {
	StoreReport(ctx context.Context, reportKey string, rows []models.DailyReport) error
	Close() error
}

// RunPublisher announces a finished run.
type RunPublisher interface {
	PublishRun(ctx context.Context, summary *models.RunSummary) error
	Close() error
}

type Metrics interface {
	RecordRun(result string, unixSeconds float64)
	RecordRows(stage string, n int)
	RecordDates(n int)
	RecordError(kind string)
	RecordLatency(stage string, seconds float64)
}
