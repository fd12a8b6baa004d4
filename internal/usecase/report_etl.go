package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"XetraPull/internal/domain/models"
	drepo "XetraPull/internal/domain/repository"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/table"
	"XetraPull/pkg/util"
)

// ReportTarget describes where the report object is written.
type ReportTarget struct {
	// Key is the key prefix, e.g. report1/xetra_daily_report1_.
	Key string
	// KeyDateFormat is a Go time layout appended to Key.
	KeyDateFormat string
	Format        drepo.Format
}

// ReportETL runs extract, transform and load for the daily report.
// The extraction window is resolved once, at construction.
type ReportETL struct {
	src        drepo.TableStore
	trg        drepo.TableStore
	watermark  *WatermarkService
	aggregator *ReportAggregator
	target     ReportTarget
	sink       drepo.ReportSink
	publisher  drepo.RunPublisher
	metrics    drepo.Metrics
	now        func() time.Time
	l          *applogger.Logger

	readConcurrency int

	window      models.ExtractionWindow
	updateDates []time.Time
}

// ETLOption configures ReportETL.
type ETLOption func(*ReportETL)

// WithReportSink mirrors written reports to sink.
func WithReportSink(sink drepo.ReportSink) ETLOption {
	return func(e *ReportETL) {
		e.sink = sink
	}
}

// WithRunPublisher announces every finished run.
func WithRunPublisher(p drepo.RunPublisher) ETLOption {
	return func(e *ReportETL) {
		e.publisher = p
	}
}

// WithMetrics records run metrics.
func WithMetrics(m drepo.Metrics) ETLOption {
	return func(e *ReportETL) {
		e.metrics = m
	}
}

// WithETLClock replaces time.Now for report keys and run timestamps.
func WithETLClock(now func() time.Time) ETLOption {
	return func(e *ReportETL) {
		e.now = now
	}
}

// WithReadConcurrency bounds how many source objects are read at once.
func WithReadConcurrency(n int) ETLOption {
	return func(e *ReportETL) {
		if n > 0 {
			e.readConcurrency = n
		}
	}
}

// NewReportETL resolves the extraction window for firstDate and prepares
// the list of dates to commit after a successful load.
func NewReportETL(
	ctx context.Context,
	src drepo.TableStore,
	trg drepo.TableStore,
	watermark *WatermarkService,
	aggregator *ReportAggregator,
	target ReportTarget,
	firstDate time.Time,
	l *applogger.Logger,
	opts ...ETLOption,
) (*ReportETL, error) {
	if l == nil {
		l = applogger.Nop()
	}
	e := &ReportETL{
		src:        src,
		trg:        trg,
		watermark:  watermark,
		aggregator: aggregator,
		target:     target,
		metrics:    nopMetrics{},
		now:        time.Now,
		l:          l,

		readConcurrency: 8,
	}
	for _, opt := range opts {
		opt(e)
	}

	window, err := watermark.Resolve(ctx, firstDate)
	if err != nil {
		return nil, fmt.Errorf("resolve extraction window: %w", err)
	}
	e.window = window
	e.updateDates = window.UpdateDates()
	return e, nil
}

// Window returns the resolved extraction window.
func (e *ReportETL) Window() models.ExtractionWindow {
	return e.window
}

// UpdateDates returns the dates committed to the watermark after Load.
func (e *ReportETL) UpdateDates() []time.Time {
	return e.updateDates
}

// Extract reads every source object under each window date prefix and
// stacks them into one frame. Objects are read concurrently; the frame keeps
// listing order.
func (e *ReportETL) Extract(ctx context.Context) (*table.Frame, error) {
	start := time.Now()
	e.l.Info("Xetra Report 1 ETL: Extracting Xetra source files started...")

	var keys []string
	for _, d := range e.window.Dates {
		prefix := util.FormatDate(d)
		listed, err := e.src.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list source %s: %w", prefix, err)
		}
		keys = append(keys, listed...)
	}

	frames := make([]*table.Frame, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.readConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			f, found, err := e.src.ReadTable(gctx, key)
			if err != nil {
				return fmt.Errorf("read source %s: %w", key, err)
			}
			if !found {
				e.l.Warn("listed source object disappeared", applogger.String("key", key))
				return nil
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw := table.Concat(frames...)
	e.metrics.RecordRows("extract", raw.Len())
	e.metrics.RecordLatency("extract", time.Since(start).Seconds())
	e.l.Info("Xetra Report 1 ETL: Extracting Xetra source files finished.",
		applogger.Int("files", len(keys)),
		applogger.Int("rows", raw.Len()),
	)
	return raw, nil
}

// Transform aggregates raw rows into the daily report.
func (e *ReportETL) Transform(ctx context.Context, raw *table.Frame) (*table.Frame, error) {
	start := time.Now()
	report, err := e.aggregator.Aggregate(ctx, raw, e.window.CutoffDate)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	e.metrics.RecordRows("report", report.Len())
	e.metrics.RecordLatency("transform", time.Since(start).Seconds())
	return report, nil
}

// Load writes the report, mirrors it when a sink is configured and then
// records the processed dates in the watermark. It returns the report key
// and whether an object was written.
func (e *ReportETL) Load(ctx context.Context, report *table.Frame) (string, bool, error) {
	start := time.Now()
	key := e.ReportKey()

	written, err := e.trg.WriteTable(ctx, report, key, e.target.Format)
	if err != nil {
		return key, false, fmt.Errorf("write report: %w", err)
	}

	if written && e.sink != nil {
		rows, err := e.aggregator.FromFrame(report)
		if err != nil {
			return key, written, fmt.Errorf("mirror report: %w", err)
		}
		if err := e.sink.StoreReport(ctx, key, rows); err != nil {
			return key, written, fmt.Errorf("mirror report: %w", err)
		}
	}

	if _, err := e.watermark.Update(ctx, e.updateDates); err != nil {
		return key, written, fmt.Errorf("update watermark: %w", err)
	}
	e.metrics.RecordDates(len(e.updateDates))
	e.metrics.RecordLatency("load", time.Since(start).Seconds())
	e.l.Info("Xetra target data successfully written.", applogger.String("key", key), applogger.Bool("written", written))
	return key, written, nil
}

// ReportKey builds <key><timestamp>.<format> from the current time.
func (e *ReportETL) ReportKey() string {
	return fmt.Sprintf("%s%s.%s", e.target.Key, e.now().Format(e.target.KeyDateFormat), e.target.Format)
}

// Run executes Extract, Transform and Load once and returns a summary.
func (e *ReportETL) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:      uuid.NewString(),
		CutoffDate: util.FormatDate(e.window.CutoffDate),
		Dates:      util.FormatDates(e.window.Dates),
		StartedAt:  e.now(),
	}
	l := e.l.With(applogger.String("run_id", summary.RunID))
	l.Info("Xetra ETL job started", applogger.String("cutoff_date", summary.CutoffDate))

	raw, err := e.Extract(ctx)
	if err != nil {
		return nil, e.fail("extract", err)
	}
	summary.RawRows = raw.Len()

	report, err := e.Transform(ctx, raw)
	if err != nil {
		return nil, e.fail("transform", err)
	}
	summary.ReportRows = report.Len()

	summary.ReportKey, summary.Written, err = e.Load(ctx, report)
	if err != nil {
		return nil, e.fail("load", err)
	}
	summary.FinishedAt = e.now()

	if e.publisher != nil {
		if err := e.publisher.PublishRun(ctx, summary); err != nil {
			return nil, e.fail("publish", err)
		}
	}

	e.metrics.RecordRun("ok", float64(summary.FinishedAt.Unix()))
	l.Info("Xetra ETL job finished.",
		applogger.String("report_key", summary.ReportKey),
		applogger.Int("raw_rows", summary.RawRows),
		applogger.Int("report_rows", summary.ReportRows),
	)
	return summary, nil
}

func (e *ReportETL) fail(stage string, err error) error {
	e.metrics.RecordError(stage)
	e.metrics.RecordRun("error", 0)
	return err
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string, float64)     {}
func (nopMetrics) RecordRows(string, int)        {}
func (nopMetrics) RecordDates(int)               {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
