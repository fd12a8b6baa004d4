package usecase

import (
	"context"
	"fmt"
	"time"

	"XetraPull/internal/domain/models"
	drepo "XetraPull/internal/domain/repository"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/table"
	"XetraPull/pkg/util"
)

// WatermarkService resolves which source dates still need processing and
// appends processed dates to the watermark table.
type WatermarkService struct {
	store   drepo.TableStore
	metaKey string
	now     func() time.Time
	l       *applogger.Logger
}

// WatermarkOption configures WatermarkService.
type WatermarkOption func(*WatermarkService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) WatermarkOption {
	return func(s *WatermarkService) {
		s.now = now
	}
}

// NewWatermarkService creates a service reading and writing metaKey in store.
func NewWatermarkService(store drepo.TableStore, metaKey string, l *applogger.Logger, opts ...WatermarkOption) *WatermarkService {
	if l == nil {
		l = applogger.Nop()
	}
	s := &WatermarkService{
		store:   store,
		metaKey: metaKey,
		now:     time.Now,
		l:       l.With(applogger.String("meta_key", metaKey)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve computes the extraction window for a run starting at firstDate.
//
// The window always begins one day before the first date to (re)process so
// the change against the previous day can be computed. When every date up to
// today is already recorded the window is empty and the cutoff is
// models.SentinelCutoff.
func (s *WatermarkService) Resolve(ctx context.Context, firstDate time.Time) (models.ExtractionWindow, error) {
	firstDate = util.DateOf(firstDate)
	start := util.AddDays(firstDate, -1)
	today := util.DateOf(s.now())
	candidates := util.DateRange(start, today)

	records, found, err := s.Records(ctx)
	if err != nil {
		return models.ExtractionWindow{}, err
	}
	if !found {
		s.l.Info("no watermark found, extracting full range",
			applogger.Date("first_date", firstDate),
			applogger.Int("dates", len(candidates)),
		)
		return models.ExtractionWindow{CutoffDate: firstDate, Dates: candidates}, nil
	}

	processed := make(map[string]struct{}, len(records))
	for _, r := range records {
		processed[util.FormatDate(r.SourceDate)] = struct{}{}
	}

	var minMissing time.Time
	hasMissing := false
	if len(candidates) > 1 {
		for _, d := range candidates[1:] {
			if _, ok := processed[util.FormatDate(d)]; ok {
				continue
			}
			if !hasMissing || d.Before(minMissing) {
				minMissing, hasMissing = d, true
			}
		}
	}

	if !hasMissing {
		s.l.Info("all dates already processed", applogger.Date("first_date", firstDate))
		return models.ExtractionWindow{CutoffDate: models.SentinelCutoff, Dates: []time.Time{}}, nil
	}

	minDate := util.AddDays(minMissing, -1)
	dates := make([]time.Time, 0, len(candidates))
	for _, d := range candidates {
		if !d.Before(minDate) {
			dates = append(dates, d)
		}
	}
	window := models.ExtractionWindow{CutoffDate: util.AddDays(minDate, 1), Dates: dates}
	s.l.Info("extraction window resolved",
		applogger.Date("cutoff_date", window.CutoffDate),
		applogger.Strings("dates", util.FormatDates(dates)),
	)
	return window, nil
}

// Update appends one row per date to the watermark, all stamped with the
// same processing time. An empty list commits nothing and reports true.
func (s *WatermarkService) Update(ctx context.Context, dates []time.Time) (bool, error) {
	if len(dates) == 0 {
		s.l.Info("no new dates to record in watermark")
		return true, nil
	}

	stamp := s.now().Format(util.TimestampLayout)
	batch := table.New(models.MetaColumns...)
	for _, d := range dates {
		if err := batch.Append(util.FormatDate(d), stamp); err != nil {
			return false, fmt.Errorf("build watermark batch: %w", err)
		}
	}

	old, found, err := s.store.ReadTable(ctx, s.metaKey)
	if err != nil {
		return false, fmt.Errorf("read watermark: %w", err)
	}

	next := batch
	if found {
		if !old.SameColumns(models.MetaColumns...) {
			return false, s.wrongMeta("unexpected columns %v", old.Columns)
		}
		next = table.Concat(old, batch)
	}

	if _, err := s.store.WriteTable(ctx, next, s.metaKey, drepo.FormatCSV); err != nil {
		return false, fmt.Errorf("write watermark: %w", err)
	}
	s.l.Info("watermark updated",
		applogger.Strings("dates", util.FormatDates(dates)),
		applogger.Int("rows", next.Len()),
	)
	return true, nil
}

// Records reads and validates the watermark table. found is false when no
// watermark has been written yet.
func (s *WatermarkService) Records(ctx context.Context) ([]models.WatermarkRecord, bool, error) {
	frame, found, err := s.store.ReadTable(ctx, s.metaKey)
	if err != nil {
		return nil, false, fmt.Errorf("read watermark: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	if !frame.SameColumns(models.MetaColumns...) {
		return nil, true, s.wrongMeta("unexpected columns %v", frame.Columns)
	}

	srcIdx := frame.Index(models.MetaSourceDateCol)
	procIdx := frame.Index(models.MetaProcessedAtCol)
	records := make([]models.WatermarkRecord, 0, frame.Len())
	for i, row := range frame.Rows {
		raw, _ := row[srcIdx].(string)
		d, err := util.ParseDate(raw)
		if err != nil {
			return nil, true, s.wrongMeta("row %d: %v", i+1, err)
		}
		rec := models.WatermarkRecord{SourceDate: d}
		if p, ok := row[procIdx].(string); ok {
			// informational only
			if ts, err := time.Parse(util.TimestampLayout, p); err == nil {
				rec.ProcessedAt = ts
			}
		}
		records = append(records, rec)
	}
	return records, true, nil
}

func (s *WatermarkService) wrongMeta(format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", s.metaKey, fmt.Sprintf(format, args...), drepo.ErrWrongMetaFile)
}
