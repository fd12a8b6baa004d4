package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"XetraPull/internal/domain/models"
	drepo "XetraPull/internal/domain/repository"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/table"
	"XetraPull/pkg/util"
)

// SourceColumns names the raw trade columns. All is every column that must
// be present and non-empty; the role columns must be members of All.
type SourceColumns struct {
	All        []string
	ISIN       string
	Date       string
	Time       string
	StartPrice string
	MinPrice   string
	MaxPrice   string
	TradedVol  string
}

func (c SourceColumns) required() []string {
	seen := make(map[string]struct{}, len(c.All)+7)
	out := make([]string, 0, len(c.All)+7)
	for _, col := range append(append([]string{}, c.All...),
		c.ISIN, c.Date, c.Time, c.StartPrice, c.MinPrice, c.MaxPrice, c.TradedVol) {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}

// TargetColumns names the report columns, in output order.
type TargetColumns struct {
	ISIN              string
	Date              string
	OpeningPrice      string
	ClosingPrice      string
	MinimumPrice      string
	MaximumPrice      string
	DailyTradedVolume string
	ChangePrevClosing string
}

// Names returns the report columns in output order.
func (c TargetColumns) Names() []string {
	return []string{
		c.ISIN, c.Date, c.OpeningPrice, c.ClosingPrice,
		c.MinimumPrice, c.MaximumPrice, c.DailyTradedVolume, c.ChangePrevClosing,
	}
}

// ReportAggregator turns per-minute trade rows into one row per instrument
// and trading day.
type ReportAggregator struct {
	src SourceColumns
	trg TargetColumns
	l   *applogger.Logger
}

// NewReportAggregator creates an aggregator for the given column mapping.
func NewReportAggregator(src SourceColumns, trg TargetColumns, l *applogger.Logger) *ReportAggregator {
	if l == nil {
		l = applogger.Nop()
	}
	return &ReportAggregator{src: src, trg: trg, l: l}
}

// Aggregate builds the daily report frame and keeps rows dated on or after
// cutoff.
func (a *ReportAggregator) Aggregate(ctx context.Context, raw *table.Frame, cutoff time.Time) (*table.Frame, error) {
	reports, err := a.Reports(ctx, raw, cutoff)
	if err != nil {
		return nil, err
	}
	return a.ToFrame(reports), nil
}

// Reports is Aggregate returning typed rows ordered by (isin, date).
func (a *ReportAggregator) Reports(_ context.Context, raw *table.Frame, cutoff time.Time) ([]models.DailyReport, error) {
	if raw.Empty() {
		a.l.Info("The dataframe is empty. No transformations will be applied.")
		return []models.DailyReport{}, nil
	}
	a.l.Info("Applying transformations to Xetra source data for report 1 started...")

	trades, dropped, err := a.parse(raw)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		a.l.Debug("dropped incomplete rows", applogger.Int("rows", dropped))
	}

	days := groupDays(trades)
	reports := make([]models.DailyReport, 0, len(days))
	var prev *dayAgg
	for _, d := range days {
		r := models.DailyReport{
			ISIN:              d.isin,
			Date:              d.date,
			OpeningPrice:      round2(d.opening),
			ClosingPrice:      round2(d.closing),
			MinimumPrice:      round2(d.min),
			MaximumPrice:      round2(d.max),
			DailyTradedVolume: round2(d.volume),
		}
		if prev != nil && prev.isin == d.isin && prev.opening != 0 {
			if change := (d.opening - prev.opening) / prev.opening * 100; isFinite(change) {
				change = round2(change)
				r.ChangePrevClosing = &change
			}
		}
		prev = d
		if r.Date.Before(util.DateOf(cutoff)) {
			continue
		}
		reports = append(reports, r)
	}

	a.l.Info("Applying transformations to Xetra source data finished...",
		applogger.Int("raw_rows", raw.Len()),
		applogger.Int("report_rows", len(reports)),
	)
	return reports, nil
}

// ToFrame renders typed rows under the target column names.
func (a *ReportAggregator) ToFrame(reports []models.DailyReport) *table.Frame {
	names := a.trg.Names()
	f := table.New(names...)
	f.SetKind(names[0], table.KindString)
	f.SetKind(names[1], table.KindString)
	for _, n := range names[2:] {
		f.SetKind(n, table.KindDouble)
	}
	for _, r := range reports {
		var change any
		if r.ChangePrevClosing != nil {
			change = *r.ChangePrevClosing
		}
		f.Rows = append(f.Rows, []any{
			r.ISIN,
			util.FormatDate(r.Date),
			r.OpeningPrice,
			r.ClosingPrice,
			r.MinimumPrice,
			r.MaximumPrice,
			r.DailyTradedVolume,
			change,
		})
	}
	return f
}

// FromFrame reads a report frame produced by ToFrame back into typed rows.
func (a *ReportAggregator) FromFrame(f *table.Frame) ([]models.DailyReport, error) {
	names := a.trg.Names()
	idx := make([]int, len(names))
	for i, n := range names {
		if idx[i] = f.Index(n); idx[i] < 0 {
			return nil, fmt.Errorf("report column %q: %w", n, drepo.ErrMissingColumn)
		}
	}

	out := make([]models.DailyReport, 0, f.Len())
	for i, row := range f.Rows {
		isin, _ := row[idx[0]].(string)
		dateStr, _ := row[idx[1]].(string)
		date, err := util.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("report row %d: %w", i+1, err)
		}
		r := models.DailyReport{ISIN: isin, Date: date}
		for j, dst := range []*float64{&r.OpeningPrice, &r.ClosingPrice, &r.MinimumPrice, &r.MaximumPrice, &r.DailyTradedVolume} {
			v, ok := util.ParseFloat(row[idx[2+j]])
			if !ok {
				return nil, fmt.Errorf("report row %d column %q: not numeric", i+1, names[2+j])
			}
			*dst = v
		}
		if v, ok := util.ParseFloat(row[idx[7]]); ok {
			r.ChangePrevClosing = &v
		}
		out = append(out, r)
	}
	return out, nil
}

type trade struct {
	isin   string
	date   time.Time
	time   string
	start  float64
	min    float64
	max    float64
	volume float64
	seq    int
}

type dayAgg struct {
	isin    string
	date    time.Time
	opening float64
	closing float64
	min     float64
	max     float64
	volume  float64
}

// parse projects the raw frame onto the configured columns and drops rows
// with a missing or unparsable value in any of them.
func (a *ReportAggregator) parse(raw *table.Frame) ([]trade, int, error) {
	required := a.src.required()
	for _, col := range required {
		if raw.Index(col) < 0 {
			return nil, 0, fmt.Errorf("source column %q: %w", col, drepo.ErrMissingColumn)
		}
	}
	reqIdx := make([]int, len(required))
	for i, col := range required {
		reqIdx[i] = raw.Index(col)
	}

	var (
		iISIN  = raw.Index(a.src.ISIN)
		iDate  = raw.Index(a.src.Date)
		iTime  = raw.Index(a.src.Time)
		iStart = raw.Index(a.src.StartPrice)
		iMin   = raw.Index(a.src.MinPrice)
		iMax   = raw.Index(a.src.MaxPrice)
		iVol   = raw.Index(a.src.TradedVol)
	)

	trades := make([]trade, 0, raw.Len())
	dropped := 0
rows:
	for seq, row := range raw.Rows {
		for _, i := range reqIdx {
			if row[i] == nil {
				dropped++
				continue rows
			}
		}
		t := trade{
			isin: table.FormatCell(row[iISIN]),
			time: table.FormatCell(row[iTime]),
			seq:  seq,
		}
		var err error
		if t.date, err = util.ParseDate(table.FormatCell(row[iDate])); err != nil {
			dropped++
			continue
		}
		for _, f := range []struct {
			dst *float64
			idx int
		}{{&t.start, iStart}, {&t.min, iMin}, {&t.max, iMax}, {&t.volume, iVol}} {
			v, ok := util.ParseFloat(row[f.idx])
			if !ok {
				dropped++
				continue rows
			}
			*f.dst = v
		}
		trades = append(trades, t)
	}
	return trades, dropped, nil
}

// groupDays aggregates trades per (isin, date) and returns the days ordered
// by isin then date.
func groupDays(trades []trade) []*dayAgg {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.isin != b.isin {
			return a.isin < b.isin
		}
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.time != b.time {
			return a.time < b.time
		}
		return a.seq < b.seq
	})

	var days []*dayAgg
	var cur *dayAgg
	for _, t := range trades {
		if cur == nil || cur.isin != t.isin || !cur.date.Equal(t.date) {
			cur = &dayAgg{
				isin:    t.isin,
				date:    t.date,
				opening: t.start,
				min:     t.min,
				max:     t.max,
			}
			days = append(days, cur)
		}
		cur.closing = t.start
		if t.min < cur.min {
			cur.min = t.min
		}
		if t.max > cur.max {
			cur.max = t.max
		}
		cur.volume += t.volume
	}
	return days
}

// round2 rounds half away from zero. Non-finite values are returned as is.
func round2(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
