package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"XetraPull/internal/domain/models"
	domrepo "XetraPull/internal/domain/repository"
	applogger "XetraPull/pkg/logger"
)

const insertChunkSize = 2000

// ClickHouseReportSink implements ReportSink for ClickHouse.
type ClickHouseReportSink struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseReportSink creates a sink writing to table (database.table).
func NewClickHouseReportSink(db *sql.DB, table string, l *applogger.Logger) domrepo.ReportSink {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseReportSink{db: db, table: table, l: l}
}

// ReportSchema returns the idempotent DDL for the report table.
func ReportSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    isin String,
    date Date,
    opening_price Float64,
    closing_price Float64,
    minimum_price Float64,
    maximum_price Float64,
    daily_traded_volume Float64,
    change_prev_closing_pct Nullable(Float64),
    report_key String
) ENGINE = ReplacingMergeTree ORDER BY (isin, date)`, database, table),
	}
}

func (s *ClickHouseReportSink) StoreReport(ctx context.Context, reportKey string, rows []models.DailyReport) error {
	if len(rows) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		q, args := buildReportInsert(s.table, reportKey, rows[start:end])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse report insert error",
				applogger.String("table", s.table),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("insert report rows: %w", err)
		}
	}
	s.l.Info("report mirrored to clickhouse", applogger.String("table", s.table), applogger.Int("rows", len(rows)))
	return nil
}

func (s *ClickHouseReportSink) Close() error {
	return nil // pool owned by pkg/clickhouse.Client
}

func buildReportInsert(table, reportKey string, rows []models.DailyReport) (string, []interface{}) {
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*9)
	for _, r := range rows {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.ISIN,
			r.Date,
			r.OpeningPrice,
			r.ClosingPrice,
			r.MinimumPrice,
			r.MaximumPrice,
			r.DailyTradedVolume,
			r.ChangePrevClosing,
			reportKey,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (isin, date, opening_price, closing_price, minimum_price, maximum_price, daily_traded_volume, change_prev_closing_pct, report_key) VALUES %s",
		table, strings.Join(values, ","))
	return q, args
}
