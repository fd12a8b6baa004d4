package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XetraPull/internal/domain/models"
)

func TestBuildReportInsert(t *testing.T) {
	change := 10.62
	rows := []models.DailyReport{
		{ISIN: "AT0000A0E9W5", Date: time.Date(2021, 4, 17, 0, 0, 0, 0, time.UTC), OpeningPrice: 20.21, ClosingPrice: 18.27, MinimumPrice: 18.21, MaximumPrice: 21.34, DailyTradedVolume: 1088, ChangePrevClosing: &change},
		{ISIN: "AT0000A0E9W5", Date: time.Date(2021, 4, 18, 0, 0, 0, 0, time.UTC), OpeningPrice: 20.58},
	}

	q, args := buildReportInsert("xetra.daily_report", "report1/xetra_daily_report1_20210420_100000.parquet", rows)

	assert.True(t, strings.HasPrefix(q, "INSERT INTO xetra.daily_report (isin, date,"))
	assert.Equal(t, 2, strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	require.Len(t, args, 18)
	assert.Equal(t, "AT0000A0E9W5", args[0])
	assert.Equal(t, &change, args[7])
	assert.Equal(t, "report1/xetra_daily_report1_20210420_100000.parquet", args[8])
	assert.Nil(t, args[16])
}

func TestStoreReportEmptyIsNoop(t *testing.T) {
	sink := NewClickHouseReportSink(nil, "xetra.daily_report", nil)
	require.NoError(t, sink.StoreReport(context.Background(), "k", nil))
	require.NoError(t, sink.Close())
}

func TestReportSchema(t *testing.T) {
	stmts := ReportSchema("xetra", "daily_report")
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS xetra", stmts[0])
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS xetra.daily_report")
	assert.Contains(t, stmts[1], "change_prev_closing_pct Nullable(Float64)")
}
