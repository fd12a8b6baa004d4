package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "XetraPull/internal/domain/repository"
	"XetraPull/internal/repository"
	"XetraPull/internal/usecase"
	"XetraPull/pkg/config"
	"XetraPull/pkg/metrics"
	"XetraPull/pkg/util"
)

const header = "ISIN,Mnemonic,Date,Time,StartPrice,EndPrice,MinPrice,MaxPrice,TradedVolume"

func newETL(t *testing.T, rec *metrics.Recorder, format drepo.Format) (*usecase.ReportETL, *repository.MemoryTableStore) {
	t.Helper()
	now, err := time.Parse(util.TimestampLayout, "2021-04-19 10:00:00")
	require.NoError(t, err)
	clock := func() time.Time { return now }

	src := repository.NewMemoryTableStore("src", nil)
	src.PutObject("2021-04-19/2021-04-19_BINS_XETR07.csv",
		[]byte(header+"\nAT0000A0E9W5,SANT,2021-04-19,07:00,23.58,23.58,23.58,23.58,1035\n"))
	trg := repository.NewMemoryTableStore("trg", nil)

	agg := usecase.NewReportAggregator(usecase.SourceColumns{
		All:        strings.Split(header, ","),
		ISIN:       "ISIN",
		Date:       "Date",
		Time:       "Time",
		StartPrice: "StartPrice",
		MinPrice:   "MinPrice",
		MaxPrice:   "MaxPrice",
		TradedVol:  "TradedVolume",
	}, usecase.TargetColumns{
		ISIN:              "isin",
		Date:              "date",
		OpeningPrice:      "opening_price_eur",
		ClosingPrice:      "closing_price_eur",
		MinimumPrice:      "minimum_price_eur",
		MaximumPrice:      "maximum_price_eur",
		DailyTradedVolume: "daily_traded_volume",
		ChangePrevClosing: "change_prev_closing_%",
	}, nil)

	first, err := util.ParseDate("2021-04-19")
	require.NoError(t, err)

	etl, err := usecase.NewReportETL(context.Background(), src, trg,
		usecase.NewWatermarkService(trg, "meta_file.csv", nil, usecase.WithClock(clock)),
		agg,
		usecase.ReportTarget{Key: "report1/xetra_daily_report1_", KeyDateFormat: "20060102_150405", Format: format},
		first, nil,
		usecase.WithETLClock(clock), usecase.WithMetrics(rec),
	)
	require.NoError(t, err)
	return etl, trg
}

func TestAppRunPushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/metrics/job/xetra_report") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	cfg := &config.Config{}
	cfg.Metrics.PushgatewayURL = gw.URL
	cfg.Metrics.JobName = "xetra_report"
	cfg.Metrics.PushTimeout = time.Second

	rec := metrics.New()
	etl, trg := newETL(t, rec, drepo.FormatCSV)

	app := New(cfg, etl, rec, nil)

	summary, err := app.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "report1/xetra_daily_report1_20210419_100000.csv", summary.ReportKey)
	assert.Equal(t, []string{"meta_file.csv", summary.ReportKey}, trg.Keys())
	assert.Equal(t, int32(1), pushes.Load())
}

func TestAppRunFailureStillPushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	cfg := &config.Config{}
	cfg.Metrics.PushgatewayURL = gw.URL
	cfg.Metrics.JobName = "xetra_report"
	cfg.Metrics.PushTimeout = time.Second

	rec := metrics.New()
	etl, trg := newETL(t, rec, drepo.Format("xlsx"))

	app := New(cfg, etl, rec, nil)

	summary, err := app.Run(context.Background())
	assert.ErrorIs(t, err, drepo.ErrWrongFormat)
	assert.Nil(t, summary)
	assert.Equal(t, int32(1), pushes.Load())
	assert.Empty(t, trg.Keys())
}
