// Package server holds the batch application lifecycle: one ETL run
// followed by a metrics push.
package server

import (
	"context"

	"XetraPull/internal/domain/models"
	"XetraPull/internal/usecase"
	"XetraPull/pkg/config"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/metrics"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg     *config.Config
	etl     *usecase.ReportETL
	metrics *metrics.Recorder
	l       *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, etl *usecase.ReportETL, rec *metrics.Recorder, l *applogger.Logger) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, etl: etl, metrics: rec, l: l}
}

// Run executes the report job once. Metrics are pushed whether or not the
// job succeeded.
func (a *App) Run(ctx context.Context) (*models.RunSummary, error) {
	window := a.etl.Window()
	if window.Done() {
		a.l.Info("no new source dates to process")
	} else {
		a.l.Info("extraction window resolved",
			applogger.Date("cutoff_date", window.CutoffDate),
			applogger.Int("dates", len(window.Dates)),
		)
	}

	summary, err := a.etl.Run(ctx)
	if err != nil {
		a.l.Error("xetra etl job failed", applogger.Error(err))
	}

	a.pushMetrics(ctx)
	return summary, err
}

func (a *App) pushMetrics(ctx context.Context) {
	url := a.cfg.Metrics.PushgatewayURL
	if url == "" || a.metrics == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, a.cfg.Metrics.PushTimeout)
	defer cancel()
	if err := a.metrics.Push(pctx, url, a.cfg.Metrics.JobName); err != nil {
		a.l.Warn("metrics push error", applogger.String("url", url), applogger.Error(err))
		return
	}
	a.l.Debug("metrics pushed", applogger.String("url", url))
}
