package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// Collectors live on a private registry so a batch run can push exactly
// its own series to a Pushgateway.
type Recorder struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	rowsTotal   *prometheus.CounterVec
	datesTotal  prometheus.Counter
	errorsTotal *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xetrapull_runs_total",
				Help: "Total number of ETL runs by result",
			},
			[]string{"result"},
		),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xetrapull_rows_total",
				Help: "Rows handled per pipeline stage",
			},
			[]string{"stage"},
		),
		datesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xetrapull_dates_processed_total",
				Help: "Source dates appended to the watermark",
			},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xetrapull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "xetrapull_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xetrapull_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
	r.registry.MustRegister(r.runsTotal, r.rowsTotal, r.datesTotal, r.errorsTotal, r.lastSuccess, r.latency)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRun counts a finished run; result is "ok" or "error".
func (r *Recorder) RecordRun(result string, unixSeconds float64) {
	r.runsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		r.lastSuccess.Set(unixSeconds)
	}
}

// RecordRows adds n rows to a stage counter.
func (r *Recorder) RecordRows(stage string, n int) {
	r.rowsTotal.WithLabelValues(stage).Add(float64(n))
}

// RecordDates counts dates committed to the watermark.
func (r *Recorder) RecordDates(n int) {
	r.datesTotal.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}

// Push sends the registry to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
