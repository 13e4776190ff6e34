// Package metrics defines the Prometheus collectors for a concordance run.
// A run is short-lived, so instead of serving /metrics the collected values
// are written once to a textfile for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	Registry         *prometheus.Registry
	LinesReadTotal   prometheus.Counter
	TokensTotal      *prometheus.CounterVec
	UniqueWords      prometheus.Gauge
	TruncatedEntries prometheus.Gauge
	StageDuration    *prometheus.HistogramVec
	SinkWritesTotal  *prometheus.CounterVec
}

// New creates all collectors and registers them on a fresh registry, so
// repeated runs in one process (tests) never collide.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LinesReadTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "concordance_lines_read_total",
				Help: "Total input lines read.",
			},
		),
		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_tokens_total",
				Help: "Tokens recorded by outcome (created, added, duplicate, truncated, rejected, over_capacity).",
			},
			[]string{"outcome"},
		),
		UniqueWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "concordance_unique_words",
				Help: "Distinct words held by the index.",
			},
		),
		TruncatedEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "concordance_truncated_entries",
				Help: "Entries whose line summary hit the byte budget.",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concordance_stage_duration_seconds",
				Help:    "Wall time per pipeline stage (read, report, sink).",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_sink_writes_total",
				Help: "Report deliveries by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	m.Registry.MustRegister(
		m.LinesReadTotal,
		m.TokensTotal,
		m.UniqueWords,
		m.TruncatedEntries,
		m.StageDuration,
		m.SinkWritesTotal,
	)

	return m
}

// WriteTextfile writes the current values in the text exposition format.
// The file is written to a temporary name and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
