// Package concordance drives a run: it pulls lines from a source, records
// every token against its 1-based line number, and once the source is
// exhausted renders the sorted listing and hands it to the output sinks.
package concordance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/index"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/source"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/metrics"
)

type Engine struct {
	index     *index.Index
	metrics   *metrics.Metrics
	logger    *slog.Logger
	line      int
	truncated int
	// outcomes caches one counter per index.Outcome.
	outcomes []prometheus.Counter
}

// NewEngine returns an engine with an empty index. m may be nil.
func NewEngine(cfg config.ConcordanceConfig, m *metrics.Metrics, opts ...index.Option) *Engine {
	e := &Engine{
		index:   index.New(cfg, opts...),
		metrics: m,
		logger:  slog.Default().With("component", "engine"),
	}
	if m != nil {
		for o := index.Created; o <= index.OverCapacity; o++ {
			e.outcomes = append(e.outcomes, m.TokensTotal.WithLabelValues(o.String()))
		}
	}
	return e
}

// Index exposes the accumulated concordance.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Consume reads src to the end, recording every token. Line numbering
// continues across calls.
func (e *Engine) Consume(src source.LineSource) error {
	start := time.Now()
	defer e.observe("read", start)
	for {
		text, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading line %d: %w", e.line+1, err)
		}
		e.line++
		if e.metrics != nil {
			e.metrics.LinesReadTotal.Inc()
		}
		for word := range tokenizer.Tokens(text) {
			if err := e.record(word); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) record(word string) error {
	out := e.index.Record(word, e.line)
	if e.outcomes != nil {
		e.outcomes[out].Inc()
	}
	switch out {
	case index.Rejected:
		e.logger.Debug("token rejected", "line", e.line, "length", len(word))
	case index.Truncated:
		// Only the first dropped line of each entry is logged.
		if n := e.index.Stats().TruncatedEntries; n > e.truncated {
			e.truncated = n
			e.logger.Debug("line summary truncated", "word", word, "line", e.line)
		}
	case index.OverCapacity:
		return apperrors.Newf(apperrors.ErrResourceExhausted, apperrors.ExitResourceExhausted,
			"index holds %d words, cannot add %q on line %d", e.index.Len(), word, e.line)
	}
	return nil
}

// Report renders the sorted listing of everything consumed so far.
func (e *Engine) Report() []report.Row {
	start := time.Now()
	defer e.observe("report", start)
	rows := report.Render(e.index.Entries())
	stats := e.index.Stats()
	if e.metrics != nil {
		e.metrics.UniqueWords.Set(float64(stats.Entries))
		e.metrics.TruncatedEntries.Set(float64(stats.TruncatedEntries))
	}
	return rows
}

// Run consumes src, renders the listing once and delivers it to every sink.
func (e *Engine) Run(ctx context.Context, src source.LineSource, sinks []sink.Sink) error {
	started := time.Now()
	if err := e.Consume(src); err != nil {
		return err
	}
	rows := e.Report()

	deliverStart := time.Now()
	err := sink.Deliver(ctx, sinks, rows, e.metrics)
	e.observe("sink", deliverStart)
	if err != nil {
		return err
	}

	stats := e.index.Stats()
	e.logger.Info("concordance complete",
		"lines", e.line,
		"unique_words", stats.Entries,
		"rejected_tokens", stats.Rejected,
		"truncated_entries", stats.TruncatedEntries,
		"dropped_lines", stats.DroppedLines,
		"sinks", len(sinks),
		"duration", time.Since(started),
	)
	return nil
}

func (e *Engine) observe(stage string, start time.Time) {
	if e.metrics != nil {
		e.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
