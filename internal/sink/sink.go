// Package sink delivers the rendered concordance to its destinations:
// a stream (stdout), a file, a Redis list, a PostgreSQL table or a Kafka
// topic. Every sink receives the same rows, already sorted, exactly once.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/metrics"
)

// Sink consumes the final, ordered report.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []report.Row) error
}

// Deliver writes rows to every sink concurrently. The first failure cancels
// the context handed to the others. m may be nil.
func Deliver(ctx context.Context, sinks []Sink, rows []report.Row, m *metrics.Metrics) error {
	logger := slog.Default().With("component", "sink")
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			err := s.Write(gctx, rows)
			status := "ok"
			if err != nil {
				status = "error"
			}
			if m != nil {
				m.SinkWritesTotal.WithLabelValues(s.Name(), status).Inc()
			}
			if err != nil {
				logger.Error("sink write failed", "sink", s.Name(), "error", err)
				return fmt.Errorf("%w: %s: %v", apperrors.ErrSinkWrite, s.Name(), err)
			}
			logger.Debug("sink written", "sink", s.Name(), "rows", len(rows))
			return nil
		})
	}
	return g.Wait()
}
