package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/concordance/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/resilience"
)

// Build connects every sink listed in cfg.Output.Sinks. The returned close
// function releases the connections the sinks hold and is safe to call when
// Build fails part way.
func Build(cfg *config.Config, stdout io.Writer) ([]Sink, func() error, error) {
	var (
		sinks   []Sink
		closers []io.Closer
	)
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		closers = nil
		return errors.Join(errs...)
	}

	for _, name := range cfg.Output.Sinks {
		switch name {
		case config.SinkStdout:
			sinks = append(sinks, NewStream(config.SinkStdout, stdout))
		case config.SinkFile:
			sinks = append(sinks, NewFile(cfg.Output.File))
		case config.SinkRedis:
			client, err := pkgredis.NewClient(cfg.Redis)
			if err != nil {
				return nil, closeAll, fmt.Errorf("connecting redis sink: %w", err)
			}
			closers = append(closers, client)
			sinks = append(sinks, WithTimeout(NewRedis(client, cfg.Redis, cfg.Retry), cfg.Output.Timeout))
		case config.SinkPostgres:
			client, err := postgres.New(cfg.Postgres)
			if err != nil {
				return nil, closeAll, fmt.Errorf("connecting postgres sink: %w", err)
			}
			closers = append(closers, client)
			sinks = append(sinks, WithTimeout(NewPostgres(client, cfg.Postgres, cfg.Retry), cfg.Output.Timeout))
		case config.SinkKafka:
			producer := kafka.NewProducer(cfg.Kafka)
			closers = append(closers, producer)
			sinks = append(sinks, WithTimeout(NewKafka(producer, cfg.Retry), cfg.Output.Timeout))
		default:
			return nil, closeAll, fmt.Errorf("unknown sink %q", name)
		}
	}
	return sinks, closeAll, nil
}

type timed struct {
	Sink
	timeout time.Duration
}

// WithTimeout bounds every Write of s by d. A non-positive d returns s.
func WithTimeout(s Sink, d time.Duration) Sink {
	if d <= 0 {
		return s
	}
	return &timed{Sink: s, timeout: d}
}

func (t *timed) Write(ctx context.Context, rows []report.Row) error {
	return resilience.WithTimeout(ctx, t.timeout, t.Name(), func(ctx context.Context) error {
		return t.Sink.Write(ctx, rows)
	})
}
