package sink

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/concordance/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/resilience"
)

// Redis stores the rendered lines, in order, as the list at key.
type Redis struct {
	client *pkgredis.Client
	key    string
	ttl    time.Duration
	retry  config.RetryConfig
}

func NewRedis(client *pkgredis.Client, cfg config.RedisConfig, retry config.RetryConfig) *Redis {
	return &Redis{client: client, key: cfg.Key, ttl: cfg.TTL, retry: retry}
}

func (r *Redis) Name() string { return config.SinkRedis }

func (r *Redis) Write(ctx context.Context, rows []report.Row) error {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.String()
	}
	return resilience.Retry(ctx, "redis-sink", r.retry, func(ctx context.Context) error {
		return r.client.ReplaceList(ctx, r.key, lines, r.ttl)
	})
}
