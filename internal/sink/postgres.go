package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/resilience"
)

// Postgres replaces the contents of a table with one row per word. The
// table is created on first use; the load runs in a single transaction using
// COPY.
type Postgres struct {
	client *postgres.Client
	table  string
	retry  config.RetryConfig
}

func NewPostgres(client *postgres.Client, cfg config.PostgresConfig, retry config.RetryConfig) *Postgres {
	return &Postgres{client: client, table: cfg.Table, retry: retry}
}

func (p *Postgres) Name() string { return config.SinkPostgres }

func (p *Postgres) Write(ctx context.Context, rows []report.Row) error {
	return resilience.Retry(ctx, "postgres-sink", p.retry, func(ctx context.Context) error {
		return p.client.InTx(ctx, func(tx *sql.Tx) error {
			return p.load(ctx, tx, rows)
		})
	})
}

func (p *Postgres) load(ctx context.Context, tx *sql.Tx, rows []report.Row) error {
	table := pq.QuoteIdentifier(p.table)
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	word      TEXT PRIMARY KEY,
	lines     INTEGER[] NOT NULL,
	truncated BOOLEAN NOT NULL
)`, table)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(p.table, "word", "lines", "truncated"))
	if err != nil {
		return fmt.Errorf("preparing copy into %s: %w", table, err)
	}
	defer stmt.Close()
	for _, r := range rows {
		lines := r.Lines
		if lines == nil {
			lines = []int{}
		}
		if _, err := stmt.ExecContext(ctx, r.Word, pq.Array(lines), r.Truncated); err != nil {
			return fmt.Errorf("copying word %q: %w", r.Word, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flushing copy into %s: %w", table, err)
	}
	return nil
}
