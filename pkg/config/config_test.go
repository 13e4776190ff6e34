package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Concordance.MaxWordLength)
	assert.Equal(t, 16534, cfg.Concordance.MaxLineSummaryBytes)
	assert.Equal(t, []string{SinkStdout}, cfg.Output.Sinks)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concordance.yaml")
	data := `
concordance:
  maxWordLength: 20
  maxLineSummaryBytes: 64
logging:
  level: debug
  format: json
output:
  sinks: [stdout, file]
  file: /tmp/out.txt
redis:
  ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Concordance.MaxWordLength)
	assert.Equal(t, 64, cfg.Concordance.MaxLineSummaryBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{SinkStdout, SinkFile}, cfg.Output.Sinks)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "concordance", cfg.Postgres.Table)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concordance: [not, a, map"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONC_MAX_WORD_LENGTH", "10")
	t.Setenv("CONC_MAX_LINE_SUMMARY_BYTES", "not-a-number")
	t.Setenv("CONC_OUTPUT_SINKS", "stdout,redis")
	t.Setenv("CONC_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CONC_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Concordance.MaxWordLength)
	assert.Equal(t, DefaultMaxLineSummaryBytes, cfg.Concordance.MaxLineSummaryBytes)
	assert.Equal(t, []string{"stdout", "redis"}, cfg.Output.Sinks)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero word length", func(c *Config) { c.Concordance.MaxWordLength = 0 }},
		{"zero summary budget", func(c *Config) { c.Concordance.MaxLineSummaryBytes = 0 }},
		{"negative max entries", func(c *Config) { c.Concordance.MaxEntries = -1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"no sinks", func(c *Config) { c.Output.Sinks = nil }},
		{"unknown sink", func(c *Config) { c.Output.Sinks = []string{"s3"} }},
		{"duplicate sink", func(c *Config) { c.Output.Sinks = []string{"stdout", "stdout"} }},
		{"file without path", func(c *Config) { c.Output.Sinks = []string{SinkFile} }},
		{"redis without key", func(c *Config) {
			c.Output.Sinks = []string{SinkRedis}
			c.Redis.Key = ""
		}},
		{"kafka without topic", func(c *Config) {
			c.Output.Sinks = []string{SinkKafka}
			c.Kafka.Topic = ""
		}},
		{"postgres without table", func(c *Config) {
			c.Output.Sinks = []string{SinkPostgres}
			c.Postgres.Table = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
			assert.Equal(t, apperrors.ExitInvalidConfig, apperrors.ExitCode(err))
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Default().Postgres
	assert.Equal(t,
		"host=localhost port=5432 user=concordance password=localdev dbname=concordance sslmode=disable",
		cfg.DSN())
}
