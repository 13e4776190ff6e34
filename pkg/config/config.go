// Package config loads and validates concordance configuration from an
// optional YAML file with CONC_* environment-variable overrides. Output sinks
// that talk to external systems (Redis, PostgreSQL, Kafka) carry their own
// typed sections.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/logger"
)

// Sink names accepted in output.sinks.
const (
	SinkStdout   = "stdout"
	SinkFile     = "file"
	SinkRedis    = "redis"
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"
)

// Defaults for the concordance limits.
const (
	DefaultMaxWordLength       = 45
	DefaultMaxLineSummaryBytes = 16534
)

// Config is the top-level application configuration.
type Config struct {
	Concordance ConcordanceConfig `yaml:"concordance"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Output      OutputConfig      `yaml:"output"`
	Redis       RedisConfig       `yaml:"redis"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Retry       RetryConfig       `yaml:"retry"`
}

// ConcordanceConfig holds the tokenizer and index limits.
type ConcordanceConfig struct {
	MaxWordLength       int `yaml:"maxWordLength"`
	MaxLineSummaryBytes int `yaml:"maxLineSummaryBytes"`
	// MaxEntries caps the number of distinct words; 0 means unbounded.
	MaxEntries int `yaml:"maxEntries"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// OutputConfig selects where report lines go.
type OutputConfig struct {
	Sinks []string `yaml:"sinks"`
	File  string   `yaml:"file"`
	// Timeout bounds each delivery to a network sink, retries included.
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig holds Redis connection parameters and the list key the report
// is stored under.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Table           string        `yaml:"table"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RetryConfig controls backoff for network sinks.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults. The result is not validated; callers apply
// flag overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, apperrors.ExitInvalidConfig,
				"parsing config file %s: %v", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config that reads stdin and writes to stdout with the
// classic limits.
func Default() *Config {
	return &Config{
		Concordance: ConcordanceConfig{
			MaxWordLength:       DefaultMaxWordLength,
			MaxLineSummaryBytes: DefaultMaxLineSummaryBytes,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Sinks:   []string{SinkStdout},
			Timeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 4,
			Key:      "concordance",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "concordance",
			User:            "concordance",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			Table:           "concordance",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "concordance",
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}
}

// Validate checks the config for values the pipeline cannot run with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apperrors.Newf(apperrors.ErrInvalidConfig, apperrors.ExitInvalidConfig, format, args...)
	}
	if c.Concordance.MaxWordLength < 1 {
		return invalid("maxWordLength must be positive, got %d", c.Concordance.MaxWordLength)
	}
	if c.Concordance.MaxLineSummaryBytes < 1 {
		return invalid("maxLineSummaryBytes must be positive, got %d", c.Concordance.MaxLineSummaryBytes)
	}
	if c.Concordance.MaxEntries < 0 {
		return invalid("maxEntries must not be negative, got %d", c.Concordance.MaxEntries)
	}
	if err := logger.ValidLevel(c.Logging.Level); err != nil {
		return invalid("%v", err)
	}
	if err := logger.ValidFormat(c.Logging.Format); err != nil {
		return invalid("%v", err)
	}
	if len(c.Output.Sinks) == 0 {
		return invalid("at least one output sink is required")
	}
	seen := make(map[string]struct{}, len(c.Output.Sinks))
	for _, s := range c.Output.Sinks {
		if _, dup := seen[s]; dup {
			return invalid("sink %q listed twice", s)
		}
		seen[s] = struct{}{}
		switch s {
		case SinkStdout:
		case SinkFile:
			if c.Output.File == "" {
				return invalid("file sink requires output.file")
			}
		case SinkRedis:
			if c.Redis.Addr == "" || c.Redis.Key == "" {
				return invalid("redis sink requires redis.addr and redis.key")
			}
		case SinkPostgres:
			if c.Postgres.Table == "" {
				return invalid("postgres sink requires postgres.table")
			}
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return invalid("kafka sink requires kafka.brokers and kafka.topic")
			}
		default:
			return invalid("unknown sink %q", s)
		}
	}
	return nil
}

// applyEnvOverrides reads CONC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONC_MAX_WORD_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concordance.MaxWordLength = n
		}
	}
	if v := os.Getenv("CONC_MAX_LINE_SUMMARY_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concordance.MaxLineSummaryBytes = n
		}
	}
	if v := os.Getenv("CONC_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concordance.MaxEntries = n
		}
	}
	if v := os.Getenv("CONC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CONC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CONC_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("CONC_OUTPUT_SINKS"); v != "" {
		cfg.Output.Sinks = strings.Split(v, ",")
	}
	if v := os.Getenv("CONC_OUTPUT_FILE"); v != "" {
		cfg.Output.File = v
	}
	if v := os.Getenv("CONC_OUTPUT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Output.Timeout = d
		}
	}
	if v := os.Getenv("CONC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CONC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CONC_REDIS_KEY"); v != "" {
		cfg.Redis.Key = v
	}
	if v := os.Getenv("CONC_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("CONC_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("CONC_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("CONC_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("CONC_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("CONC_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("CONC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CONC_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
}
