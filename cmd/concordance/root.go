package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/concordance/internal/source"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/metrics"
)

type rootOptions struct {
	configPath      string
	maxWordLength   int
	maxSummaryBytes int
	maxEntries      int
	logLevel        string
	logFormat       string
	sinks           []string
	output          string
	metricsFile     string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "concordance [file...]",
		Short: "List every word of a text with the lines it appears on",
		Long: `concordance reads text from the named files (or stdin when none are given,
or for "-") and prints each distinct word, lower-cased, followed by the
numbers of the lines it occurs on:

    cat 1 2
    dog 2

Words are runs of letters and apostrophes; hyphens split words. Words longer
than --max-word-length are ignored, and a word's line list stops growing once
its rendered form would exceed --max-summary-bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}
			return run(cmd, cfg, args, stdin, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	f.IntVar(&opts.maxWordLength, "max-word-length", config.DefaultMaxWordLength, "Ignore words longer than this many letters")
	f.IntVar(&opts.maxSummaryBytes, "max-summary-bytes", config.DefaultMaxLineSummaryBytes, "Stop adding line numbers to a word once its line list would exceed this many bytes")
	f.IntVar(&opts.maxEntries, "max-entries", 0, "Fail once more than this many distinct words are seen (0 = unlimited)")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	f.StringSliceVar(&opts.sinks, "sink", nil, "Output sink (stdout, file, redis, postgres, kafka); repeatable")
	f.StringVarP(&opts.output, "output", "o", "", "Write the listing to this file instead of stdout unless --sink is given")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file when done")

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// loadConfig layers defaults, the config file, CONC_* variables and finally
// explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("max-word-length") {
		cfg.Concordance.MaxWordLength = opts.maxWordLength
	}
	if f.Changed("max-summary-bytes") {
		cfg.Concordance.MaxLineSummaryBytes = opts.maxSummaryBytes
	}
	if f.Changed("max-entries") {
		cfg.Concordance.MaxEntries = opts.maxEntries
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if f.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if f.Changed("output") {
		cfg.Output.File = opts.output
		if !f.Changed("sink") {
			cfg.Output.Sinks = []string{config.SinkFile}
		}
	}
	if f.Changed("sink") {
		cfg.Output.Sinks = opts.sinks
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	logger.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("starting concordance",
		"inputs", len(args),
		"sinks", cfg.Output.Sinks,
		"max_word_length", cfg.Concordance.MaxWordLength,
		"max_summary_bytes", cfg.Concordance.MaxLineSummaryBytes,
	)

	m := metrics.New()
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				slog.Error("metrics export failed", "error", err)
			}
		}()
	}

	sinks, closeSinks, err := sink.Build(cfg, stdout)
	defer func() {
		if err := closeSinks(); err != nil {
			slog.Error("closing sinks", "error", err)
		}
	}()
	if err != nil {
		return err
	}

	src := source.NewFiles(args, stdin)
	defer src.Close()

	engine := concordance.NewEngine(cfg.Concordance, m)
	return engine.Run(cmd.Context(), src, sinks)
}
