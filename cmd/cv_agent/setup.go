package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/rendering"
)

// loadSettings builds the effective configuration: config file, then flags
// that were explicitly set, then the environment, then defaults.
func loadSettings(cmd *cobra.Command, override func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if override != nil {
		override(&cfg)
	}

	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger writes diagnostics to stderr so stdout stays readable
func newLogger(cfg config.Config, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// newGateway connects to Gemini and wraps the client in the failover gateway.
// The returned close func releases the client.
func newGateway(ctx context.Context, cfg config.Config, log logrus.FieldLogger, opts ...gateway.Option) (*gateway.Gateway, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("%s environment variable or --api-key flag is required", config.EnvAPIKey)
	}

	client, err := llm.NewGeminiClient(ctx, cfg.APIKey, llm.DefaultClientConfig())
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Debug("failed to close Gemini client")
		}
	}

	opts = append([]gateway.Option{gateway.WithLogger(log)}, opts...)
	gw, err := gateway.New(client, cfg.Gateway.Gateway(), opts...)
	if err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("invalid gateway config: %w", err)
	}
	return gw, closeClient, nil
}

// openRecorder connects the run recorder when a database is configured.
// Without DATABASE_URL it returns a nil recorder and a no-op close.
func openRecorder(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*db.Recorder, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	return db.NewRecorder(database, log), database.Close, nil
}

// reportRenderer selects the skill report format
func reportRenderer(cfg config.Config) rendering.ReportRenderer {
	if cfg.ReportFormat == config.ReportPDF {
		return rendering.PDFReportRenderer{ChromePath: cfg.ChromePath}
	}
	return rendering.TextReportRenderer{}
}

// stderrLogger is the default diagnostics sink
func stderrLogger(cfg config.Config) *logrus.Logger {
	return newLogger(cfg, os.Stderr)
}
