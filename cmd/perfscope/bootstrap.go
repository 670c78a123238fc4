package main

import (
	"fmt"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/collector/cached"
	"github.com/newthinker/perfscope/internal/collector/csvfile"
	"github.com/newthinker/perfscope/internal/collector/yahoo"
	"github.com/newthinker/perfscope/internal/config"
	"github.com/newthinker/perfscope/internal/logger"
	"github.com/newthinker/perfscope/internal/metrics"
	"github.com/newthinker/perfscope/internal/storage/archive"
	"go.uber.org/zap"
)

// newLogger builds the command logger. Quiet commands only log warnings
// unless --debug is set.
func newLogger(quiet bool) (*zap.Logger, error) {
	opts := logger.Options{Development: debug}
	if quiet && !debug {
		opts.Level = "warn"
	}
	return logger.NewWithOptions(opts)
}

// loadConfig reads --config when given. Without a file the defaults apply,
// overridden by PERFSCOPE_* environment variables.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// openArchive opens the history cache backend.
func openArchive(cfg *config.Config) (archive.Storage, error) {
	s3 := cfg.Cache.S3
	return archive.New(archive.Config{
		Type: cfg.Cache.Type,
		Path: cfg.Cache.Path,
		S3: archive.S3Config{
			Bucket:    s3.Bucket,
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Prefix:    s3.Prefix,
		},
	})
}

// newCollector builds the configured history source, wrapped in the cache
// when enabled.
func newCollector(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (collector.Collector, error) {
	var src collector.Collector
	switch cfg.Collector.Source {
	case "", "yahoo":
		src = yahoo.New()
	case "csvfile":
		src = csvfile.New(cfg.Collector.Path)
	default:
		return nil, fmt.Errorf("unknown collector source %q", cfg.Collector.Source)
	}

	if err := src.Init(collector.Config{
		BaseURL:           cfg.Collector.BaseURL,
		Timeout:           cfg.Collector.Timeout,
		RequestsPerSecond: cfg.Collector.RequestsPerSecond,
		Burst:             cfg.Collector.Burst,
		Path:              cfg.Collector.Path,
	}); err != nil {
		return nil, fmt.Errorf("initializing %s collector: %w", src.Name(), err)
	}

	if !cfg.Cache.Enabled {
		return src, nil
	}

	store, err := openArchive(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening history cache: %w", err)
	}
	var rec cached.Recorder
	if reg != nil {
		rec = reg
	}
	log.Info("history cache enabled", zap.String("type", cfg.Cache.Type))
	return cached.New(src, store, log, rec), nil
}

// buildApp wires the application service. reg may be nil.
func buildApp(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*app.App, error) {
	src, err := newCollector(cfg, log, reg)
	if err != nil {
		return nil, err
	}

	a := app.New(cfg, log)
	a.RegisterCollector(src)
	if reg != nil {
		a.SetRecorder(reg)
	}
	return a, nil
}
