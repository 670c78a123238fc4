package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/perfscope/internal/api"
	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/metrics"
	"github.com/newthinker/perfscope/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the perfscope HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	a, err := buildApp(cfg, log, reg)
	if err != nil {
		return err
	}

	log.Info("starting perfscope server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("source", cfg.Collector.Source),
		zap.Bool("auth", cfg.Server.APIKey != ""),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: metricsPath,
	}, api.Dependencies{App: a, Metrics: reg}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if cfg.Cache.Enabled && cfg.Cache.WarmSchedule != "" {
		sched, err := startWarmer(a, cfg.Cache.WarmSchedule, log)
		if err != nil {
			return err
		}
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down perfscope server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

// startWarmer schedules the history cache prefetch.
func startWarmer(a *app.App, spec string, log *zap.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log)
	job := scheduler.NewFuncJob("history-warm", spec, func(ctx context.Context) error {
		_, err := a.Warm(ctx)
		return err
	})
	if err := sched.Add(job); err != nil {
		return nil, fmt.Errorf("scheduling cache warm-up: %w", err)
	}
	sched.Start()
	return sched, nil
}
