package main

import (
	"fmt"
	"path"

	"github.com/newthinker/perfscope/internal/collector/cached"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the price history cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List cached history entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [prefix]",
	Short: "Delete cached history entries",
	Long:  "Delete cached history entries. The optional prefix is relative to the cache root, e.g. yahoo/AAPL.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Prefetch history for every ticker and benchmark in the universe",
	RunE:  runCacheWarm,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd, cacheWarmCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cachePrefix(args []string) string {
	if len(args) == 0 {
		return cached.Prefix
	}
	return path.Join(cached.Prefix, args[0])
}

func runCacheList(cmd *cobra.Command, args []string) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	store, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening history cache: %w", err)
	}

	paths, err := store.List(cmd.Context(), cachePrefix(args))
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintf(out, "%d entries\n", len(paths))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	store, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening history cache: %w", err)
	}

	ctx := cmd.Context()
	paths, err := store.List(ctx, cachePrefix(args))
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}
	for _, p := range paths {
		if err := store.Delete(ctx, p); err != nil {
			return fmt.Errorf("deleting %s: %w", p, err)
		}
		log.Debug("deleted cache entry", zap.String("path", p))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", len(paths))
	return nil
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return fmt.Errorf("cache is disabled; set cache.enabled to warm it")
	}

	a, err := buildApp(cfg, log, nil)
	if err != nil {
		return err
	}
	res, err := a.Warm(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fetched %d symbols\n", res.Fetched)
	for _, sym := range res.Failed {
		fmt.Fprintf(out, "failed: %s\n", sym)
	}
	return nil
}
