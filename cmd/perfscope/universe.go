package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List regions, benchmarks and tickers",
	RunE:  runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.Header("Region", "Symbol", "Name", "Role")
	for _, region := range cfg.Universe().Regions() {
		if err := table.Append(region.Name, region.Benchmark.Symbol, region.Benchmark.Name, "benchmark"); err != nil {
			return err
		}
		for _, t := range region.Tickers {
			if err := table.Append(region.Name, t.Symbol, t.Name, ""); err != nil {
				return err
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Default region %s, period %s, risk-free rate %.2f%%\n",
		cfg.Analysis.Region, cfg.Analysis.Period, cfg.Analysis.RiskFreeRate*100)
	return nil
}
