package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "holdings",
	Short: "HOLDINGS - institutional holdings analytics",
	Long: `HOLDINGS derives cross-investor signals from quarterly holdings filings:
momentum shifts, exits, new discoveries, capital flows, sector rollups and
portfolio concentration.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
