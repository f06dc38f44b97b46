package main

import (
	"fmt"
	"os"

	"github.com/jujojujoju/auto-chart-analysis/internal/cli"
	"github.com/jujojujoju/auto-chart-analysis/internal/config"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.Logging.LogConfig())

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
