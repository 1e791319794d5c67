package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mylibrary-rental/internal/config"
	"mylibrary-rental/internal/logger"
)

var configPath string

// rootCmd runs the server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "mylibrary-rental",
	Short: "Book rental service for mylibrary",
	Long: `mylibrary-rental records which user borrowed which book, when it is due
back and any late fee, and serves them over a HAL+JSON HTTP API.

Configuration is read from a YAML file and may be overridden with
environment variables (DB_HOST, DB_PASSWORD, SERVER_PORT, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")
}

// loadConfig reads the configuration and initializes the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
