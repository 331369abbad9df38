// Package main is the entry point for the outfitly API server. The root
// command serves the API; subcommands run migrations and mint development
// tokens.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"outfitly/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	// loadConfig reads the environment and installs the logger. The flag
	// wins over LOG_LEVEL when given.
	loadConfig := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		setupLogger(level)
		return cfg, nil
	}

	root := &cobra.Command{
		Use:          "outfitly",
		Short:        "Outfit catalog API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and serve the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		migrateCmd(loadConfig),
		tokenCmd(loadConfig),
	)
	return root
}

// setupLogger installs a text slog handler at the named level.
func setupLogger(name string) {
	level := slog.LevelInfo
	switch strings.ToLower(name) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
