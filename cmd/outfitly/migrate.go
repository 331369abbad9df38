package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"outfitly/internal/cache"
	"outfitly/internal/config"
	"outfitly/internal/database"
)

type configLoader func(cmd *cobra.Command) (*config.Config, error)

func migrateCmd(load configLoader) *cobra.Command {
	var status, seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if status {
				return database.Status(db)
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if seed || cfg.IsDev() {
				if err := database.Seed(db); err != nil {
					return err
				}
			}
			flushOutfitCache(cmd.Context(), cfg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print migration status instead of migrating")
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed reference data outside development")
	return cmd
}

// flushOutfitCache drops cached aggregates after a schema change, since
// their JSON shape may no longer match. Valkey being down is not fatal
// here.
func flushOutfitCache(ctx context.Context, cfg *config.Config) {
	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("skipping outfit cache flush", "error", err)
		return
	}
	defer client.Close()
	cache.NewOutfitCache(client, cfg.CacheTTL).InvalidateAll(ctx)
}
