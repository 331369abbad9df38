package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Reference data seeded in development. Seasons and colors are consumed
// by outfits but never mutated by the API.
var (
	seedSeasons = []string{"spring", "summer", "autumn", "winter"}

	seedColors = []struct{ name, hex string }{
		{"black", "#000000"},
		{"white", "#FFFFFF"},
		{"beige", "#F5F5DC"},
		{"navy", "#000080"},
		{"olive", "#808000"},
		{"burgundy", "#800020"},
	}

	seedCategories = []string{"casual", "office", "evening", "sport", "streetwear"}
)

// Seed populates the reference tables with development data. Rows are
// inserted with ON CONFLICT DO NOTHING so repeated calls are harmless.
func Seed(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, name := range seedSeasons {
		if _, err := tx.Exec(`INSERT INTO seasons (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed season %s: %w", name, err)
		}
	}
	for _, c := range seedColors {
		if _, err := tx.Exec(`INSERT INTO colors (name, hex) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, c.name, c.hex); err != nil {
			return fmt.Errorf("seed color %s: %w", c.name, err)
		}
	}
	for _, name := range seedCategories {
		if _, err := tx.Exec(`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("reference data seeded",
		"seasons", len(seedSeasons),
		"colors", len(seedColors),
		"categories", len(seedCategories),
	)
	return nil
}
