// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"outfitly/internal/models"
)

// ReferenceStore reads the seasons and colors reference tables.
type ReferenceStore struct {
	db *sql.DB
}

// NewReferenceStore returns a new ReferenceStore.
func NewReferenceStore(db *sql.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// ListSeasons returns all seasons ordered by name.
func (s *ReferenceStore) ListSeasons(ctx context.Context) ([]models.Season, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM seasons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	items := []models.Season{}
	for rows.Next() {
		var v models.Season
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// ListColors returns all colors ordered by name.
func (s *ReferenceStore) ListColors(ctx context.Context) ([]models.Color, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, hex FROM colors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	defer rows.Close()

	items := []models.Color{}
	for rows.Next() {
		var v models.Color
		if err := rows.Scan(&v.ID, &v.Name, &v.Hex); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
