// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// CategoryStore manages categories and the outfit_categories association.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// AddToOutfit associates categoryIDs with an outfit in a single
// multi-row INSERT. Either every association is written or none is.
func (s *CategoryStore) AddToOutfit(ctx context.Context, outfitID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	values := make([]string, 0, len(categoryIDs))
	args := make([]any, 0, len(categoryIDs)+1)
	args = append(args, outfitID)
	for i, id := range categoryIDs {
		values = append(values, fmt.Sprintf("($1, $%d)", i+2))
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outfit_categories (outfit_id, category_id) VALUES `+strings.Join(values, ", "),
		args...)
	if err != nil {
		return fmt.Errorf("add outfit categories: %w", err)
	}
	return nil
}

// ClearOutfit removes every category association of an outfit.
func (s *CategoryStore) ClearOutfit(ctx context.Context, outfitID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM outfit_categories WHERE outfit_id = $1`, outfitID)
	if err != nil {
		return fmt.Errorf("clear outfit categories: %w", err)
	}
	return nil
}

// ListByOutfit returns the categories attached to an outfit. Duplicate
// associations are collapsed.
func (s *CategoryStore) ListByOutfit(ctx context.Context, outfitID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.name, c.created_at
		FROM categories c
		JOIN outfit_categories oc ON oc.category_id = c.id
		WHERE oc.outfit_id = $1
		ORDER BY c.name
	`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("list outfit categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
