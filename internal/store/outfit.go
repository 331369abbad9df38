// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds one store per table. Every store wraps a *sql.DB
// (pgx stdlib driver), returns (nil, nil) for missing rows and wraps
// driver errors with the failing operation.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// OutfitStore manages the outfits table.
type OutfitStore struct {
	db *sql.DB
}

// NewOutfitStore returns a new OutfitStore.
func NewOutfitStore(db *sql.DB) *OutfitStore {
	return &OutfitStore{db: db}
}

const outfitColumns = `o.id, o.owner_id, o.title, o.description, o.gender, o.season_id,
	o.color_id, o.image_url, o.ai_hint, o.is_ai_generated, o.is_public,
	o.saved_count, o.created_at, o.updated_at,
	COALESCE(s.name, ''), COALESCE(c.name, '')`

const outfitFrom = `outfits o
	LEFT JOIN seasons s ON s.id = o.season_id
	LEFT JOIN colors c ON c.id = o.color_id`

// scanOutfit scans a row selected with outfitColumns.
func scanOutfit(scanner interface{ Scan(...any) error }) (*models.Outfit, error) {
	var o models.Outfit
	err := scanner.Scan(
		&o.ID, &o.OwnerID, &o.Title, &o.Description, &o.Gender, &o.SeasonID,
		&o.ColorID, &o.ImageURL, &o.AIHint, &o.IsAIGenerated, &o.IsPublic,
		&o.SavedCount, &o.CreatedAt, &o.UpdatedAt,
		&o.SeasonName, &o.ColorName,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts the parent row with a null image and returns it with the
// database-minted id.
func (s *OutfitStore) Create(ctx context.Context, o *models.Outfit) (*models.Outfit, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO outfits (owner_id, title, description, gender, season_id, color_id,
		                     ai_hint, is_ai_generated, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, o.OwnerID, o.Title, o.Description, o.Gender, o.SeasonID, o.ColorID,
		o.AIHint, o.IsAIGenerated, o.IsPublic,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create outfit: %w", err)
	}

	created, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("create outfit: row %s vanished after insert", id)
	}
	return created, nil
}

// SetImage sets the main image URL.
func (s *OutfitStore) SetImage(ctx context.Context, id uuid.UUID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outfits SET image_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("set outfit image: %w", err)
	}
	return expectRow(res, "set outfit image")
}

// Update writes the scalar fields and image URL in a single statement.
func (s *OutfitStore) Update(ctx context.Context, o *models.Outfit) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outfits SET
			title = $1, description = $2, gender = $3, season_id = $4, color_id = $5,
			image_url = $6, ai_hint = $7, is_ai_generated = $8, is_public = $9,
			updated_at = NOW()
		WHERE id = $10
	`, o.Title, o.Description, o.Gender, o.SeasonID, o.ColorID,
		o.ImageURL, o.AIHint, o.IsAIGenerated, o.IsPublic, o.ID)
	if err != nil {
		return fmt.Errorf("update outfit: %w", err)
	}
	return expectRow(res, "update outfit")
}

// Delete removes the parent row. Deleting an absent row is not an error.
func (s *OutfitStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM outfits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outfit: %w", err)
	}
	return nil
}

// FindByID retrieves an outfit with its season and color names. Returns nil
// if not found.
func (s *OutfitStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Outfit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+outfitColumns+` FROM `+outfitFrom+` WHERE o.id = $1`, id)
	o, err := scanOutfit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find outfit by id: %w", err)
	}
	return o, nil
}

// List returns outfits matching f, newest first.
func (s *OutfitStore) List(ctx context.Context, f models.OutfitFilter) ([]models.Outfit, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != nil {
		where = append(where, "o.owner_id = "+arg(*f.OwnerID))
	}
	if f.PublicOnly {
		where = append(where, "o.is_public")
	}
	if f.Gender != "" {
		where = append(where, "o.gender = "+arg(f.Gender))
	}
	if f.SeasonID != nil {
		where = append(where, "o.season_id = "+arg(*f.SeasonID))
	}
	if f.ColorID != nil {
		where = append(where, "o.color_id = "+arg(*f.ColorID))
	}
	if f.CategoryID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM outfit_categories oc WHERE oc.outfit_id = o.id AND oc.category_id = "+arg(*f.CategoryID)+")")
	}

	query := `SELECT ` + outfitColumns + ` FROM ` + outfitFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outfits: %w", err)
	}
	defer rows.Close()

	var items []models.Outfit
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outfit: %w", err)
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

// expectRow turns a zero-row UPDATE into an error so a write against a
// vanished row is not mistaken for success.
func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
