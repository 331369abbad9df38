// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// SavedStore manages saved_outfits and the denormalized saved_count.
type SavedStore struct {
	db *sql.DB
}

// NewSavedStore returns a new SavedStore.
func NewSavedStore(db *sql.DB) *SavedStore {
	return &SavedStore{db: db}
}

// Exists reports whether the user has saved the outfit.
func (s *SavedStore) Exists(ctx context.Context, userID, outfitID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM saved_outfits WHERE user_id = $1 AND outfit_id = $2)`,
		userID, outfitID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check saved outfit: %w", err)
	}
	return exists, nil
}

// Insert records that the user saved the outfit.
func (s *SavedStore) Insert(ctx context.Context, userID, outfitID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_outfits (user_id, outfit_id) VALUES ($1, $2)`, userID, outfitID)
	if err != nil {
		return fmt.Errorf("insert saved outfit: %w", err)
	}
	return nil
}

// Delete removes every saved row for the pair.
func (s *SavedStore) Delete(ctx context.Context, userID, outfitID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_outfits WHERE user_id = $1 AND outfit_id = $2`, userID, outfitID)
	if err != nil {
		return fmt.Errorf("delete saved outfit: %w", err)
	}
	return nil
}

// IncrementSavedCount calls increment_saved_count and returns the new
// counter value.
func (s *SavedStore) IncrementSavedCount(ctx context.Context, outfitID uuid.UUID) (int, error) {
	return s.adjust(ctx, "increment_saved_count", outfitID)
}

// DecrementSavedCount calls decrement_saved_count, which floors at zero,
// and returns the new counter value.
func (s *SavedStore) DecrementSavedCount(ctx context.Context, outfitID uuid.UUID) (int, error) {
	return s.adjust(ctx, "decrement_saved_count", outfitID)
}

func (s *SavedStore) adjust(ctx context.Context, fn string, outfitID uuid.UUID) (int, error) {
	var n sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT `+fn+`($1)`, outfitID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	if !n.Valid {
		// The function returns NULL when the outfit row does not exist.
		return 0, fmt.Errorf("%s: %w", fn, sql.ErrNoRows)
	}
	return int(n.Int64), nil
}

// ListByUser returns the outfits a user has saved that are still visible
// to them, most recently saved first.
func (s *SavedStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+outfitColumns+`
		FROM `+outfitFrom+`
		JOIN (
			SELECT outfit_id, MAX(created_at) AS saved_at
			FROM saved_outfits WHERE user_id = $1
			GROUP BY outfit_id
		) so ON so.outfit_id = o.id
		WHERE o.is_public OR o.owner_id = $1
		ORDER BY so.saved_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved outfits: %w", err)
	}
	defer rows.Close()

	items := []models.Outfit{}
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outfit: %w", err)
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

// Count returns the number of saved rows for an outfit. Used to check the
// denormalized counter against the relation.
func (s *SavedStore) Count(ctx context.Context, outfitID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_outfits WHERE outfit_id = $1`, outfitID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count saved outfits: %w", err)
	}
	return n, nil
}
