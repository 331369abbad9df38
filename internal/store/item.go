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

// ItemStore manages outfit_items.
type ItemStore struct {
	db *sql.DB
}

// NewItemStore returns a new ItemStore.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, outfit_id, position, name, type, image_url, affiliate_links, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*models.OutfitItem, error) {
	var it models.OutfitItem
	err := scanner.Scan(
		&it.ID, &it.OutfitID, &it.Position, &it.Name, &it.Type,
		&it.ImageURL, &it.AffiliateLinks, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts an item without an image and returns it with its new id.
func (s *ItemStore) Create(ctx context.Context, it *models.OutfitItem) (*models.OutfitItem, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO outfit_items (outfit_id, position, name, type, affiliate_links)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+itemColumns,
		it.OutfitID, it.Position, it.Name, it.Type, it.AffiliateLinks,
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create outfit item: %w", err)
	}
	return created, nil
}

// Update writes an item's scalar fields. The image is left untouched.
func (s *ItemStore) Update(ctx context.Context, it *models.OutfitItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outfit_items SET
			position = $1, name = $2, type = $3, affiliate_links = $4, updated_at = NOW()
		WHERE id = $5 AND outfit_id = $6
	`, it.Position, it.Name, it.Type, it.AffiliateLinks, it.ID, it.OutfitID)
	if err != nil {
		return fmt.Errorf("update outfit item: %w", err)
	}
	return expectRow(res, "update outfit item")
}

// SetImage sets an item's image URL.
func (s *ItemStore) SetImage(ctx context.Context, id uuid.UUID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outfit_items SET image_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("set outfit item image: %w", err)
	}
	return expectRow(res, "set outfit item image")
}

// Delete removes a single item belonging to outfitID.
func (s *ItemStore) Delete(ctx context.Context, outfitID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM outfit_items WHERE id = $1 AND outfit_id = $2`, id, outfitID)
	if err != nil {
		return fmt.Errorf("delete outfit item: %w", err)
	}
	return nil
}

// DeleteByOutfit removes every item of an outfit.
func (s *ItemStore) DeleteByOutfit(ctx context.Context, outfitID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM outfit_items WHERE outfit_id = $1`, outfitID)
	if err != nil {
		return fmt.Errorf("delete outfit items: %w", err)
	}
	return nil
}

// ListByOutfit returns the items of an outfit in position order.
func (s *ItemStore) ListByOutfit(ctx context.Context, outfitID uuid.UUID) ([]models.OutfitItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM outfit_items
		WHERE outfit_id = $1
		ORDER BY position, created_at
	`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("list outfit items: %w", err)
	}
	defer rows.Close()

	items := []models.OutfitItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outfit item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}
