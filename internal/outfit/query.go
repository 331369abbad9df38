// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// defaultListLimit applies when a listing asks for no limit.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetOutfit returns the assembled aggregate if userID may see it.
// userID may be uuid.Nil for anonymous readers. A private outfit of
// another owner reads as ErrNotFound.
func (s *Service) GetOutfit(ctx context.Context, userID, id uuid.UUID) (*models.Outfit, error) {
	o, ok := s.cache.Get(ctx, id)
	if !ok {
		var err error
		o, err = s.load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get outfit: %w", err)
		}
		if o == nil {
			return nil, ErrNotFound
		}
		s.cache.Set(ctx, o)
	}
	if !o.VisibleTo(userID) {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListOutfits returns parent rows matching f, newest first. Anonymous
// callers and callers listing other owners only see public outfits.
func (s *Service) ListOutfits(ctx context.Context, userID uuid.UUID, f models.OutfitFilter) ([]models.Outfit, error) {
	if f.OwnerID == nil || *f.OwnerID != userID || userID == uuid.Nil {
		f.PublicOnly = true
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	f.Limit = min(f.Limit, maxListLimit)
	f.Offset = max(f.Offset, 0)

	outfits, err := s.outfits.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list outfits: %w", err)
	}
	if outfits == nil {
		outfits = []models.Outfit{}
	}
	return outfits, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// ListSeasons returns every season.
func (s *Service) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return s.refs.ListSeasons(ctx)
}

// ListColors returns every color.
func (s *Service) ListColors(ctx context.Context) ([]models.Color, error) {
	return s.refs.ListColors(ctx)
}

// load reads the parent, its categories and its ordered items straight
// from the store. Returns nil if the outfit does not exist.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Outfit, error) {
	o, err := s.outfits.FindByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	if o.Categories, err = s.categories.ListByOutfit(ctx, id); err != nil {
		return nil, err
	}
	if o.Items, err = s.items.ListByOutfit(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}
