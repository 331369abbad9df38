// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// UpdateOutfit replaces the state of an existing aggregate owned by
// ownerID. Caller errors (ErrUnauthenticated, *ValidationError,
// ErrNotFound, ErrForbidden) are returned before anything is written.
//
// Steps: ingest a new main image, write the parent row, replace the
// category set, delete removed items, then update or insert each payload
// item in order and attach its image. There is no compensation: a
// returned error leaves the aggregate partially updated.
//
// The payload's item list is the full desired list. Existing items
// neither present in it nor listed in DeletedItemIDs are deleted too.
func (s *Service) UpdateOutfit(ctx context.Context, ownerID uuid.UUID, req models.UpdateOutfitRequest) (*models.Outfit, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := validateUpdate(&req); err != nil {
		return nil, err
	}

	current, err := s.outfits.FindByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("update outfit: load outfit: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if current.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	existing, err := s.items.ListByOutfit(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("update outfit: load items: %w", err)
	}
	if err := validateItemIDs(&req, existing); err != nil {
		return nil, err
	}

	// Every path below may have written something.
	defer s.cache.Invalidate(context.WithoutCancel(ctx), req.ID)

	imageURL := current.ImageURL
	if !req.MainImage.IsZero() {
		url, err := s.images.Ingest(ctx, *req.MainImage, mainImagePath(req.ID, s.newName()))
		if err != nil {
			return nil, fmt.Errorf("update outfit: ingest main image: %w", err)
		}
		imageURL = &url
	}

	if err := s.outfits.Update(ctx, &models.Outfit{
		ID:            req.ID,
		Title:         req.Title,
		Description:   req.Description,
		Gender:        req.Gender,
		SeasonID:      req.SeasonID,
		ColorID:       req.ColorID,
		ImageURL:      imageURL,
		AIHint:        req.AIHint,
		IsAIGenerated: req.IsAIGenerated,
		IsPublic:      req.IsPublic,
	}); err != nil {
		return nil, fmt.Errorf("update outfit: write outfit: %w", err)
	}

	if err := s.categories.ClearOutfit(ctx, req.ID); err != nil {
		s.swallow("update", stepClearCategory, err, "outfit_id", req.ID)
	}
	if err := s.categories.AddToOutfit(ctx, req.ID, req.CategoryIDs); err != nil {
		return nil, fmt.Errorf("update outfit: insert categories: %w", err)
	}

	for _, id := range itemsToDelete(&req, existing) {
		if err := s.items.Delete(ctx, req.ID, id); err != nil {
			s.swallow("update", stepDeleteItem, err, "outfit_id", req.ID, "item_id", id)
		}
	}

	for i, in := range req.Items {
		item := &models.OutfitItem{
			OutfitID:       req.ID,
			Position:       i,
			Name:           in.Name,
			Type:           in.Type,
			AffiliateLinks: in.AffiliateLinks,
		}
		if in.ID != nil {
			item.ID = *in.ID
			if err := s.items.Update(ctx, item); err != nil {
				return nil, fmt.Errorf("update outfit: update item %d: %w", i, err)
			}
		} else {
			created, err := s.items.Create(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("update outfit: insert item %d: %w", i, err)
			}
			item = created
		}

		if !in.Image.IsZero() {
			if err := s.attachItemImage(ctx, item, *in.Image); err != nil {
				if s.policy == ImageFailureFatal {
					return nil, fmt.Errorf("update outfit: item %d image: %w", i, err)
				}
				s.swallow("update", stepItemImage, err, "outfit_id", req.ID, "item_id", item.ID, "position", i)
			}
		}
	}

	updated, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("update outfit: reload: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("update outfit: reload: %w", ErrNotFound)
	}

	slog.Info("outfit updated",
		"outfit_id", req.ID,
		"owner_id", ownerID,
		"items", len(updated.Items),
		"categories", len(updated.Categories),
	)
	return updated, nil
}

// itemsToDelete returns the explicit deletions followed by existing items
// the payload no longer mentions, without repeats.
func itemsToDelete(req *models.UpdateOutfitRequest, existing []models.OutfitItem) []uuid.UUID {
	kept := make(map[uuid.UUID]bool, len(req.Items))
	for _, in := range req.Items {
		if in.ID != nil {
			kept[*in.ID] = true
		}
	}

	ids := make([]uuid.UUID, 0, len(req.DeletedItemIDs))
	seen := make(map[uuid.UUID]bool)
	for _, id := range req.DeletedItemIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, it := range existing {
		if !kept[it.ID] && !seen[it.ID] {
			seen[it.ID] = true
			ids = append(ids, it.ID)
		}
	}
	return ids
}
