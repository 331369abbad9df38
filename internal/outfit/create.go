// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// CreateOutfit builds a new aggregate owned by ownerID.
//
// Steps: insert the parent (mints the id), ingest and attach the main
// image, insert all category associations in one batch, then for each
// item insert its row and attach its image. A failure in any step but an
// item image deletes the parent row and returns the wrapped error. Item
// image failures follow the service's ImageFailurePolicy.
func (s *Service) CreateOutfit(ctx context.Context, ownerID uuid.UUID, req models.CreateOutfitRequest) (*models.Outfit, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	parent, err := s.outfits.Create(ctx, &models.Outfit{
		OwnerID:       ownerID,
		Title:         req.Title,
		Description:   req.Description,
		Gender:        req.Gender,
		SeasonID:      req.SeasonID,
		ColorID:       req.ColorID,
		AIHint:        req.AIHint,
		IsAIGenerated: req.IsAIGenerated,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("create outfit: insert outfit: %w", err)
	}

	if !req.MainImage.IsZero() {
		url, err := s.images.Ingest(ctx, *req.MainImage, mainImagePath(parent.ID, s.newName()))
		if err != nil {
			return nil, s.compensate(ctx, parent.ID, stepMainImage, fmt.Errorf("ingest main image: %w", err))
		}
		if err := s.outfits.SetImage(ctx, parent.ID, url); err != nil {
			return nil, s.compensate(ctx, parent.ID, stepMainImage, fmt.Errorf("attach main image: %w", err))
		}
		parent.ImageURL = &url
	}

	if len(req.CategoryIDs) > 0 {
		if err := s.categories.AddToOutfit(ctx, parent.ID, req.CategoryIDs); err != nil {
			return nil, s.compensate(ctx, parent.ID, stepCategories, fmt.Errorf("insert categories: %w", err))
		}
	}

	parent.Items = make([]models.OutfitItem, 0, len(req.Items))
	for i, in := range req.Items {
		item, err := s.items.Create(ctx, &models.OutfitItem{
			OutfitID:       parent.ID,
			Position:       i,
			Name:           in.Name,
			Type:           in.Type,
			AffiliateLinks: in.AffiliateLinks,
		})
		if err != nil {
			return nil, s.compensate(ctx, parent.ID, stepItemRow, fmt.Errorf("insert item %d: %w", i, err))
		}

		if !in.Image.IsZero() {
			if err := s.attachItemImage(ctx, item, *in.Image); err != nil {
				if s.policy == ImageFailureFatal {
					return nil, s.compensate(ctx, parent.ID, stepItemImage, fmt.Errorf("item %d image: %w", i, err))
				}
				s.swallow("create", stepItemImage, err, "outfit_id", parent.ID, "item_id", item.ID, "position", i)
			}
		}
		parent.Items = append(parent.Items, *item)
	}

	parent.Categories = s.resolveCategories(ctx, parent.ID, req.CategoryIDs)

	slog.Info("outfit created",
		"outfit_id", parent.ID,
		"owner_id", ownerID,
		"items", len(parent.Items),
		"categories", len(req.CategoryIDs),
	)
	return parent, nil
}

// attachItemImage ingests img under the item's namespace and records the
// URL on the row. On success it updates item in place.
func (s *Service) attachItemImage(ctx context.Context, item *models.OutfitItem, img models.ImageSource) error {
	url, err := s.images.Ingest(ctx, img, itemImagePath(item.OutfitID, item.ID, s.newName()))
	if err != nil {
		return fmt.Errorf("ingest item image: %w", err)
	}
	if err := s.items.SetImage(ctx, item.ID, url); err != nil {
		return fmt.Errorf("attach item image: %w", err)
	}
	item.ImageURL = &url
	return nil
}

// compensate rolls a failed create back by deleting the parent row. Rows
// written after the parent go with it through the schema's cascades;
// blobs already uploaded are left behind. The rollback runs even if ctx
// is cancelled.
func (s *Service) compensate(ctx context.Context, outfitID uuid.UUID, step string, cause error) error {
	s.metrics.compensation(step)
	err := fmt.Errorf("create outfit: %w", cause)

	if derr := s.outfits.Delete(context.WithoutCancel(ctx), outfitID); derr != nil {
		slog.Error("outfit create compensation failed",
			"outfit_id", outfitID, "step", step, "cause", cause, "error", derr)
		return errors.Join(err, fmt.Errorf("compensate: delete outfit %s: %w", outfitID, derr))
	}

	slog.Warn("outfit create rolled back", "outfit_id", outfitID, "step", step, "error", cause)
	return err
}

// resolveCategories returns the attached categories for a freshly
// written aggregate. The saga has already committed at this point, so a
// read failure only degrades the response to ids.
func (s *Service) resolveCategories(ctx context.Context, outfitID uuid.UUID, ids []uuid.UUID) []models.Category {
	if len(ids) == 0 {
		return []models.Category{}
	}
	cats, err := s.categories.ListByOutfit(ctx, outfitID)
	if err == nil {
		return cats
	}
	slog.Warn("reload outfit categories", "outfit_id", outfitID, "error", err)
	cats = make([]models.Category, 0, len(ids))
	for _, id := range ids {
		cats = append(cats, models.Category{ID: id})
	}
	return cats
}
