// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"outfitly/internal/models"
)

// SaveResult is the outcome of a saved toggle.
type SaveResult struct {
	Saved      bool `json:"saved"`
	SavedCount int  `json:"saved_count"`
}

// ToggleSaved flips whether userID has saved outfitID and adjusts the
// outfit's saved_count.
//
// The existence check and the write are separate statements with no lock
// between them, so concurrent toggles for one pair can both insert or
// both delete. The counter call is re-issued once on error; if the second
// attempt fails too the drift is logged and counted and the toggle still
// succeeds, with SavedCount estimated from the value read up front.
// Saving requires the outfit to be visible to userID; unsaving does not.
func (s *Service) ToggleSaved(ctx context.Context, userID, outfitID uuid.UUID) (SaveResult, error) {
	if userID == uuid.Nil {
		return SaveResult{}, ErrUnauthenticated
	}
	o, err := s.outfits.FindByID(ctx, outfitID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("toggle saved: load outfit: %w", err)
	}
	if o == nil {
		return SaveResult{}, ErrNotFound
	}

	exists, err := s.saved.Exists(ctx, userID, outfitID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("toggle saved: %w", err)
	}
	// Unsaving works even after the owner made the outfit private.
	if !exists && !o.VisibleTo(userID) {
		return SaveResult{}, ErrNotFound
	}

	adjust := s.saved.IncrementSavedCount
	estimate := o.SavedCount + 1
	if exists {
		if err := s.saved.Delete(ctx, userID, outfitID); err != nil {
			return SaveResult{}, fmt.Errorf("toggle saved: %w", err)
		}
		adjust = s.saved.DecrementSavedCount
		estimate = max(0, o.SavedCount-1)
	} else {
		if err := s.saved.Insert(ctx, userID, outfitID); err != nil {
			return SaveResult{}, fmt.Errorf("toggle saved: %w", err)
		}
	}
	defer s.cache.Invalidate(context.WithoutCancel(ctx), outfitID)

	result := SaveResult{Saved: !exists, SavedCount: estimate}

	attempt := 0
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.counterRetries.Inc()
			slog.Warn("retrying saved counter adjustment", "outfit_id", outfitID, "user_id", userID)
		}
		n, err := adjust(ctx, outfitID)
		if err != nil {
			return retry.RetryableError(err)
		}
		result.SavedCount = n
		return nil
	})
	if err != nil {
		s.metrics.counterDrift.Inc()
		attrs := []any{
			"outfit_id", outfitID,
			"user_id", userID,
			"saved", result.Saved,
			"attempts", attempt,
			"saved_count", o.SavedCount,
			"error", err,
		}
		if rows, cerr := s.saved.Count(context.WithoutCancel(ctx), outfitID); cerr == nil {
			attrs = append(attrs, "relation_rows", rows)
		}
		slog.Error("saved counter drift", attrs...)
	}

	return result, nil
}

// ListSaved returns the outfits userID has saved and can still see.
func (s *Service) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	outfits, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved outfits: %w", err)
	}
	return outfits, nil
}
