// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DeleteOutfit removes an aggregate owned by ownerID: its items, its
// category associations, then the parent row. Blob cleanup under the
// outfit's prefix runs last and its failure is swallowed.
func (s *Service) DeleteOutfit(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrUnauthenticated
	}
	current, err := s.outfits.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete outfit: load outfit: %w", err)
	}
	if current == nil {
		return ErrNotFound
	}
	if current.OwnerID != ownerID {
		return ErrForbidden
	}

	defer s.cache.Invalidate(context.WithoutCancel(ctx), id)

	if err := s.items.DeleteByOutfit(ctx, id); err != nil {
		return fmt.Errorf("delete outfit: delete items: %w", err)
	}
	if err := s.categories.ClearOutfit(ctx, id); err != nil {
		return fmt.Errorf("delete outfit: delete categories: %w", err)
	}
	if err := s.outfits.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete outfit: delete outfit: %w", err)
	}

	if s.blobs != nil {
		n, err := s.blobs.DeletePrefix(ctx, blobPrefix(id))
		if err != nil {
			s.swallow("delete", stepBlobCleanup, err, "outfit_id", id, "deleted", n)
		} else {
			slog.Debug("outfit blobs removed", "outfit_id", id, "deleted", n)
		}
	}

	slog.Info("outfit deleted", "outfit_id", id, "owner_id", ownerID)
	return nil
}
