// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ImageSource is an image supplied by a caller: either raw bytes (from a
// multipart upload) or a reference (a data: URI or an http(s) URL) that
// the ingestion pipeline resolves.
type ImageSource struct {
	Data []byte
	Ref  string
}

// IsZero reports whether no image was supplied.
func (s *ImageSource) IsZero() bool {
	return s == nil || (len(s.Data) == 0 && s.Ref == "")
}

// UnmarshalJSON accepts a JSON string (data URI or URL) or null.
func (s *ImageSource) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ImageSource{}
		return nil
	}
	var ref string
	if err := json.Unmarshal(b, &ref); err != nil {
		return fmt.Errorf("image must be a data URI or URL string: %w", err)
	}
	*s = ImageSource{Ref: ref}
	return nil
}

// ItemInput is one item in a create or update payload. ID is only
// meaningful on update, where it selects an existing item to edit.
type ItemInput struct {
	ID             *uuid.UUID     `json:"id,omitempty"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Image          *ImageSource   `json:"image,omitempty"`
	AffiliateLinks AffiliateLinks `json:"affiliate_links"`
}

// CreateOutfitRequest is the composed payload for a new outfit aggregate.
type CreateOutfitRequest struct {
	Title         string       `json:"title"`
	Description   *string      `json:"description,omitempty"`
	Gender        Gender       `json:"gender"`
	SeasonID      *uuid.UUID   `json:"season_id,omitempty"`
	ColorID       *uuid.UUID   `json:"color_id,omitempty"`
	MainImage     *ImageSource `json:"main_image,omitempty"`
	AIHint        string       `json:"ai_hint"`
	IsAIGenerated bool         `json:"is_ai_generated"`
	IsPublic      bool         `json:"is_public"`
	CategoryIDs   []uuid.UUID  `json:"category_ids"`
	Items         []ItemInput  `json:"items"`
}

// UpdateOutfitRequest carries the full desired state of an existing
// outfit. Items without an ID are inserted; DeletedItemIDs are removed.
type UpdateOutfitRequest struct {
	ID uuid.UUID `json:"id"`
	CreateOutfitRequest
	DeletedItemIDs []uuid.UUID `json:"deleted_item_ids"`
}
