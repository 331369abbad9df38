// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the request payloads accepted by the outfit composer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender classifies who an outfit is styled for.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Outfit is the aggregate root: a styled look with classification
// metadata, category tags, and an ordered list of items.
//
// ImageURL is nil until the main image upload completes. SavedCount is a
// denormalized counter maintained by the saved_count SQL functions, not a
// live aggregation over saved_outfits.
type Outfit struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Gender        Gender     `json:"gender"`
	SeasonID      *uuid.UUID `json:"season_id,omitempty"`
	ColorID       *uuid.UUID `json:"color_id,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	AIHint        string     `json:"ai_hint"`
	IsAIGenerated bool       `json:"is_ai_generated"`
	IsPublic      bool       `json:"is_public"`
	SavedCount    int        `json:"saved_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Virtual fields populated by the read layer.
	SeasonName string       `json:"season_name,omitempty"`
	ColorName  string       `json:"color_name,omitempty"`
	Categories []Category   `json:"categories"`
	Items      []OutfitItem `json:"items"`
}

// VisibleTo reports whether the outfit may be shown to the given user.
// Public outfits are visible to everyone, private ones only to the owner.
func (o *Outfit) VisibleTo(userID uuid.UUID) bool {
	return o.IsPublic || (userID != uuid.Nil && o.OwnerID == userID)
}

// CategoryIDs returns the ids of the attached categories in order.
func (o *Outfit) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Categories))
	for _, c := range o.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// OutfitFilter narrows outfit listings. Zero values mean "no constraint".
type OutfitFilter struct {
	OwnerID    *uuid.UUID
	PublicOnly bool
	Gender     Gender
	SeasonID   *uuid.UUID
	ColorID    *uuid.UUID
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}
