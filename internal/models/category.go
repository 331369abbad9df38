// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a tag attached to outfits through outfit_categories.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Season is a reference row (spring, summer, ...). Read-only here.
type Season struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Color is a reference row with an optional hex swatch. Read-only here.
type Color struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hex  string    `json:"hex"`
}

// SavedRelation is a user's bookmark of an outfit.
type SavedRelation struct {
	UserID    uuid.UUID `json:"user_id"`
	OutfitID  uuid.UUID `json:"outfit_id"`
	CreatedAt time.Time `json:"created_at"`
}
