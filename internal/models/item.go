// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AffiliateLink points at a store selling an outfit item.
type AffiliateLink struct {
	Store string `json:"store"`
	URL   string `json:"url"`
}

// AffiliateLinks is the ordered link list stored in the jsonb
// affiliate_links column.
type AffiliateLinks []AffiliateLink

// Value encodes the list as JSON. A nil list is stored as "[]".
func (l AffiliateLinks) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]AffiliateLink(l))
	if err != nil {
		return nil, fmt.Errorf("encode affiliate links: %w", err)
	}
	return b, nil
}

// Scan decodes a jsonb value into the list.
func (l *AffiliateLinks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = AffiliateLinks{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan affiliate links: unsupported type %T", src)
	}
	var links []AffiliateLink
	if err := json.Unmarshal(raw, &links); err != nil {
		return fmt.Errorf("scan affiliate links: %w", err)
	}
	if links == nil {
		links = []AffiliateLink{}
	}
	*l = links
	return nil
}

// OutfitItem is one garment or accessory inside an outfit.
// ImageURL, when set, lives under a path namespaced by both the outfit
// id and the item id.
type OutfitItem struct {
	ID             uuid.UUID      `json:"id"`
	OutfitID       uuid.UUID      `json:"outfit_id"`
	Position       int            `json:"position"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	ImageURL       *string        `json:"image_url,omitempty"`
	AffiliateLinks AffiliateLinks `json:"affiliate_links"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
