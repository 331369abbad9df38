package outfit

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// Validation limits for outfit payloads.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 5_000
	maxAIHintLen      = 500
	maxItems          = 50
	maxItemNameLen    = 200
	maxItemTypeLen    = 100
	maxLinksPerItem   = 20
	maxStoreLen       = 100
	maxCategories     = 20
)

// validateCreate checks a create payload and normalizes whitespace in
// place. It returns the first problem found as a *ValidationError.
func validateCreate(req *models.CreateOutfitRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		return invalid("title", "is too long (max %d characters)", maxTitleLen)
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > maxDescriptionLen {
		return invalid("description", "is too long (max %d characters)", maxDescriptionLen)
	}
	if !req.Gender.Valid() {
		return invalid("gender", "must be %q or %q", models.GenderMale, models.GenderFemale)
	}
	if utf8.RuneCountInString(req.AIHint) > maxAIHintLen {
		return invalid("ai_hint", "is too long (max %d characters)", maxAIHintLen)
	}
	if req.SeasonID != nil && *req.SeasonID == uuid.Nil {
		return invalid("season_id", "must not be the nil uuid")
	}
	if req.ColorID != nil && *req.ColorID == uuid.Nil {
		return invalid("color_id", "must not be the nil uuid")
	}

	if len(req.CategoryIDs) > maxCategories {
		return invalid("category_ids", "too many categories (max %d)", maxCategories)
	}
	for _, id := range req.CategoryIDs {
		if id == uuid.Nil {
			return invalid("category_ids", "must not contain the nil uuid")
		}
	}
	req.CategoryIDs = dedupe(req.CategoryIDs)

	if len(req.Items) > maxItems {
		return invalid("items", "too many items (max %d)", maxItems)
	}
	for i := range req.Items {
		if err := validateItem(i, &req.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(i int, it *models.ItemInput) error {
	it.Name = strings.TrimSpace(it.Name)
	it.Type = strings.TrimSpace(it.Type)
	if it.Name == "" {
		return invalid(itemField(i, "name"), "is required")
	}
	if utf8.RuneCountInString(it.Name) > maxItemNameLen {
		return invalid(itemField(i, "name"), "is too long (max %d characters)", maxItemNameLen)
	}
	if utf8.RuneCountInString(it.Type) > maxItemTypeLen {
		return invalid(itemField(i, "type"), "is too long (max %d characters)", maxItemTypeLen)
	}
	if len(it.AffiliateLinks) > maxLinksPerItem {
		return invalid(itemField(i, "affiliate_links"), "too many links (max %d)", maxLinksPerItem)
	}
	for j, l := range it.AffiliateLinks {
		if strings.TrimSpace(l.Store) == "" || utf8.RuneCountInString(l.Store) > maxStoreLen {
			return invalid(itemField(i, "affiliate_links"), "link %d: store is required (max %d characters)", j, maxStoreLen)
		}
		u, err := url.Parse(l.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid(itemField(i, "affiliate_links"), "link %d: url must be an absolute http(s) URL", j)
		}
	}
	if it.AffiliateLinks == nil {
		it.AffiliateLinks = models.AffiliateLinks{}
	}
	return nil
}

// validateUpdate checks an update payload on its own.
func validateUpdate(req *models.UpdateOutfitRequest) error {
	if req.ID == uuid.Nil {
		return invalid("id", "is required")
	}
	return validateCreate(&req.CreateOutfitRequest)
}

// validateItemIDs checks the payload's item ids against the outfit's
// current items. Every id must belong to the outfit, appear once, and not
// also be listed for deletion.
func validateItemIDs(req *models.UpdateOutfitRequest, existing []models.OutfitItem) error {
	owned := make(map[uuid.UUID]bool, len(existing))
	for _, it := range existing {
		owned[it.ID] = true
	}
	deleted := make(map[uuid.UUID]bool, len(req.DeletedItemIDs))
	for _, id := range req.DeletedItemIDs {
		deleted[id] = true
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	for i, it := range req.Items {
		if it.ID == nil {
			continue
		}
		switch {
		case !owned[*it.ID]:
			return invalid(itemField(i, "id"), "item %s does not belong to this outfit", *it.ID)
		case deleted[*it.ID]:
			return invalid(itemField(i, "id"), "item %s is also listed in deleted_item_ids", *it.ID)
		case seen[*it.ID]:
			return invalid(itemField(i, "id"), "item %s appears more than once", *it.ID)
		}
		seen[*it.ID] = true
	}
	return nil
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}

// dedupe drops repeated ids, keeping first-seen order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
