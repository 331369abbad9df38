package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

func TestItemStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewItemStore(db)
	ctx := context.Background()
	o := newTestOutfit(t, db, nil)

	links := models.AffiliateLinks{{Store: "Zalando", URL: "https://z.example/1"}}
	second, err := s.Create(ctx, &models.OutfitItem{OutfitID: o.ID, Position: 1, Name: "Loafers", Type: "shoes"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := s.Create(ctx, &models.OutfitItem{OutfitID: o.ID, Position: 0, Name: "Blazer", Type: "top", AffiliateLinks: links})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ImageURL != nil {
		t.Error("new item should have no image")
	}
	if second.AffiliateLinks == nil || len(second.AffiliateLinks) != 0 {
		t.Errorf("nil links should round-trip as empty list, got %v", second.AffiliateLinks)
	}

	list, err := s.ListByOutfit(ctx, o.ID)
	if err != nil {
		t.Fatalf("ListByOutfit: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("order: got %+v", list)
	}
	if len(list[0].AffiliateLinks) != 1 || list[0].AffiliateLinks[0].Store != "Zalando" {
		t.Errorf("links: got %+v", list[0].AffiliateLinks)
	}

	if err := s.SetImage(ctx, second.ID, "https://cdn.test/i.jpg"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	second.Name = "Suede loafers"
	second.Position = 0
	if err := s.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, _ = s.ListByOutfit(ctx, o.ID)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("order after update: %+v", list)
	}
	if got := list[0]; got.Name != "Suede loafers" || got.ImageURL == nil {
		t.Errorf("after update: %+v", got)
	}

	// Update is scoped to the owning outfit.
	foreign := *second
	foreign.OutfitID = uuid.New()
	if err := s.Update(ctx, &foreign); err == nil {
		t.Error("Update through a foreign outfit id should fail")
	}

	if err := s.Delete(ctx, o.ID, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ = s.ListByOutfit(ctx, o.ID)
	for _, it := range list {
		if it.ID == first.ID {
			t.Error("item still present after Delete")
		}
	}

	if err := s.DeleteByOutfit(ctx, o.ID); err != nil {
		t.Fatalf("DeleteByOutfit: %v", err)
	}
	list, _ = s.ListByOutfit(ctx, o.ID)
	if len(list) != 0 {
		t.Errorf("items remaining: %d", len(list))
	}
}
