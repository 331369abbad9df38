package outfit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"outfitly/internal/models"
)

// memDB is an in-memory stand-in for the relational store. Every
// repository call goes through fault(op), which counts the call and
// returns an injected error if one is armed for it.
type memDB struct {
	mu         sync.Mutex
	outfits    map[uuid.UUID]*models.Outfit
	items      map[uuid.UUID]*models.OutfitItem
	assoc      []association
	categories map[uuid.UUID]models.Category
	saved      []models.SavedRelation
	calls      map[string]int
	faults     map[string]func(call int) error
	clock      time.Time
	lastOutfit uuid.UUID
}

type association struct {
	outfitID, categoryID uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{
		outfits:    map[uuid.UUID]*models.Outfit{},
		items:      map[uuid.UUID]*models.OutfitItem{},
		categories: map[uuid.UUID]models.Category{},
		calls:      map[string]int{},
		faults:     map[string]func(int) error{},
		clock:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) fault(op string) error {
	m.calls[op]++
	if f := m.faults[op]; f != nil {
		return f(m.calls[op])
	}
	return nil
}

// failOn arms err for the n-th call (1-based) of op.
func (m *memDB) failOn(op string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = func(call int) error {
		if call == n {
			return err
		}
		return nil
	}
}

// failAlways arms err for every call of op.
func (m *memDB) failAlways(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = func(int) error { return err }
}

func (m *memDB) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// writes is the number of mutating calls seen so far.
func (m *memDB) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for op, c := range m.calls {
		switch op[strings.Index(op, ".")+1:] {
		case "FindByID", "List", "ListByOutfit", "Exists", "ListByUser", "Count":
		default:
			n += c
		}
	}
	return n
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) addCategory(name string) models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Category{ID: uuid.New(), Name: name, CreatedAt: m.tick()}
	m.categories[c.ID] = c
	return c
}

func (m *memDB) outfit(id uuid.UUID) *models.Outfit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.outfits[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

func (m *memDB) itemsOf(outfitID uuid.UUID) []models.OutfitItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsOfLocked(outfitID)
}

func (m *memDB) itemsOfLocked(outfitID uuid.UUID) []models.OutfitItem {
	items := []models.OutfitItem{}
	for _, it := range m.items {
		if it.OutfitID == outfitID {
			items = append(items, *it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

func (m *memDB) assocCount(outfitID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.assoc {
		if a.outfitID == outfitID {
			n++
		}
	}
	return n
}

func (m *memDB) savedCount(userID, outfitID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.saved {
		if r.UserID == userID && r.OutfitID == outfitID {
			n++
		}
	}
	return n
}

// fakeOutfits implements OutfitRepo.
type fakeOutfits struct{ *memDB }

func (f fakeOutfits) Create(_ context.Context, o *models.Outfit) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.Create"); err != nil {
		return nil, err
	}
	cp := *o
	cp.ID = uuid.New()
	cp.ImageURL = nil
	cp.SavedCount = 0
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	cp.Categories, cp.Items = nil, nil
	f.outfits[cp.ID] = &cp
	f.lastOutfit = cp.ID
	out := cp
	return &out, nil
}

func (f fakeOutfits) SetImage(_ context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.SetImage"); err != nil {
		return err
	}
	o, ok := f.outfits[id]
	if !ok {
		return errors.New("set outfit image: no rows")
	}
	o.ImageURL = &url
	return nil
}

func (f fakeOutfits) Update(_ context.Context, o *models.Outfit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.Update"); err != nil {
		return err
	}
	cur, ok := f.outfits[o.ID]
	if !ok {
		return errors.New("update outfit: no rows")
	}
	cur.Title, cur.Description, cur.Gender = o.Title, o.Description, o.Gender
	cur.SeasonID, cur.ColorID, cur.ImageURL = o.SeasonID, o.ColorID, o.ImageURL
	cur.AIHint, cur.IsAIGenerated, cur.IsPublic = o.AIHint, o.IsAIGenerated, o.IsPublic
	cur.UpdatedAt = f.tick()
	return nil
}

func (f fakeOutfits) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.Delete"); err != nil {
		return err
	}
	delete(f.outfits, id)
	for itemID, it := range f.items {
		if it.OutfitID == id {
			delete(f.items, itemID)
		}
	}
	assoc := f.assoc[:0]
	for _, a := range f.assoc {
		if a.outfitID != id {
			assoc = append(assoc, a)
		}
	}
	f.assoc = assoc
	saved := f.saved[:0]
	for _, r := range f.saved {
		if r.OutfitID != id {
			saved = append(saved, r)
		}
	}
	f.saved = saved
	return nil
}

func (f fakeOutfits) FindByID(_ context.Context, id uuid.UUID) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.FindByID"); err != nil {
		return nil, err
	}
	o, ok := f.outfits[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f fakeOutfits) List(_ context.Context, flt models.OutfitFilter) ([]models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("outfits.List"); err != nil {
		return nil, err
	}
	var out []models.Outfit
	for _, o := range f.outfits {
		if flt.OwnerID != nil && o.OwnerID != *flt.OwnerID {
			continue
		}
		if flt.PublicOnly && !o.IsPublic {
			continue
		}
		if flt.Gender != "" && o.Gender != flt.Gender {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if flt.Offset < len(out) {
		out = out[flt.Offset:]
	} else {
		out = nil
	}
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

// fakeItems implements ItemRepo.
type fakeItems struct{ *memDB }

func (f fakeItems) Create(_ context.Context, it *models.OutfitItem) (*models.OutfitItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.Create"); err != nil {
		return nil, err
	}
	if _, ok := f.outfits[it.OutfitID]; !ok {
		return nil, errors.New("insert item: foreign key violation")
	}
	cp := *it
	cp.ID = uuid.New()
	cp.ImageURL = nil
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	if cp.AffiliateLinks == nil {
		cp.AffiliateLinks = models.AffiliateLinks{}
	}
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f fakeItems) Update(_ context.Context, it *models.OutfitItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.Update"); err != nil {
		return err
	}
	cur, ok := f.items[it.ID]
	if !ok || cur.OutfitID != it.OutfitID {
		return errors.New("update item: no rows")
	}
	cur.Position, cur.Name, cur.Type, cur.AffiliateLinks = it.Position, it.Name, it.Type, it.AffiliateLinks
	cur.UpdatedAt = f.tick()
	return nil
}

func (f fakeItems) SetImage(_ context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.SetImage"); err != nil {
		return err
	}
	cur, ok := f.items[id]
	if !ok {
		return errors.New("set item image: no rows")
	}
	cur.ImageURL = &url
	return nil
}

func (f fakeItems) Delete(_ context.Context, outfitID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.Delete"); err != nil {
		return err
	}
	if it, ok := f.items[id]; ok && it.OutfitID == outfitID {
		delete(f.items, id)
	}
	return nil
}

func (f fakeItems) DeleteByOutfit(_ context.Context, outfitID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.DeleteByOutfit"); err != nil {
		return err
	}
	for id, it := range f.items {
		if it.OutfitID == outfitID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f fakeItems) ListByOutfit(_ context.Context, outfitID uuid.UUID) ([]models.OutfitItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("items.ListByOutfit"); err != nil {
		return nil, err
	}
	return f.itemsOfLocked(outfitID), nil
}

// fakeCategories implements CategoryRepo.
type fakeCategories struct{ *memDB }

func (f fakeCategories) List(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("categories.List"); err != nil {
		return nil, err
	}
	out := []models.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeCategories) AddToOutfit(_ context.Context, outfitID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("categories.AddToOutfit"); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := f.categories[id]; !ok {
			return fmt.Errorf("insert categories: unknown category %s", id)
		}
	}
	for _, id := range ids {
		f.assoc = append(f.assoc, association{outfitID, id})
	}
	return nil
}

func (f fakeCategories) ClearOutfit(_ context.Context, outfitID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("categories.ClearOutfit"); err != nil {
		return err
	}
	assoc := f.assoc[:0]
	for _, a := range f.assoc {
		if a.outfitID != outfitID {
			assoc = append(assoc, a)
		}
	}
	f.assoc = assoc
	return nil
}

func (f fakeCategories) ListByOutfit(_ context.Context, outfitID uuid.UUID) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("categories.ListByOutfit"); err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	out := []models.Category{}
	for _, a := range f.assoc {
		if a.outfitID == outfitID && !seen[a.categoryID] {
			seen[a.categoryID] = true
			out = append(out, f.categories[a.categoryID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeSaved implements SavedRepo.
type fakeSaved struct{ *memDB }

func (f fakeSaved) Exists(_ context.Context, userID, outfitID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Exists"); err != nil {
		return false, err
	}
	for _, r := range f.saved {
		if r.UserID == userID && r.OutfitID == outfitID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSaved) Insert(_ context.Context, userID, outfitID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Insert"); err != nil {
		return err
	}
	f.saved = append(f.saved, models.SavedRelation{UserID: userID, OutfitID: outfitID, CreatedAt: f.tick()})
	return nil
}

func (f fakeSaved) Delete(_ context.Context, userID, outfitID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Delete"); err != nil {
		return err
	}
	kept := f.saved[:0]
	for _, r := range f.saved {
		if r.UserID != userID || r.OutfitID != outfitID {
			kept = append(kept, r)
		}
	}
	f.saved = kept
	return nil
}

func (f fakeSaved) IncrementSavedCount(_ context.Context, outfitID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Increment"); err != nil {
		return 0, err
	}
	o, ok := f.outfits[outfitID]
	if !ok {
		return 0, errors.New("increment_saved_count: no rows")
	}
	o.SavedCount++
	return o.SavedCount, nil
}

func (f fakeSaved) DecrementSavedCount(_ context.Context, outfitID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Decrement"); err != nil {
		return 0, err
	}
	o, ok := f.outfits[outfitID]
	if !ok {
		return 0, errors.New("decrement_saved_count: no rows")
	}
	o.SavedCount = max(0, o.SavedCount-1)
	return o.SavedCount, nil
}

func (f fakeSaved) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.ListByUser"); err != nil {
		return nil, err
	}
	out := []models.Outfit{}
	seen := map[uuid.UUID]bool{}
	for i := len(f.saved) - 1; i >= 0; i-- {
		r := f.saved[i]
		o, ok := f.outfits[r.OutfitID]
		if r.UserID != userID || !ok || seen[o.ID] || !o.VisibleTo(userID) {
			continue
		}
		seen[o.ID] = true
		out = append(out, *o)
	}
	return out, nil
}

func (f fakeSaved) Count(_ context.Context, outfitID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fault("saved.Count"); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range f.saved {
		if r.OutfitID == outfitID {
			n++
		}
	}
	return n, nil
}

// fakeRefs implements ReferenceRepo.
type fakeRefs struct{}

func (fakeRefs) ListSeasons(context.Context) ([]models.Season, error) {
	return []models.Season{{ID: uuid.New(), Name: "summer"}}, nil
}

func (fakeRefs) ListColors(context.Context) ([]models.Color, error) {
	return []models.Color{{ID: uuid.New(), Name: "black", Hex: "#000000"}}, nil
}

// memBlobs is an in-memory blob store behind both Ingester and
// BlobCleaner. Ingest writes with overwrite=false semantics.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	calls   int
	fail    func(call int, path string) error
	cleanup error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

const blobBase = "https://cdn.test/"

func (b *memBlobs) Ingest(_ context.Context, src models.ImageSource, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.fail != nil {
		if err := b.fail(b.calls, path); err != nil {
			return "", err
		}
	}
	if src.IsZero() {
		return "", errors.New("empty image source")
	}
	if _, ok := b.objects[path]; ok {
		return "", errors.New("object already exists")
	}
	b.objects[path] = append([]byte(nil), src.Data...)
	return blobBase + path, nil
}

func (b *memBlobs) DeletePrefix(_ context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cleanup != nil {
		return 0, b.cleanup
	}
	n := 0
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			delete(b.objects, k)
			n++
		}
	}
	return n, nil
}

func (b *memBlobs) has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// failIngestCall makes the n-th Ingest call fail.
func (b *memBlobs) failIngestCall(n int, err error) {
	b.fail = func(call int, _ string) error {
		if call == n {
			return err
		}
		return nil
	}
}

// memCache implements Cache.
type memCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]models.Outfit
	invalidated []uuid.UUID
}

func newMemCache() *memCache {
	return &memCache{entries: map[uuid.UUID]models.Outfit{}}
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*models.Outfit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &o, true
}

func (c *memCache) Set(_ context.Context, o *models.Outfit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[o.ID] = *o
}

func (c *memCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}
