// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package outfit composes the outfit aggregate (parent row, category
// associations, ordered items and their images) across the relational
// store and the blob store.
//
// Create, update and delete are sagas: steps run strictly in sequence
// because every blob path is namespaced by an id minted by an earlier
// row insert. Create compensates by deleting the parent row. Update has
// no compensation and leaves whatever it already wrote. Errors are either
// fatal (wrapped with the step and returned) or swallowed (logged at Warn
// and counted in Metrics, never surfaced to the caller).
package outfit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"outfitly/internal/models"
)

// OutfitRepo persists parent rows.
type OutfitRepo interface {
	Create(ctx context.Context, o *models.Outfit) (*models.Outfit, error)
	SetImage(ctx context.Context, id uuid.UUID, url string) error
	Update(ctx context.Context, o *models.Outfit) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Outfit, error)
	List(ctx context.Context, f models.OutfitFilter) ([]models.Outfit, error)
}

// ItemRepo persists outfit items.
type ItemRepo interface {
	Create(ctx context.Context, it *models.OutfitItem) (*models.OutfitItem, error)
	Update(ctx context.Context, it *models.OutfitItem) error
	SetImage(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, outfitID, id uuid.UUID) error
	DeleteByOutfit(ctx context.Context, outfitID uuid.UUID) error
	ListByOutfit(ctx context.Context, outfitID uuid.UUID) ([]models.OutfitItem, error)
}

// CategoryRepo reads categories and manages outfit associations.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	AddToOutfit(ctx context.Context, outfitID uuid.UUID, categoryIDs []uuid.UUID) error
	ClearOutfit(ctx context.Context, outfitID uuid.UUID) error
	ListByOutfit(ctx context.Context, outfitID uuid.UUID) ([]models.Category, error)
}

// SavedRepo manages saved relations and the denormalized counter.
type SavedRepo interface {
	Exists(ctx context.Context, userID, outfitID uuid.UUID) (bool, error)
	Insert(ctx context.Context, userID, outfitID uuid.UUID) error
	Delete(ctx context.Context, userID, outfitID uuid.UUID) error
	IncrementSavedCount(ctx context.Context, outfitID uuid.UUID) (int, error)
	DecrementSavedCount(ctx context.Context, outfitID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error)
	Count(ctx context.Context, outfitID uuid.UUID) (int, error)
}

// ReferenceRepo reads the seasons and colors tables.
type ReferenceRepo interface {
	ListSeasons(ctx context.Context) ([]models.Season, error)
	ListColors(ctx context.Context) ([]models.Color, error)
}

// Ingester normalizes an image and stores it at path, returning its
// public URL. It never overwrites an existing object.
type Ingester interface {
	Ingest(ctx context.Context, src models.ImageSource, path string) (string, error)
}

// BlobCleaner removes every blob under a prefix.
type BlobCleaner interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Cache holds assembled aggregates.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Outfit, bool)
	Set(ctx context.Context, o *models.Outfit)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// Deps are the collaborators of a Service. Images, Blobs and Cache are
// optional: without Images every supplied image fails ingestion, without
// Blobs deletion skips blob cleanup, without Cache reads go to the store.
type Deps struct {
	Outfits    OutfitRepo
	Items      ItemRepo
	Categories CategoryRepo
	Saved      SavedRepo
	References ReferenceRepo
	Images     Ingester
	Blobs      BlobCleaner
	Cache      Cache
}

// Service is the aggregate composer and read layer.
type Service struct {
	outfits    OutfitRepo
	items      ItemRepo
	categories CategoryRepo
	saved      SavedRepo
	refs       ReferenceRepo
	images     Ingester
	blobs      BlobCleaner
	cache      Cache

	metrics    *Metrics
	policy     ImageFailurePolicy
	newName    func() string
	retryDelay time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithImageFailurePolicy sets how item image failures are treated.
func WithImageFailurePolicy(p ImageFailurePolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithMetrics sets the metrics sink. The default registers with a
// private registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNameGenerator replaces the random blob name generator.
func WithNameGenerator(fn func() string) Option {
	return func(s *Service) { s.newName = fn }
}

// WithCounterRetryDelay sets the pause before the saved counter call is
// re-issued.
func WithCounterRetryDelay(d time.Duration) Option {
	return func(s *Service) { s.retryDelay = d }
}

// NewService returns a Service over deps.
func NewService(deps Deps, opts ...Option) *Service {
	s := &Service{
		outfits:    deps.Outfits,
		items:      deps.Items,
		categories: deps.Categories,
		saved:      deps.Saved,
		refs:       deps.References,
		images:     deps.Images,
		blobs:      deps.Blobs,
		cache:      deps.Cache,
		policy:     ImageFailureSwallow,
		newName:    randomName,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.images == nil {
		s.images = noImages{}
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}
	return s
}

// swallow logs and counts an error the saga continues past.
func (s *Service) swallow(op, step string, err error, attrs ...any) {
	s.metrics.swallow(op, step)
	args := append([]any{"op", op, "step", step, "error", err}, attrs...)
	slog.Warn("outfit saga error ignored", args...)
}

// errNoImageStore is returned for every image when no blob store is
// configured.
var errNoImageStore = errors.New("image storage is not configured")

type noImages struct{}

func (noImages) Ingest(context.Context, models.ImageSource, string) (string, error) {
	return "", errNoImageStore
}

type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID) (*models.Outfit, bool) { return nil, false }
func (noCache) Set(context.Context, *models.Outfit)                   {}
func (noCache) Invalidate(context.Context, uuid.UUID)                 {}
