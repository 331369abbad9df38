// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API over the outfit composer.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"outfitly/internal/models"
	"outfitly/internal/outfit"
)

// OutfitService is the composer surface the API needs.
type OutfitService interface {
	CreateOutfit(ctx context.Context, ownerID uuid.UUID, req models.CreateOutfitRequest) (*models.Outfit, error)
	UpdateOutfit(ctx context.Context, ownerID uuid.UUID, req models.UpdateOutfitRequest) (*models.Outfit, error)
	DeleteOutfit(ctx context.Context, ownerID, id uuid.UUID) error
	GetOutfit(ctx context.Context, userID, id uuid.UUID) (*models.Outfit, error)
	ListOutfits(ctx context.Context, userID uuid.UUID, f models.OutfitFilter) ([]models.Outfit, error)
	ToggleSaved(ctx context.Context, userID, outfitID uuid.UUID) (outfit.SaveResult, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Outfit, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
	ListColors(ctx context.Context) ([]models.Color, error)
}

// Outfits groups the outfit API endpoints.
type Outfits struct {
	svc OutfitService
}

// NewOutfits creates the outfit API handlers.
func NewOutfits(svc OutfitService) *Outfits {
	return &Outfits{svc: svc}
}

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// badRequest answers 400 with msg.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeServiceError maps composer errors to status codes. Anything not
// recognized is a server fault: it is logged with op and answered with a
// generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *outfit.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, outfit.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, outfit.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not allowed to modify this outfit"})
	case errors.Is(err, outfit.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "outfit not found"})
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
