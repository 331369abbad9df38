// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"outfitly/internal/middleware"
	"outfitly/internal/models"
)

// List returns outfits, newest first. Query parameters: mine=1 (own
// outfits, private included), owner, gender, season_id, color_id,
// category_id, limit, offset.
func (h *Outfits) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	f, err := parseFilter(r.URL.Query(), user)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	outfits, err := h.svc.ListOutfits(r.Context(), user, f)
	if err != nil {
		writeServiceError(w, r, "list outfits", err)
		return
	}
	writeJSON(w, http.StatusOK, outfits)
}

// Get returns one assembled outfit.
func (h *Outfits) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetOutfit(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, "get outfit", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Create composes a new outfit from a JSON or multipart payload.
func (h *Outfits) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOutfitRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.CreateOutfit(r.Context(), middleware.UserFromCtx(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, "create outfit", err)
		return
	}
	w.Header().Set("Location", "/api/outfits/"+o.ID.String())
	writeJSON(w, http.StatusCreated, o)
}

// Update replaces the state of the outfit named in the path. The payload
// may omit its id; if it carries one it must match the path.
func (h *Outfits) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateOutfitRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID != uuid.Nil && req.ID != id {
		badRequest(w, "payload id does not match the URL")
		return
	}
	req.ID = id

	o, err := h.svc.UpdateOutfit(r.Context(), middleware.UserFromCtx(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, "update outfit", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Delete removes the outfit named in the path.
func (h *Outfits) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteOutfit(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		writeServiceError(w, r, "delete outfit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleSave saves or unsaves the outfit for the caller.
func (h *Outfits) ToggleSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ToggleSaved(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, "toggle saved", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Saved lists the caller's saved outfits.
func (h *Outfits) Saved(w http.ResponseWriter, r *http.Request) {
	outfits, err := h.svc.ListSaved(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeServiceError(w, r, "list saved", err)
		return
	}
	writeJSON(w, http.StatusOK, outfits)
}

// Categories lists the category reference data.
func (h *Outfits) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Seasons lists the season reference data.
func (h *Outfits) Seasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.svc.ListSeasons(r.Context())
	if err != nil {
		writeServiceError(w, r, "list seasons", err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

// Colors lists the color reference data.
func (h *Outfits) Colors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.svc.ListColors(r.Context())
	if err != nil {
		writeServiceError(w, r, "list colors", err)
		return
	}
	writeJSON(w, http.StatusOK, colors)
}

// decode reads the request payload, answering 400 or 413 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodePayload(w, r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	default:
		badRequest(w, err.Error())
	}
	return false
}

// pathID parses the {id} URL parameter, answering 400 if it is not a uuid.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid outfit id")
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(q url.Values, user uuid.UUID) (models.OutfitFilter, error) {
	var f models.OutfitFilter

	if q.Get("mine") == "1" || q.Get("mine") == "true" {
		if user == uuid.Nil {
			return f, errors.New("mine requires authentication")
		}
		f.OwnerID = &user
	} else if v := q.Get("owner"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errors.New("invalid owner")
		}
		f.OwnerID = &id
	}

	if v := q.Get("gender"); v != "" {
		f.Gender = models.Gender(v)
		if !f.Gender.Valid() {
			return f, errors.New("invalid gender")
		}
	}

	for key, dst := range map[string]**uuid.UUID{
		"season_id":   &f.SeasonID,
		"color_id":    &f.ColorID,
		"category_id": &f.CategoryID,
	} {
		if v := q.Get(key); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return f, errors.New("invalid " + key)
			}
			*dst = &id
		}
	}

	var err error
	if f.Limit, err = queryInt(q, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(q, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
