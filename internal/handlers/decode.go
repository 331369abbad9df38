// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"outfitly/internal/models"
)

const (
	// maxRequestSize caps a whole create/update body, images included.
	maxRequestSize = 64 << 20

	// maxMultipartMemory is how much of a multipart body is held in
	// memory before parts spill to temporary files.
	maxMultipartMemory = 32 << 20

	// itemImagePrefix names the multipart file part carrying the image of
	// the item at the given payload index, e.g. item_image_0.
	itemImagePrefix = "item_image_"
)

// errBodyTooLarge is returned when the body exceeds maxRequestSize.
var errBodyTooLarge = errors.New("request body too large")

// decodePayload reads a create or update payload into dst. JSON bodies
// are decoded directly. Multipart bodies carry the JSON in a "payload"
// field plus optional image file parts: "main_image" and
// "item_image_{n}" for the n-th payload item. File parts override images
// given inline in the JSON.
func decodePayload(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return decodeJSON(r.Body, dst)
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid multipart body: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	payload := r.FormValue("payload")
	if payload == "" {
		return errors.New(`multipart body needs a "payload" field`)
	}
	if err := decodeJSON(strings.NewReader(payload), dst); err != nil {
		return err
	}

	var base *models.CreateOutfitRequest
	switch v := dst.(type) {
	case *models.CreateOutfitRequest:
		base = v
	case *models.UpdateOutfitRequest:
		base = &v.CreateOutfitRequest
	default:
		return fmt.Errorf("unsupported payload type %T", dst)
	}
	return attachFiles(r.MultipartForm, base)
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// attachFiles copies the image file parts of form into req.
func attachFiles(form *multipart.Form, req *models.CreateOutfitRequest) error {
	for name, headers := range form.File {
		if len(headers) != 1 {
			return fmt.Errorf("file part %q given %d times", name, len(headers))
		}
		data, err := readPart(headers[0])
		if err != nil {
			return fmt.Errorf("read file part %q: %w", name, err)
		}
		img := &models.ImageSource{Data: data}

		switch {
		case name == "main_image":
			req.MainImage = img
		case strings.HasPrefix(name, itemImagePrefix):
			n, err := strconv.Atoi(strings.TrimPrefix(name, itemImagePrefix))
			if err != nil || n < 0 || n >= len(req.Items) {
				return fmt.Errorf("file part %q does not match a payload item", name)
			}
			req.Items[n].Image = img
		default:
			return fmt.Errorf("unexpected file part %q", name)
		}
	}
	return nil
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
