// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func isDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// parseDataURI decodes "data:[<mediatype>][;base64],<data>". Only image
// media types (or none) are accepted.
func parseDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI: missing comma")
	}

	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("data URI media type %q is not an image", mediaType)
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders omit padding.
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("data URI base64: %w", err)
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI payload: %w", err)
		}
		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return nil, errors.New("data URI is empty")
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("data URI exceeds %d bytes", maxSourceBytes)
	}
	return data, nil
}

// fetch downloads an http(s) image reference. Non-2xx responses and
// bodies over maxSourceBytes are errors.
func fetch(ctx context.Context, client *http.Client, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("unsupported image reference %q", ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: bad status: %s", u.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Redacted(), err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", u.Redacted(), maxSourceBytes)
	}
	return data, nil
}
