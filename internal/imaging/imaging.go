// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging is the image ingestion pipeline. It takes an arbitrary
// raster image (raw bytes, a data: URI, or an http(s) URL), caps its width,
// re-encodes it as JPEG and writes it to the blob store at a caller
// supplied path, returning the public URL. The pipeline never retries and
// never overwrites: retry policy belongs to the caller.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"outfitly/internal/models"
)

const (
	// DefaultMaxWidth is the widest image the pipeline will store.
	DefaultMaxWidth = 1200

	// DefaultQuality is the JPEG quality for every stored image.
	DefaultQuality = 90

	// ContentType is the canonical format of every stored image.
	ContentType = "image/jpeg"

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// maxSourceBytes caps fetched or inlined sources (25 MB).
	maxSourceBytes = 25 << 20
)

// Uploader is the blob store write side used by the pipeline.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte, overwrite bool) error
	FileURL(key string) string
}

// Reader is implemented by uploaders that can read their own objects
// back. URL sources that point into the store are read directly instead
// of over HTTP.
type Reader interface {
	ExtractKey(rawURL string) (string, bool)
	Download(ctx context.Context, key string, limit int64) ([]byte, error)
}

// Observer receives the outcome of every Ingest call. Stage is empty on
// success.
type Observer interface {
	ObserveIngest(stage Stage, d time.Duration)
}

// Pipeline normalizes and stores images.
type Pipeline struct {
	uploader Uploader
	client   *http.Client
	maxWidth int
	quality  int
	observer Observer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithMaxWidth overrides DefaultMaxWidth.
func WithMaxWidth(w int) Option {
	return func(p *Pipeline) { p.maxWidth = w }
}

// WithQuality overrides DefaultQuality.
func WithQuality(q int) Option {
	return func(p *Pipeline) { p.quality = q }
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithObserver registers an outcome observer (metrics).
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// New returns a pipeline writing to uploader.
func New(uploader Uploader, opts ...Option) *Pipeline {
	p := &Pipeline{
		uploader: uploader,
		client:   &http.Client{Timeout: 15 * time.Second},
		maxWidth: DefaultMaxWidth,
		quality:  DefaultQuality,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest resolves src, normalizes it and uploads it to path without
// overwriting. On success exactly one blob write has happened; on failure
// none has. The returned error is always an *Error.
func (p *Pipeline) Ingest(ctx context.Context, src models.ImageSource, path string) (string, error) {
	start := time.Now()
	url, err := p.ingest(ctx, src, path)

	var stage Stage
	var ie *Error
	if errors.As(err, &ie) {
		stage = ie.Stage
	}
	if p.observer != nil {
		p.observer.ObserveIngest(stage, time.Since(start))
	}
	return url, err
}

func (p *Pipeline) ingest(ctx context.Context, src models.ImageSource, path string) (string, error) {
	raw, err := p.resolve(ctx, src)
	if err != nil {
		return "", &Error{Stage: StageFetch, Path: path, Err: err}
	}

	img, err := decode(raw)
	if err != nil {
		return "", &Error{Stage: StageDecode, Path: path, Err: err}
	}

	img = fitWidth(img, p.maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return "", &Error{Stage: StageEncode, Path: path, Err: err}
	}

	if err := p.uploader.Upload(ctx, path, ContentType, buf.Bytes(), false); err != nil {
		return "", &Error{Stage: StageUpload, Path: path, Err: err}
	}

	b := img.Bounds()
	slog.Debug("image ingested", "path", path, "width", b.Dx(), "height", b.Dy(), "bytes", buf.Len())
	return p.uploader.FileURL(path), nil
}

// resolve returns the raw encoded bytes of src.
func (p *Pipeline) resolve(ctx context.Context, src models.ImageSource) ([]byte, error) {
	if len(src.Data) > 0 {
		return src.Data, nil
	}
	if src.Ref == "" {
		return nil, errors.New("empty image source")
	}
	if isDataURI(src.Ref) {
		return parseDataURI(src.Ref)
	}
	if r, ok := p.uploader.(Reader); ok {
		if key, ok := r.ExtractKey(src.Ref); ok {
			data, err := r.Download(ctx, key, maxSourceBytes)
			if err != nil {
				return nil, err
			}
			if len(data) > maxSourceBytes {
				return nil, fmt.Errorf("stored image %s exceeds %d bytes", key, maxSourceBytes)
			}
			return data, nil
		}
	}
	return fetch(ctx, p.client, src.Ref)
}

// decode decodes any registered format after checking dimensions without
// a full decode.
func decode(raw []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fitWidth downscales img to maxWidth preserving aspect ratio. Height is
// never capped and narrower images are returned untouched.
func fitWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return img
	}

	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := max(1, int(float64(bounds.Dy())*ratio+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
