// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client used as
// the outfit blob store. Objects are addressed by path and served from a
// public bucket. It wraps the AWS SDK v2 and is configured for path-style
// access so it works against MinIO, CEPH and Hetzner as well as AWS.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrObjectExists is returned by Upload when overwrite is false and an
// object already occupies the key.
var ErrObjectExists = errors.New("storage: object already exists")

// ErrObjectTooLarge is returned by Download when an object exceeds the
// caller's limit.
var ErrObjectTooLarge = errors.New("storage: object too large")

// deleteBatchSize is the S3 DeleteObjects limit per request.
const deleteBatchSize = 1000

// Client wraps an S3 client bound to a single public bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

// Options configures New.
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	// HTTPClient overrides the SDK transport; tests point it at httptest.
	HTTPClient *http.Client
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without storage.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, nil
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket name is required")
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")

	s3opts := s3.Options{
		Region:                     opts.Region,
		BaseEndpoint:               aws.String(endpoint),
		Credentials:                credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle:               true,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if opts.HTTPClient != nil {
		s3opts.HTTPClient = opts.HTTPClient
	}

	return &Client{
		s3:        s3.New(s3opts),
		bucket:    opts.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

// Upload stores data at key with a public-read ACL. When overwrite is
// false the write is conditional (If-None-Match: *) and an occupied key
// yields ErrObjectExists instead of replacing the object.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte, overwrite bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	}
	if !overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		if !overwrite && isPreconditionFailed(err) {
			return fmt.Errorf("s3 upload %s: %w", key, ErrObjectExists)
		}
		return fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return nil
}

// Download retrieves an object and returns its contents. A positive
// limit caps the object size; larger objects yield ErrObjectTooLarge.
func (c *Client) Download(ctx context.Context, key string, limit int64) ([]byte, error) {
	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download %s: %w", key, err)
	}
	defer output.Body.Close()

	if limit <= 0 {
		data, err := io.ReadAll(output.Body)
		if err != nil {
			return nil, fmt.Errorf("s3 read body %s: %w", key, err)
		}
		return data, nil
	}
	if output.ContentLength != nil && *output.ContentLength > limit {
		return nil, fmt.Errorf("s3 download %s: %w", key, ErrObjectTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(output.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s: %w", key, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("s3 download %s: %w", key, ErrObjectTooLarge)
	}
	return data, nil
}

// DeletePrefix removes every object whose key starts with prefix and
// returns how many were deleted.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	deleted := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("s3 list %s: %w", prefix, err)
		}

		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		for start := 0; start < len(ids); start += deleteBatchSize {
			end := min(start+deleteBatchSize, len(ids))
			_, err := c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(c.bucket),
				Delete: &s3types.Delete{Objects: ids[start:end], Quiet: aws.Bool(true)},
			})
			if err != nil {
				return deleted, fmt.Errorf("s3 delete prefix %s: %w", prefix, err)
			}
			deleted += end - start
		}
	}
	return deleted, nil
}

// FileURL returns the public URL for a key. Uses the configured public URL
// if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// ExtractKey extracts the object key from a public file URL.
// Returns the key and true if the URL matches the storage URL pattern,
// or ("", false) if it doesn't belong to this storage.
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	if c.publicURL != "" {
		prefix := c.publicURL + "/"
		if strings.HasPrefix(rawURL, prefix) {
			return rawURL[len(prefix):], true
		}
	}

	prefix := c.endpoint + "/" + c.bucket + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return rawURL[len(prefix):], true
	}

	return "", false
}

// isPreconditionFailed reports whether err is the 412 S3 returns for a
// conditional write against an existing key.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed {
		return true
	}
	return false
}
