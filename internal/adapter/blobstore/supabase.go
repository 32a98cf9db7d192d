// Package blobstore provides the remote blob storage backends used to
// persist serialized knowledge stores.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragtutor/internal/domain"
)

// Supabase is a blob store backed by a Supabase Storage bucket,
// speaking the storage REST API directly. Keys are opaque object paths
// inside the bucket.
type Supabase struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// NewSupabase creates a Supabase Storage client for the given project
// URL, service key and bucket.
func NewSupabase(projectURL, apiKey, bucket string) (*Supabase, error) {
	if projectURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be set")
	}
	if bucket == "" {
		bucket = "vector-db"
	}
	return &Supabase{
		baseURL:    projectURL,
		apiKey:     apiKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (s *Supabase) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
}

// Put uploads data to the bucket at key.
func (s *Supabase) Put(ctx context.Context, key string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/zip")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload to %s failed: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload to %s failed with status %d: %s", key, resp.StatusCode, body)
	}
	return nil
}

// Get downloads the blob at key. Unknown keys return
// domain.ErrBlobNotFound.
func (s *Supabase) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download of %s failed: %w", key, err)
	}
	defer resp.Body.Close()

	// The storage API answers 400 or 404 for unknown object paths.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, domain.ErrBlobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download of %s failed with status %d: %s", key, resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}

var _ domain.BlobStore = (*Supabase)(nil)
