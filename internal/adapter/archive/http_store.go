package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsqa-orchestrator/internal/domain"
)

// ParseLocator splits an object locator of the form s3://bucket/key into its
// bucket and key parts.
func ParseLocator(locator string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(locator, "s3://")
	if trimmed == locator {
		return "", "", fmt.Errorf("locator %q is not an object locator", locator)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("locator %q has no bucket/key pair", locator)
	}
	return parts[0], parts[1], nil
}

// HTTPStore reads and writes archive documents through an object-storage
// gateway that exposes buckets as path prefixes.
type HTTPStore struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPStore) objectURL(locator string) (string, error) {
	bucket, key, err := ParseLocator(locator)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.BaseURL, bucket, key), nil
}

// Fetch retrieves the raw document behind a locator.
func (s *HTTPStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	url, err := s.objectURL(locator)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document fetch returned %d for %s", resp.StatusCode, locator)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return body, nil
}

// Put writes a document under a locator. Used by the ingest pipeline.
func (s *HTTPStore) Put(ctx context.Context, locator string, content []byte, contentType string) error {
	url, err := s.objectURL(locator)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("document upload returned %d for %s", resp.StatusCode, locator)
	}
	return nil
}

var _ domain.DocumentStore = (*HTTPStore)(nil)
