// Package feed fetches the external listing feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/domain"
)

// Client fetches the configured feed URL. Every trigger fetches a fresh
// snapshot; nothing is cached between runs.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a feed client from configuration.
func NewClient(cfg *config.FeedConfig) *Client {
	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch performs an HTTP GET and decodes the JSON array of listings. Any
// failure here aborts the import run.
func (c *Client) Fetch(ctx context.Context) ([]domain.SourceRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("feed new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, string(body))
	}

	var records []domain.SourceRecord
	if decodeErr := json.NewDecoder(resp.Body).Decode(&records); decodeErr != nil {
		return nil, fmt.Errorf("feed decode: %w", decodeErr)
	}

	return records, nil
}
