// Package provider is a thin HTTP client for the property-data API.
// Parameter validation, retry and credit accounting are the provider's
// concern; the rest of the system only sees the contract.Fetcher shape.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/schema"
)

// Client fetches raw payloads over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ contract.Fetcher = (*Client)(nil) // Compile-time check

// NewClient returns a client for the given API base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET against /<endpoint> with the given parameters.
// Any non-200 status or non-JSON body is a fetch error; the caller
// records it and moves on.
func (c *Client) Fetch(ctx context.Context, ep schema.Endpoint, params map[string]string) (json.RawMessage, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", c.baseURL, ep))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w", ep, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", ep, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", ep, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s returned a non-JSON body", ep)
	}
	return body, nil
}
