// Package opsmanager provides an HTTP client for the MongoDB Ops Manager
// public API, the library-side source for parity checks.
//
// Ops Manager authenticates programmatic access with HTTP digest auth, so
// the client wraps its transport in a digest round-tripper. List endpoints
// return a paged envelope ({"links": ..., "results": ..., "totalCount": ...});
// the client unwraps the results array so callers see the same shape
// mongocli prints.
package opsmanager

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icholy/digest"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
)

// Config holds the connection settings for an Ops Manager deployment.
type Config struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration

	// InsecureSkipVerify disables TLS certificate checks for deployments
	// running on self-signed certificates.
	InsecureSkipVerify bool
}

// Client queries the Ops Manager public API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.SourceLimiter
}

// New creates an Ops Manager client authenticating with the given API key
// pair. The limiter may be nil, in which case requests are not throttled.
func New(cfg Config, limiter *ratelimit.SourceLimiter) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(&digest.Transport{
				Username:  cfg.PublicKey,
				Password:  cfg.PrivateKey,
				Transport: base,
			}),
		},
		limiter: limiter,
	}
}

// NewWithHTTPClient creates an Ops Manager client with a custom HTTP client
// (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, limiter *ratelimit.SourceLimiter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// ListHosts returns the raw host documents for a project.
func (c *Client) ListHosts(ctx context.Context, projectID string) ([]any, error) {
	return c.list(ctx, fmt.Sprintf("/api/public/v1.0/groups/%s/hosts", projectID))
}

// ListAlerts returns the raw alert documents for a project.
func (c *Client) ListAlerts(ctx context.Context, projectID string) ([]any, error) {
	return c.list(ctx, fmt.Sprintf("/api/public/v1.0/groups/%s/alerts", projectID))
}

func (c *Client) list(ctx context.Context, path string) ([]any, error) {
	payload, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	switch v := payload.(type) {
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return results, nil
		}
	case []any:
		return v, nil
	}
	return nil, fmt.Errorf("opsmanager: unexpected payload shape for %s", path)
}

func (c *Client) get(ctx context.Context, path string) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, ratelimit.SourceAPI); err != nil {
			return nil, err
		}
	}

	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("opsmanager: invalid URL for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("opsmanager: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opsmanager: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("opsmanager: GET %s: unexpected status %d: %s",
			path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("opsmanager: decode %s response: %w", path, err)
	}
	return payload, nil
}
