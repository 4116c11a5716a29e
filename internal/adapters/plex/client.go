// Package plex adapts a Plex Media Server music library to the engine's
// catalog port. Sonic similarity comes from the server's "nearest" rankings;
// the adapter never computes audio features itself.
package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
)

// Client is an HTTP client for one Plex server and one music section.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     oauth2.TokenSource
	sectionID  string
	log        zerolog.Logger

	maxRetries  int
	baseBackoff time.Duration
}

var _ ports.CatalogProvider = (*Client)(nil)
var _ ports.PlaylistMaterializer = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the adapter logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithRetryPolicy overrides the retry attempt count and base backoff.
func WithRetryPolicy(maxRetries int, baseBackoff time.Duration) ClientOption {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
		if baseBackoff > 0 {
			c.baseBackoff = baseBackoff
		}
	}
}

// WithTokenSource replaces the static token with a refreshing source, for
// setups that sign in through plex.tv instead of a server-local token.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

// NewClient constructs a Plex client for the given server and music section.
// token is a server-local X-Plex-Token; use WithTokenSource for plex.tv auth.
func NewClient(httpClient *http.Client, baseURL, token, sectionID string, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		sectionID:   sectionID,
		log:         zerolog.Nop(),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET and decodes the MediaContainer envelope
// into out. A 404 maps to ports.ErrNotFound; any other failure is a catalog
// availability error.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return ports.CatalogUnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("plex adapter: %s: %w", op, ports.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return ports.CatalogUnavailableError{Op: op, Err: fmt.Errorf("plex adapter: status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := decodeInto(resp, out); err != nil {
		return ports.CatalogUnavailableError{Op: op, Err: err}
	}
	return nil
}

func decodeInto(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("plex adapter: decode response: %w", err)
	}
	return nil
}

// do builds an authenticated request and sends it through the retry loop.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("plex adapter: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("plex adapter: token source: %w", err)
	}
	req.Header.Set("X-Plex-Token", token.AccessToken)
	req.Header.Set("Accept", "application/json")

	return c.doRequestWithRetry(req)
}
