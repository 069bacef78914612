// Package transport issues request/response exchanges against the dashboard
// server. It never retries; retry policy belongs to the caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/tlsutil"
	"github.com/endorses/dashsync/internal/pkg/types"
	"github.com/endorses/dashsync/internal/pkg/version"
)

// ClientConfig holds configuration for the transport client
type ClientConfig struct {
	// BaseURL of the dashboard server, e.g. http://localhost:8000
	BaseURL string

	// TLS settings (zero value uses the platform defaults)
	TLS tlsutil.ClientConfig

	// Timeout for a single exchange (default: 30s)
	Timeout time.Duration
}

// Client performs JSON requests and raw downloads
type Client struct {
	baseURL *url.URL
	http    *http.Client
	config  ClientConfig
}

// Blob is a downloaded response body that is never decoded
type Blob struct {
	Data        []byte
	ContentType string
}

// NewClient creates a transport client for the configured server
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server URL must be http or https, got %q", base.Scheme)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	if !config.TLS.IsZero() {
		tlsConfig, err := tlsutil.BuildClientConfig(config.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build TLS config: %w", err)
		}
		httpTransport.TLSClientConfig = tlsConfig
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout, Transport: httpTransport},
		config:  config,
	}, nil
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Request sends body (if non-nil) as JSON to endpoint and returns the raw JSON
// response. A non-2xx status yields *types.TransportError; a failed exchange
// yields an error wrapping types.ErrNoResponse.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	resp, err := c.do(ctx, endpoint, method, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrNoResponse, endpoint, err)
	}
	if !json.Valid(data) {
		return nil, &types.ParseError{Subject: "response from " + endpoint, Reason: "body is not json"}
	}
	return json.RawMessage(data), nil
}

// Download fetches endpoint with GET and returns the body untouched
func (c *Client) Download(ctx context.Context, endpoint string) (*Blob, error) {
	resp, err := c.do(ctx, endpoint, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrNoResponse, endpoint, err)
	}
	return &Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// do performs the exchange and converts non-2xx statuses into TransportError.
// On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, endpoint, method string, body any) (*http.Response, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported method %q for %s", method, endpoint)
	}

	target, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request for %s: %w", endpoint, err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "Request failed without response",
			"endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", types.ErrNoResponse, method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))
		logger.DebugContext(ctx, "Request returned non-success status",
			"endpoint", endpoint,
			"request_id", requestID,
			"status", resp.StatusCode,
			"body", string(snippet))
		return nil, &types.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}
	return resp, nil
}

// resolve joins endpoint (path plus optional query) onto the base URL,
// preserving any path prefix the base URL carries
func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found")
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
