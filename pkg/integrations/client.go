// Package integrations provides the shared HTTP plumbing for depdrift's
// hosted-service collaborators. It handles caching of GET responses,
// retry with backoff for transient failures, and default request
// headers; service-specific clients (see the github subpackage) embed
// Client and add their endpoints on top.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/depdrift/depdrift/pkg/cache"
	"github.com/depdrift/depdrift/pkg/errors"
)

const httpTimeout = 10 * time.Second

// Sentinel errors mapped from HTTP status codes. Each is wrapped in a
// structured error code (NOT_FOUND, UNAUTHORIZED, NETWORK_ERROR) before
// leaving the client, so callers can branch on either form.
var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = stderrors.New("resource not found")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = stderrors.New("unauthorized")

	// ErrNetwork is returned for transport failures and 5xx responses.
	ErrNetwork = stderrors.New("network error")
)

// Client provides shared HTTP functionality for API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given response cache and default
// headers. Headers are applied to all requests made through this client.
// Pass a NullCache to disable caching.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			if json.Unmarshal(data, v) == nil {
				return nil
			}
		}
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return cache.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		defer body.Close()
		return json.NewDecoder(body).Decode(v)
	})
}

// Post performs an HTTP POST with a JSON body and decodes the response into v.
// Pass nil for v to discard the response body. POSTs are never cached.
func (c *Client) Post(ctx context.Context, url string, payload, v any) error {
	return c.send(ctx, http.MethodPost, url, payload, v)
}

// Patch performs an HTTP PATCH with a JSON body and decodes the response into v.
func (c *Client) Patch(ctx context.Context, url string, payload, v any) error {
	return c.send(ctx, http.MethodPatch, url, payload, v)
}

func (c *Client) send(ctx context.Context, method, url string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		defer body.Close()
		if v == nil {
			_, err := io.Copy(io.Discard, body)
			return err
		}
		return json.NewDecoder(body).Decode(v)
	})
}

func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, ErrNetwork, "%s %s: %v", method, url, err))
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "status %d", code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Wrap(errors.ErrCodeUnauthorized, ErrUnauthorized, "status %d", code)
	case code >= 500:
		return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, ErrNetwork, "status %d", code))
	default:
		return &StatusError{Code: code}
	}
}

// StatusError reports a non-retryable, non-sentinel HTTP status
// (e.g., 422 validation failures). Callers can branch on Code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
