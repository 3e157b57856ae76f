// Package client implements the resilient HTTP client for the Yonatan backend:
// CSRF token management, bounded retry with exponential backoff, request
// timeouts, and the typed API surface the widget consumes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yonatanbot/yonatan/pkg/logger"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration // per-request deadline, default 45s
	MaxRetries int           // retries after the first attempt, default 2
	HTTPClient *http.Client  // optional transport override
}

// Client talks to the backend API. Safe for use from multiple goroutines,
// though the widget drives it from a single logical thread of control.
type Client struct {
	baseURL    string
	httpc      *http.Client
	csrf       *csrfManager
	timeout    time.Duration
	maxRetries int
	log        zerolog.Logger

	// delay is replaceable in tests to avoid real backoff waits.
	delay func(attempt int) time.Duration
}

// New creates a Client. A zero Options value gets sane defaults.
func New(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 2
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		baseURL:    baseURL,
		httpc:      httpc,
		csrf:       newCsrfManager(baseURL, httpc),
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        logger.Component("client"),
		delay:      retryDelay,
	}
}

// InvalidateCsrf drops the cached anti-forgery token.
func (c *Client) InvalidateCsrf() {
	c.csrf.Invalidate()
}

// cancelBody ties the per-request context to the response body so streaming
// reads stay alive until the caller closes the body.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// looksLikeCsrfFailure inspects a 400-class body for the server's CSRF
// rejection marker.
func looksLikeCsrfFailure(status int, body string) bool {
	if status < 400 || status >= 500 {
		return false
	}
	return strings.Contains(strings.ToLower(body), "csrf")
}

// do performs one logical request with timeout, CSRF injection, and bounded
// retry. On success the returned response body must be closed by the caller;
// closing it also releases the request deadline.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.delay(attempt-1)); err != nil {
				return nil, err
			}
			c.log.Debug().Str("path", path).Int("attempt", attempt).Msg("retrying request")
		}

		resp, err := c.attempt(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt runs a single request. Retryable failures come back wrapped in
// ErrNetwork or ErrCsrfExpired; everything else is terminal.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if mutating(method) {
		token, err := c.csrf.Token(reqCtx)
		if err != nil {
			// Proceed without the header; the server's rejection comes back
			// as a CSRF failure and feeds the retry path.
			c.log.Debug().Err(err).Msg("proceeding without csrf token")
		} else {
			req.Header.Set(CsrfHeader, token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	defer cancel()
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	bodyText := string(raw)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrThrottled, strings.TrimSpace(bodyText))
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, strings.TrimSpace(bodyText))
	case looksLikeCsrfFailure(resp.StatusCode, bodyText):
		c.csrf.Invalidate()
		return nil, fmt.Errorf("%w (status %d)", ErrCsrfExpired, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w (status 404): %s", ErrSessionExpired, strings.TrimSpace(bodyText))
	default:
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(bodyText)}
	}
}

// doJSON runs a request and decodes a JSON response into out (out may be nil
// when the response body does not matter).
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
