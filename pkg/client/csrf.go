package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CsrfHeader is the anti-forgery header attached to state-changing requests.
const CsrfHeader = "X-CSRFToken"

// csrfManager caches the anti-forgery token. Concurrent callers that miss the
// cache share a single in-flight fetch instead of racing the token endpoint.
type csrfManager struct {
	baseURL string
	httpc   *http.Client

	group singleflight.Group
	mu    sync.Mutex
	token string
}

func newCsrfManager(baseURL string, httpc *http.Client) *csrfManager {
	return &csrfManager{baseURL: baseURL, httpc: httpc}
}

// Token returns the cached token, fetching it when absent. On failure it
// returns an empty token and the error; the caller decides whether to proceed
// without the header.
func (m *csrfManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	cached := m.token
	m.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	v, err, _ := m.group.Do("csrf-token", func() (interface{}, error) {
		return m.fetch(ctx)
	})
	if err != nil {
		return "", err
	}

	token := v.(string)
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return token, nil
}

// Invalidate clears the cache so the next Token call refetches.
func (m *csrfManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// Set installs a token handed out by another endpoint (init may piggyback one).
func (m *csrfManager) Set(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *csrfManager) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/csrf-token", nil)
	if err != nil {
		return "", err
	}

	resp, err := m.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch csrf token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("csrf token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		CsrfToken string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode csrf token response: %w", err)
	}
	if payload.CsrfToken == "" {
		return "", fmt.Errorf("csrf token endpoint returned an empty token")
	}
	return payload.CsrfToken, nil
}
