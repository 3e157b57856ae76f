package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yonatanbot/yonatan/pkg/stream"
)

// Session is the payload of a successful init call.
type Session struct {
	SessionID string `json:"session_id"`
	CsrfToken string `json:"csrf_token,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Health mirrors the backend health probe used for the degraded-mode badge.
type Health struct {
	Status                  string `json:"status"`
	DatabaseConnected       bool   `json:"database_connected"`
	AIModelWorking          bool   `json:"ai_model_working"`
	FallbackSystemAvailable bool   `json:"fallback_system_available"`
	QuotaExceeded           bool   `json:"quota_exceeded"`
}

// Degraded reports whether the backend is answering from its rule-based
// fallback instead of the model.
func (h *Health) Degraded() bool {
	return !h.AIModelWorking || h.QuotaExceeded
}

// Child is a child profile in the multi-profile widget variant.
type Child struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	AgeRange string `json:"age_range"`
}

// Profile is the parent profile stored by the session endpoint.
type Profile struct {
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
}

// Init creates a server-side session. When the response piggybacks a CSRF
// token it is cached for subsequent mutating calls.
func (c *Client) Init(ctx context.Context) (*Session, error) {
	var sess Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/init", struct{}{}, &sess); err != nil {
		return nil, err
	}
	if sess.SessionID == "" {
		return nil, fmt.Errorf("init response missing session id")
	}
	c.csrf.Set(sess.CsrfToken)
	return &sess, nil
}

// SubmitQuestionnaire posts the accumulated onboarding answers as one batch.
// The answers are flattened beside session_id, matching the backend contract.
func (c *Client) SubmitQuestionnaire(ctx context.Context, sessionID string, answers map[string]any) error {
	payload := make(map[string]any, len(answers)+1)
	for k, v := range answers {
		payload[k] = v
	}
	payload["session_id"] = sessionID
	return c.doJSON(ctx, http.MethodPost, "/api/questionnaire", payload, nil)
}

// Chat sends a message and consumes the chunked reply, invoking onChunk with
// the cumulative text as it grows. Returns the full assembled reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string, onChunk func(textSoFar string)) (string, error) {
	payload := map[string]any{
		"session_id": sessionID,
		"message":    message,
		"timestamp":  time.Now().UnixMilli(),
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/chat", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return stream.Consume(ctx, resp.Body, onChunk)
}

// Health probes backend health. Used on error-state retry and for the
// fallback-mode badge.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ResetSession clears the server-side session. The local store is the
// caller's responsibility.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	payload := map[string]any{"session_id": sessionID}
	return c.doJSON(ctx, http.MethodPost, "/api/reset_session", payload, nil)
}

// Children lists the child profiles attached to a session.
func (c *Client) Children(ctx context.Context, sessionID string) ([]Child, error) {
	var resp struct {
		Children []Child `json:"children"`
	}
	path := "/api/children?session_id=" + url.QueryEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Children, nil
}

// AddChild creates a child profile.
func (c *Client) AddChild(ctx context.Context, sessionID string, child Child) error {
	payload := map[string]any{
		"session_id": sessionID,
		"name":       child.Name,
		"gender":     child.Gender,
		"age_range":  child.AgeRange,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/children", payload, nil)
}

// SaveProfile stores the parent profile for a session.
func (c *Client) SaveProfile(ctx context.Context, sessionID, name, gender string) (*Profile, error) {
	payload := map[string]any{
		"session_id": sessionID,
		"name":       name,
		"gender":     gender,
	}
	var p Profile
	if err := c.doJSON(ctx, http.MethodPost, "/api/session", payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
