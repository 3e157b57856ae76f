package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient wires a Client against srv with instant backoff.
func newTestClient(t *testing.T, srv *httptest.Server, maxRetries int) *Client {
	t.Helper()
	c := New(Options{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
	c.delay = func(int) time.Duration { return 0 }
	return c
}

func serveCsrf(mux *http.ServeMux, token string, fetches *int32) {
	mux.HandleFunc("/api/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			atomic.AddInt32(fetches, 1)
		}
		fmt.Fprintf(w, `{"csrf_token":%q}`, token)
	})
}

func TestRetryBoundOnPersistentCsrfFailure(t *testing.T) {
	var chatAttempts int32
	mux := http.NewServeMux()
	serveCsrf(mux, "tok-1", nil)
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&chatAttempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"CSRF validation failed"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	_, err := c.Chat(context.Background(), "s1", "hi", nil)
	if !errors.Is(err, ErrCsrfExpired) {
		t.Fatalf("err = %v, want ErrCsrfExpired", err)
	}
	if got := atomic.LoadInt32(&chatAttempts); got != 3 {
		t.Errorf("chat attempts = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestCsrfRefetchAfterRejection(t *testing.T) {
	var fetches int32
	var attempts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&fetches, 1)
		fmt.Fprintf(w, `{"csrf_token":"tok-%d"}`, n)
	})
	mux.HandleFunc("/api/reset_session", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			// Reject the first token, accept the refetched one.
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"csrf token expired"}`)
			return
		}
		if got := r.Header.Get(CsrfHeader); got != "tok-2" {
			t.Errorf("second attempt carried token %q, want tok-2", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	if err := c.ResetSession(context.Background(), "s1"); err != nil {
		t.Fatalf("ResetSession failed: %v", err)
	}
	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Errorf("csrf fetches = %d, want 2", got)
	}
}

func TestCsrfTokenCachedAcrossRequests(t *testing.T) {
	var fetches int32
	mux := http.NewServeMux()
	serveCsrf(mux, "tok", &fetches)
	mux.HandleFunc("/api/reset_session", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(CsrfHeader) != "tok" {
			t.Errorf("missing csrf header")
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	for i := 0; i < 3; i++ {
		if err := c.ResetSession(context.Background(), "s1"); err != nil {
			t.Fatalf("ResetSession %d failed: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("csrf fetches = %d, want 1 (cached)", got)
	}
}

func TestThrottledAndUnavailableNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"throttled 429", http.StatusTooManyRequests, ErrThrottled},
		{"unavailable 503", http.StatusServiceUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			mux := http.NewServeMux()
			serveCsrf(mux, "tok", nil)
			mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(tt.status)
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c := newTestClient(t, srv, 2)
			_, err := c.Chat(context.Background(), "s1", "hi", nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := atomic.LoadInt32(&attempts); got != 1 {
				t.Errorf("attempts = %d, want 1 (no auto-retry)", got)
			}
		})
	}
}

func TestStaleSessionSurfacesSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/children", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Invalid session ID"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	_, err := c.Children(context.Background(), "stale")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestNetworkErrorRetriedThenSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every request now fails at the transport level

	c := newTestClient(t, srv, 2)
	_, err := c.Health(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: 0})
	_, err := c.Health(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestChatStreamsCumulativeText(t *testing.T) {
	chunks := []string{"שלום ", "אורי, ", "נתחיל?"}
	mux := http.NewServeMux()
	serveCsrf(mux, "tok", nil)
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		for _, ch := range chunks {
			fmt.Fprint(w, ch)
			f.Flush()
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	var cumulative []string
	reply, err := c.Chat(context.Background(), "s1", "hi", func(soFar string) {
		cumulative = append(cumulative, soFar)
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	want := strings.Join(chunks, "")
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	if len(cumulative) == 0 || cumulative[len(cumulative)-1] != want {
		t.Errorf("final cumulative callback = %v, want last element %q", cumulative, want)
	}
	for i := 1; i < len(cumulative); i++ {
		if !strings.HasPrefix(cumulative[i], cumulative[i-1]) {
			t.Errorf("cumulative text shrank: %q then %q", cumulative[i-1], cumulative[i])
		}
	}
}

func TestInitCachesPiggybackedCsrfToken(t *testing.T) {
	var fetches int32
	mux := http.NewServeMux()
	serveCsrf(mux, "standalone", &fetches)
	mux.HandleFunc("/api/init", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"session_id":"abc","csrf_token":"piggy"}`)
	})
	mux.HandleFunc("/api/reset_session", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(CsrfHeader); got != "piggy" {
			t.Errorf("csrf header = %q, want piggy", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	sess, err := c.Init(context.Background())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if sess.SessionID != "abc" {
		t.Errorf("session id = %q", sess.SessionID)
	}
	if err := c.ResetSession(context.Background(), sess.SessionID); err != nil {
		t.Fatalf("ResetSession failed: %v", err)
	}
	// One fetch for the init call itself; the piggybacked token replaces it,
	// so the reset call must not hit the token endpoint again.
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("token endpoint fetched %d times, want 1", got)
	}
}
