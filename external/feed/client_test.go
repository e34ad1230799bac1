package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/motosense/backend/internal/platform/logging"
)

func newTestClient(maxRetries int) *Client {
	return NewClient(ClientConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		Logger:     logging.NewNop(),
	})
}

func TestFetchSendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"id":"race-1"}]`))
	}))
	defer server.Close()

	raw, err := newTestClient(3).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `[{"id":"race-1"}]` {
		t.Fatalf("unexpected payload: %s", raw)
	}
	if agent, _ := gotAgent.Load().(string); agent != defaultUserAgent {
		t.Fatalf("unexpected user agent: got=%q want=%q", agent, defaultUserAgent)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	raw, err := newTestClient(3).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "ok" {
		t.Fatalf("unexpected payload: %s", raw)
	}
	if calls.Load() != 3 {
		t.Fatalf("unexpected attempt count: got=%d want=3", calls.Load())
	}
}

func TestFetchRetriesTooManyRequests(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	if _, err := newTestClient(3).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("unexpected attempt count: got=%d want=2", calls.Load())
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestClient(3).Fetch(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried: attempts=%d", calls.Load())
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestClient(2).Fetch(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if calls.Load() != 2 {
		t.Fatalf("unexpected attempt count: got=%d want=2", calls.Load())
	}
}
