package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brimhq/growth-engine/pkg/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(config.GeminiConfig{
		APIKey:      "test-key",
		Model:       "gemini-1.5-flash",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func candidateBody(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return body
}

func TestGenerateJSONReturnsModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.Write(candidateBody(`{"subject":"hi"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	text, err := client.GenerateJSON(context.Background(), "write an email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"subject":"hi"}` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateJSONRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(candidateBody("ok"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	text, err := client.GenerateJSON(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGenerateJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.GenerateJSON(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls.Load())
	}
}

func TestGenerateJSONEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.GenerateJSON(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(config.GeminiConfig{Model: "m", BaseURL: "http://x"}); err == nil {
		t.Fatal("expected error without api key")
	}
}
