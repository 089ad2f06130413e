package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClaudeNilWithoutKey(t *testing.T) {
	if NewClaude("", "claude-3-5-sonnet-latest") != nil {
		t.Error("missing key must yield a nil backend")
	}
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("anthropic-version = %q", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if req.MaxTokens != maxOutputTokens {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"ok\":true}"}]}`))
	}))
	defer srv.Close()

	c := NewClaude("sk-test", "claude-3-5-sonnet-latest")
	c.SetEndpoint(srv.URL)

	text, err := c.Generate(context.Background(), "analise as vagas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"ok":true}` {
		t.Errorf("text = %q", text)
	}
}

func TestClaudeGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"Too many requests"}}`))
	}))
	defer srv.Close()

	c := NewClaude("sk-test", "claude-3-5-sonnet-latest")
	c.SetEndpoint(srv.URL)

	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestClaudeGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClaude("sk-test", "claude-3-5-sonnet-latest")
	c.SetEndpoint(srv.URL)

	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error on empty content")
	}
}
