package apify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heliohq/mpc/internal/scraper"
)

func TestStartActor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/acts/misceres~indeed-scraper/runs" {
			t.Errorf("path = %s, want tilde-encoded actor id", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("authorization = %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run1","status":"READY","defaultDatasetId":"ds1"}}`))
	}))
	defer srv.Close()

	c := NewClient("tok")
	c.SetBaseURL(srv.URL)

	info, err := c.StartActor(context.Background(), "misceres/indeed-scraper", map[string]any{"position": "dev"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "run1" || info.DatasetID != "ds1" {
		t.Errorf("unexpected run info: %+v", info)
	}
}

func TestStartActorRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"token-not-found","message":"API token not found"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad")
	c.SetBaseURL(srv.URL)

	if _, err := c.StartActor(context.Background(), "misceres/indeed-scraper", nil); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/actor-runs/run1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"run1","status":"SUCCEEDED","defaultDatasetId":"ds1"}}`))
	}))
	defer srv.Close()

	c := NewClient("tok")
	c.SetBaseURL(srv.URL)

	info, err := c.Run(context.Background(), "run1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != "SUCCEEDED" {
		t.Errorf("status = %s", info.Status)
	}
}

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/ds1/items" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("offset"); got != "20" {
			t.Errorf("offset = %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"a":1},{"a":2}]`))
	}))
	defer srv.Close()

	c := NewClient("tok")
	c.SetBaseURL(srv.URL)

	items, err := c.DatasetItems(context.Background(), "ds1", 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want scraper.RunStatus
	}{
		{"READY", scraper.RunPending},
		{"RUNNING", scraper.RunRunning},
		{"SUCCEEDED", scraper.RunSucceeded},
		{"FAILED", scraper.RunFailed},
		{"ABORTED", scraper.RunAborted},
		{"TIMED-OUT", scraper.RunTimedOut},
		{"SOMETHING-NEW", scraper.RunUnknown},
	}
	for _, tt := range tests {
		if got := MapStatus(tt.in); got != tt.want {
			t.Errorf("MapStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
