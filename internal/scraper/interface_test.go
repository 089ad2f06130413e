package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/heliohq/mpc/internal/domain"
)

// pagedAdapter serves a fixed set of postings in pages, failing after an
// optional number of successful Fetch calls.
type pagedAdapter struct {
	postings  []domain.Posting
	failAfter int
	fetches   int
}

func (a *pagedAdapter) ProviderID() string  { return "paged" }
func (a *pagedAdapter) DisplayName() string { return "Paged" }
func (a *pagedAdapter) Available() bool     { return true }

func (a *pagedAdapter) Start(context.Context, domain.JobQuery) (string, string, error) {
	return "run", "ds", nil
}

func (a *pagedAdapter) Status(context.Context, string) (RunStatus, string, error) {
	return RunSucceeded, "ds", nil
}

func (a *pagedAdapter) Fetch(_ context.Context, _ string, offset, limit int) ([]domain.Posting, error) {
	a.fetches++
	if a.failAfter > 0 && a.fetches > a.failAfter {
		return nil, errors.New("boom")
	}
	if offset >= len(a.postings) {
		return nil, nil
	}
	end := offset + limit
	if end > len(a.postings) {
		end = len(a.postings)
	}
	return a.postings[offset:end], nil
}

func (a *pagedAdapter) Cancel(context.Context, string) bool { return true }

func (a *pagedAdapter) RunBlocking(context.Context, domain.JobQuery, int) ([]domain.Posting, error) {
	return nil, nil
}

func makePostings(n int) []domain.Posting {
	out := make([]domain.Posting, n)
	for i := range out {
		out[i] = domain.Posting{ID: fmt.Sprintf("p%d", i)}
	}
	return out
}

func TestFetchAllPagesToLimit(t *testing.T) {
	a := &pagedAdapter{postings: makePostings(250)}

	got, err := FetchAll(context.Background(), a, "ds", 180)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 180 {
		t.Errorf("got %d postings, want 180", len(got))
	}
	if a.fetches != 2 {
		t.Errorf("fetch calls = %d, want 2", a.fetches)
	}
}

func TestFetchAllStopsOnExhaustion(t *testing.T) {
	a := &pagedAdapter{postings: makePostings(30)}

	got, err := FetchAll(context.Background(), a, "ds", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 30 {
		t.Errorf("got %d postings, want 30", len(got))
	}
}

func TestFetchAllKeepsPartialOnError(t *testing.T) {
	a := &pagedAdapter{postings: makePostings(250), failAfter: 1}

	got, err := FetchAll(context.Background(), a, "ds", 250)
	if err != nil {
		t.Fatalf("partial results should suppress the error, got %v", err)
	}
	if len(got) != 100 {
		t.Errorf("got %d postings, want the first page of 100", len(got))
	}
}

func TestFetchAllErrorWithNothing(t *testing.T) {
	a := &pagedAdapter{postings: makePostings(10), failAfter: -1}
	a.fetches = 1
	a.failAfter = 1

	if _, err := FetchAll(context.Background(), a, "ds", 10); err == nil {
		t.Fatal("expected error when the first fetch fails")
	}
}

func TestRunStatusTerminal(t *testing.T) {
	terminal := []RunStatus{RunSucceeded, RunFailed, RunAborted, RunTimedOut}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []RunStatus{RunPending, RunRunning, RunUnknown} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
