package scraper

import (
	"strings"
	"testing"

	"github.com/heliohq/mpc/internal/domain"
)

func TestSyntheticPostings(t *testing.T) {
	q := domain.JobQuery{Role: "analista de dados", Location: "Recife, PE", Quota: 10}
	postings := SyntheticPostings("indeed", q, 10)

	if len(postings) != 10 {
		t.Fatalf("expected 10 postings, got %d", len(postings))
	}

	seen := make(map[string]struct{})
	for _, p := range postings {
		if p.Source != "indeed_fallback" {
			t.Errorf("source = %q, want indeed_fallback", p.Source)
		}
		if !p.IsFallback() {
			t.Error("posting not flagged as fallback")
		}
		if !strings.Contains(p.Title, q.Role) {
			t.Errorf("title %q does not carry the role", p.Title)
		}
		if p.Location != "Recife, PE" {
			t.Errorf("location = %q", p.Location)
		}
		if p.Description == "" {
			t.Error("empty description")
		}
		if _, dup := seen[p.ID]; dup {
			t.Errorf("duplicate posting id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
}

func TestSyntheticPostingsDefaultsLocation(t *testing.T) {
	postings := SyntheticPostings("googlejobs", domain.JobQuery{Role: "dev"}, 1)
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Location != "Brasil" {
		t.Errorf("location = %q, want Brasil", postings[0].Location)
	}
}

func TestSyntheticPostingsZeroLimit(t *testing.T) {
	if got := SyntheticPostings("indeed", domain.JobQuery{Role: "dev"}, 0); got != nil {
		t.Errorf("expected nil, got %d postings", len(got))
	}
}
