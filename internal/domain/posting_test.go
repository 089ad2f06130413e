package domain

import (
	"strings"
	"testing"
)

func TestPosting_NormalizePlaceholders(t *testing.T) {
	p := Posting{Source: "indeed", URL: "https://example.com/vaga/1"}
	p.Normalize()

	if p.Title != PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", p.Title)
	}
	if p.Company != PlaceholderCompany {
		t.Errorf("company = %q, want placeholder", p.Company)
	}
	if p.ID == "" {
		t.Error("expected a derived id")
	}
	if p.CollectedAt.IsZero() {
		t.Error("expected a collection timestamp")
	}
}

func TestPosting_NormalizeKeepsExistingID(t *testing.T) {
	p := Posting{ID: "fixed", Title: "Dev", Company: "Acme", Source: "indeed"}
	p.Normalize()
	if p.ID != "fixed" {
		t.Errorf("id = %q, want fixed", p.ID)
	}
}

func TestPosting_NormalizeTruncatesDescription(t *testing.T) {
	p := Posting{Title: "Dev", Company: "Acme", Description: strings.Repeat("a", MaxDescriptionLen+100)}
	p.Normalize()
	if len(p.Description) != MaxDescriptionLen {
		t.Errorf("description length = %d, want %d", len(p.Description), MaxDescriptionLen)
	}
}

func TestPosting_DedupKey(t *testing.T) {
	a := Posting{Title: "Engenheiro de Dados", Company: "Acme Ltda", Location: "São Paulo, SP"}
	b := Posting{Title: "  engenheiro   DE dados ", Company: "ACME LTDA", Location: "são paulo,  sp"}

	if a.DedupKey() != b.DedupKey() {
		t.Errorf("keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}

	c := Posting{Title: "Engenheiro de Dados Sênior", Company: "Acme Ltda", Location: "São Paulo, SP"}
	if a.DedupKey() == c.DedupKey() {
		t.Error("different titles must not collide")
	}
}

func TestPostingID_Stable(t *testing.T) {
	if PostingID("indeed", "abc") != PostingID("indeed", "abc") {
		t.Error("same inputs must map to the same id")
	}
	if PostingID("indeed", "abc") == PostingID("googlejobs", "abc") {
		t.Error("ids must differ per source")
	}
}

func TestPosting_IsFallback(t *testing.T) {
	if !(Posting{Source: "indeed_fallback"}).IsFallback() {
		t.Error("fallback source not detected")
	}
	if (Posting{Source: "indeed"}).IsFallback() {
		t.Error("real source flagged as fallback")
	}
}
