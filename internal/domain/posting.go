package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// MaxDescriptionLen bounds a posting description after normalization.
	MaxDescriptionLen = 50000

	// PlaceholderTitle is emitted when a provider omits the posting title.
	PlaceholderTitle = "Título não informado"

	// PlaceholderCompany is emitted when a provider omits the company name.
	PlaceholderCompany = "Empresa não informada"
)

// FallbackSuffix tags sources that produced synthetic demonstration data.
const FallbackSuffix = "_fallback"

// Posting is a job posting normalized to a provider-independent shape.
// Adapters translate provider JSON at the boundary; nothing downstream
// parses provider-specific fields.
type Posting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	CollectedAt time.Time `json:"collected_at"`
	SalaryText  string    `json:"salary_text,omitempty"`
	JobType     string    `json:"job_type,omitempty"`
	Seniority   string    `json:"seniority,omitempty"`
	Remote      bool      `json:"remote,omitempty"`
}

// PostingID derives a stable id from the provider tag and the provider's
// external id (or the posting URL when no id exists).
func PostingID(source, external string) string {
	sum := sha1.Sum([]byte(source + "\x00" + external))
	return hex.EncodeToString(sum[:])
}

// Normalize fills placeholders for missing fields and bounds the description.
// The posting is always emitted, even when degraded, so the pipeline stays
// observable.
func (p *Posting) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = PlaceholderTitle
	}
	p.Company = strings.TrimSpace(p.Company)
	if p.Company == "" {
		p.Company = PlaceholderCompany
	}
	p.Location = strings.TrimSpace(p.Location)
	if len(p.Description) > MaxDescriptionLen {
		p.Description = p.Description[:MaxDescriptionLen]
	}
	if p.ID == "" {
		p.ID = PostingID(p.Source, p.URL)
	}
	if p.CollectedAt.IsZero() {
		p.CollectedAt = time.Now()
	}
}

// DedupKey is the normalized (title, company, location) triple used for
// cross-provider deduplication: case-insensitive, whitespace-collapsed.
func (p Posting) DedupKey() string {
	return collapse(p.Title) + "|" + collapse(p.Company) + "|" + collapse(p.Location)
}

// IsFallback reports whether this posting is synthetic demonstration data.
func (p Posting) IsFallback() bool {
	return strings.HasSuffix(p.Source, FallbackSuffix)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
