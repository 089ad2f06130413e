package domain

import "time"

// RunStatus tracks the extraction state machine:
// pending → collecting_context → batching → model_calling → merging →
// ranked → succeeded, with a branch to failed after model retries.
type RunStatus string

const (
	RunPending           RunStatus = "pending"
	RunCollectingContext RunStatus = "collecting_context"
	RunBatching          RunStatus = "batching"
	RunModelCalling      RunStatus = "model_calling"
	RunMerging           RunStatus = "merging"
	RunRanked            RunStatus = "ranked"
	RunSucceeded         RunStatus = "succeeded"
	RunFailed            RunStatus = "failed"
)

// KeywordCategory classifies a keyword deterministically from its term.
type KeywordCategory string

const (
	CategoryTechnical     KeywordCategory = "technical"
	CategoryTool          KeywordCategory = "tool"
	CategoryBehavioral    KeywordCategory = "behavioral"
	CategoryCertification KeywordCategory = "certification"
	CategoryOther         KeywordCategory = "other"
)

// ValidCategory reports whether c is one of the five known categories.
func ValidCategory(c KeywordCategory) bool {
	switch c {
	case CategoryTechnical, CategoryTool, CategoryBehavioral, CategoryCertification, CategoryOther:
		return true
	}
	return false
}

// Keyword is one ranked term. Terms are unique case-insensitively within
// a ranked list.
type Keyword struct {
	Term      string          `json:"term"`
	Frequency int             `json:"frequency"`
	Category  KeywordCategory `json:"category"`
	Score     float64         `json:"score"`
}

// Batch is one LLM call over a subset of a collection's postings. Each
// posting appears in at most one batch.
type Batch struct {
	Index       int       `json:"index"`
	PostingIDs  []string  `json:"posting_ids"`
	RawResponse string    `json:"raw_response,omitempty"`
	Keywords    []Keyword `json:"parsed_keywords,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// RunSummary is the listing view of an extraction run, without batches or
// raw model answers.
type RunSummary struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	RoleContext  string    `json:"role_context"`
	AreaContext  string    `json:"area_context,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Status       RunStatus `json:"status"`
	ModelUsed    string    `json:"model_used,omitempty"`
	Keywords     int       `json:"keywords"`
}

// ExtractionRun is one end-to-end keyword extraction against one collection.
// RankedKeywords is populated only when Status is RunSucceeded.
type ExtractionRun struct {
	ID             string                        `json:"id"`
	CollectionID   string                        `json:"collection_id"`
	RoleContext    string                        `json:"role_context"`
	AreaContext    string                        `json:"area_context,omitempty"`
	CreatedAt      time.Time                     `json:"created_at"`
	Batches        []Batch                       `json:"batches"`
	RankedKeywords []Keyword                     `json:"ranked_keywords,omitempty"`
	Categories     map[KeywordCategory][]Keyword `json:"categories,omitempty"`
	ModelUsed      string                        `json:"model_used,omitempty"`
	Status         RunStatus                     `json:"status"`
}

// Summary collapses the run into its listing view.
func (r *ExtractionRun) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		CollectionID: r.CollectionID,
		RoleContext:  r.RoleContext,
		AreaContext:  r.AreaContext,
		CreatedAt:    r.CreatedAt,
		Status:       r.Status,
		ModelUsed:    r.ModelUsed,
		Keywords:     len(r.RankedKeywords),
	}
}
