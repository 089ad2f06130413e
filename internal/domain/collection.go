package domain

import "time"

// CollectionStatus represents the lifecycle status of a Collection.
// Terminal statuses are immutable.
type CollectionStatus string

const (
	CollectionRunning   CollectionStatus = "running"
	CollectionSucceeded CollectionStatus = "succeeded"
	CollectionFailed    CollectionStatus = "failed"
	CollectionCancelled CollectionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s CollectionStatus) Terminal() bool {
	return s == CollectionSucceeded || s == CollectionFailed || s == CollectionCancelled
}

// Collection is the deduplicated, normalized set of postings produced for
// one JobQuery. Postings are append-only while running and ordered by
// arrival across adapters.
type Collection struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Query       JobQuery         `json:"query"`
	Postings    []Posting        `json:"postings"`
	SourcesUsed []string         `json:"sources_used"`
	Status      CollectionStatus `json:"status"`
	Degraded    bool             `json:"degraded"`
	CapApplied  bool             `json:"cap_applied"`
	Reasons     []string         `json:"reasons,omitempty"`
}

// CollectionSummary is the registry listing shape.
type CollectionSummary struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Role       string           `json:"role"`
	Location   string           `json:"location,omitempty"`
	Postings   int              `json:"postings"`
	Sources    []string         `json:"sources"`
	Status     CollectionStatus `json:"status"`
	Degraded   bool             `json:"degraded"`
	CapApplied bool             `json:"cap_applied"`
}

// Summary projects the collection into its listing shape.
func (c *Collection) Summary() CollectionSummary {
	return CollectionSummary{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		Role:       c.Query.Role,
		Location:   c.Query.Location,
		Postings:   len(c.Postings),
		Sources:    c.SourcesUsed,
		Status:     c.Status,
		Degraded:   c.Degraded,
		CapApplied: c.CapApplied,
	}
}
