// Package registry keeps finished and in-flight pipeline artifacts in
// memory. Results do not survive a restart; persistence is out of scope
// for the pipeline and callers re-run collections instead.
package registry

import (
	"sync"

	"github.com/heliohq/mpc/internal/domain"
)

// Registry is a concurrency-safe store of collections and extraction runs.
type Registry struct {
	mu sync.RWMutex

	collections map[string]*domain.Collection
	runs        map[string]*domain.ExtractionRun

	// order and runOrder preserve insertion order for listings.
	order    []string
	runOrder []string

	runsByCollection map[string][]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		collections:      make(map[string]*domain.Collection),
		runs:             make(map[string]*domain.ExtractionRun),
		runsByCollection: make(map[string][]string),
	}
}

// PutCollection stores or replaces a collection snapshot. The stored copy
// is detached from the caller's slices so later appends do not race with
// readers.
func (r *Registry) PutCollection(c *domain.Collection) {
	if c == nil || c.ID == "" {
		return
	}
	snap := cloneCollection(c)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.collections[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.collections[c.ID] = snap
}

// Collection returns a copy of the collection or ErrNotFound.
func (r *Registry) Collection(id string) (*domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCollection(c), nil
}

// ListCollections returns summaries, most recent first.
func (r *Registry) ListCollections() []domain.CollectionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CollectionSummary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if c, ok := r.collections[r.order[i]]; ok {
			out = append(out, c.Summary())
		}
	}
	return out
}

// PutRun stores or replaces an extraction run snapshot.
func (r *Registry) PutRun(run *domain.ExtractionRun) {
	if run == nil || run.ID == "" {
		return
	}
	snap := cloneRun(run)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; !exists {
		r.runOrder = append(r.runOrder, run.ID)
		if run.CollectionID != "" {
			r.runsByCollection[run.CollectionID] = append(r.runsByCollection[run.CollectionID], run.ID)
		}
	}
	r.runs[run.ID] = snap
}

// Run returns a copy of the extraction run or ErrNotFound.
func (r *Registry) Run(id string) (*domain.ExtractionRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRun(run), nil
}

// RunsForCollection returns copies of all runs made against a collection,
// oldest first.
func (r *Registry) RunsForCollection(collectionID string) []*domain.ExtractionRun {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.runsByCollection[collectionID]
	out := make([]*domain.ExtractionRun, 0, len(ids))
	for _, id := range ids {
		if run, ok := r.runs[id]; ok {
			out = append(out, cloneRun(run))
		}
	}
	return out
}

// ListRuns returns run summaries, most recent first.
func (r *Registry) ListRuns() []domain.RunSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RunSummary, 0, len(r.runOrder))
	for i := len(r.runOrder) - 1; i >= 0; i-- {
		if run, ok := r.runs[r.runOrder[i]]; ok {
			out = append(out, run.Summary())
		}
	}
	return out
}

func cloneCollection(c *domain.Collection) *domain.Collection {
	snap := *c
	snap.Postings = append([]domain.Posting(nil), c.Postings...)
	snap.SourcesUsed = append([]string(nil), c.SourcesUsed...)
	snap.Reasons = append([]string(nil), c.Reasons...)
	return &snap
}

func cloneRun(run *domain.ExtractionRun) *domain.ExtractionRun {
	snap := *run
	snap.Batches = make([]domain.Batch, len(run.Batches))
	for i, b := range run.Batches {
		nb := b
		nb.PostingIDs = append([]string(nil), b.PostingIDs...)
		nb.Keywords = append([]domain.Keyword(nil), b.Keywords...)
		snap.Batches[i] = nb
	}
	snap.RankedKeywords = append([]domain.Keyword(nil), run.RankedKeywords...)
	if run.Categories != nil {
		snap.Categories = make(map[domain.KeywordCategory][]domain.Keyword, len(run.Categories))
		for k, v := range run.Categories {
			snap.Categories[k] = append([]domain.Keyword(nil), v...)
		}
	}
	return &snap
}
