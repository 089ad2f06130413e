package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/registry"
	"github.com/heliohq/mpc/internal/scraper"
	"github.com/heliohq/mpc/internal/stream"
)

// CollectorService drives the collection half of the pipeline: it fans a
// query out to the configured adapters in priority order, deduplicates what
// comes back and stores the result in the registry.
type CollectorService struct {
	adapters []scraper.Adapter
	reg      *registry.Registry
	deadline time.Duration
}

// NewCollectorService wires the collector. Adapter order is the priority
// order in which providers are consulted.
func NewCollectorService(adapters []scraper.Adapter, reg *registry.Registry, deadline time.Duration) *CollectorService {
	return &CollectorService{
		adapters: adapters,
		reg:      reg,
		deadline: deadline,
	}
}

// Collect runs a blocking collection for the query.
func (s *CollectorService) Collect(ctx context.Context, q domain.JobQuery) (*domain.Collection, error) {
	return s.collect(ctx, q, nil)
}

// CollectStreaming runs a collection, emitting progress events as it goes.
func (s *CollectorService) CollectStreaming(ctx context.Context, q domain.JobQuery, em *stream.Emitter) (*domain.Collection, error) {
	return s.collect(ctx, q, em)
}

// Get returns a stored collection by id.
func (s *CollectorService) Get(id string) (*domain.Collection, error) {
	return s.reg.Collection(id)
}

// List returns summaries of all stored collections, most recent first.
func (s *CollectorService) List() []domain.CollectionSummary {
	return s.reg.ListCollections()
}

func (s *CollectorService) collect(ctx context.Context, q domain.JobQuery, em *stream.Emitter) (*domain.Collection, error) {
	capped, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	c := &domain.Collection{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		Query:      q,
		Status:     domain.CollectionRunning,
		CapApplied: capped,
	}
	s.reg.PutCollection(c)

	ctx = logger.SetCollectionID(ctx, c.ID)
	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	start := time.Now()
	em.Emit(domain.EventStarting, fmt.Sprintf("coletando vagas para %q", q.Role), 0, nil)
	logger.CtxInfo(ctx, "collection started: role=%q quota=%d", q.Role, q.Quota)

	seenURL := make(map[string]struct{})
	seenKey := make(map[string]struct{})
	sources := make(map[string]struct{})

	for i, adapter := range s.adapters {
		remaining := q.Quota - len(c.Postings)
		if remaining <= 0 {
			break
		}

		em.Emit(domain.EventProgress,
			fmt.Sprintf("consultando %s", adapter.DisplayName()),
			float64(i)/float64(len(s.adapters))*100, nil)

		postings, runErr := adapter.RunBlocking(ctx, q, remaining)

		if runErr != nil {
			c.Degraded = true
			c.Reasons = append(c.Reasons, fmt.Sprintf("%s: %v", adapter.ProviderID(), runErr))
			logger.With(logger.Fields{logger.FieldSource: adapter.ProviderID()}).
				Warn(ctx, "adapter degraded: %v", runErr)
		}

		added := 0
		for _, p := range postings {
			if len(c.Postings) >= q.Quota {
				break
			}
			if p.URL != "" {
				if _, dup := seenURL[p.URL]; dup {
					continue
				}
			}
			key := p.DedupKey()
			if _, dup := seenKey[key]; dup {
				continue
			}

			if p.URL != "" {
				seenURL[p.URL] = struct{}{}
			}
			seenKey[key] = struct{}{}

			if p.IsFallback() {
				c.Degraded = true
			}
			sources[p.Source] = struct{}{}
			c.Postings = append(c.Postings, p)
			added++
		}

		c.SourcesUsed = sortedKeys(sources)
		s.reg.PutCollection(c)

		em.Emit(domain.EventPartial,
			fmt.Sprintf("%s retornou %d vagas", adapter.DisplayName(), added),
			float64(i+1)/float64(len(s.adapters))*100,
			map[string]any{"source": adapter.ProviderID(), "added": added, "total": len(c.Postings)})

		// Deadline expiry fails the collection; whatever arrived before the
		// cutoff stays on the stored record.
		if ctx.Err() != nil {
			return s.fail(ctx, c, em, "deadline")
		}
	}

	if len(c.Postings) < q.Quota {
		c.Degraded = true
		c.Reasons = append(c.Reasons, fmt.Sprintf("shortfall: %d of %d postings", len(c.Postings), q.Quota))
	}

	c.Status = domain.CollectionSucceeded
	s.reg.PutCollection(c)

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(c.Postings),
		logger.FieldStatus:     string(c.Status),
	}).Info(ctx, "collection finished")

	em.Emit(domain.EventResult, "coleta concluída", 100, c.Summary())
	return c, nil
}

// fail marks the collection failed on deadline expiry. The registry keeps
// whatever postings arrived before the cutoff.
func (s *CollectorService) fail(ctx context.Context, c *domain.Collection, em *stream.Emitter, reason string) (*domain.Collection, error) {
	c.Status = domain.CollectionFailed
	c.Reasons = append(c.Reasons, reason)
	s.reg.PutCollection(c)

	logger.CtxWarn(ctx, "collection failed: %s", reason)
	em.Emit(domain.EventError, "coleta interrompida", 0, map[string]any{"reason": reason})

	if reason == "deadline" {
		return c, domain.ErrDeadline
	}
	return c, errors.New(reason)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
