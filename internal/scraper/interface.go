package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/logger"
)

// RunStatus is the lifecycle state of a remote scrape run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
	RunTimedOut  RunStatus = "timed_out"
	RunUnknown   RunStatus = "unknown"
)

// Terminal returns true when the run can no longer make progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunSucceeded, RunFailed, RunAborted, RunTimedOut:
		return true
	}
	return false
}

// Adapter defines the interface for job posting providers.
type Adapter interface {
	// ProviderID returns the unique identifier for this provider.
	ProviderID() string

	// DisplayName returns a human-readable name for this provider.
	DisplayName() string

	// Available reports whether the provider has credentials to run.
	Available() bool

	// Start submits a scrape run for the query.
	// Returns:
	//   - runID: remote run identifier.
	//   - datasetID: dataset holding results, may be empty until the run finishes.
	//   - err: non-nil if submission fails.
	Start(ctx context.Context, q domain.JobQuery) (runID, datasetID string, err error)

	// Status reports the current state of a run. The returned datasetID
	// replaces the one from Start once the remote service assigns it.
	Status(ctx context.Context, runID string) (status RunStatus, datasetID string, err error)

	// Fetch pages through a dataset and maps items into postings.
	Fetch(ctx context.Context, datasetID string, offset, limit int) ([]domain.Posting, error)

	// Cancel aborts a run. Returns true when the abort was accepted.
	Cancel(ctx context.Context, runID string) bool

	// RunBlocking executes the full submit/poll/fetch cycle, honoring ctx
	// for the collection deadline. On degradation it returns synthetic
	// postings together with an advisory error.
	RunBlocking(ctx context.Context, q domain.JobQuery, limit int) ([]domain.Posting, error)
}

// PollConfig tunes the shared polling loop.
type PollConfig struct {
	Interval time.Duration
}

// Poll drives a submitted run to completion, fetching the dataset once the
// run succeeds. The adapter's Cancel is invoked when ctx expires while the
// run is still in flight.
func Poll(ctx context.Context, a Adapter, runID, datasetID string, limit int, cfg PollConfig) ([]domain.Posting, error) {
	interval := cfg.Interval
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Cancel(context.Background(), runID)
			logger.With(logger.Fields{logger.FieldSource: a.ProviderID()}).
				Warn(nil, "scrape run %s cancelled: %v", runID, ctx.Err())
			return nil, domain.ErrScrapeTimeout
		case <-ticker.C:
			status, dsID, err := a.Status(ctx, runID)
			if err != nil {
				// Transient status failures are retried on the next tick.
				logger.With(logger.Fields{logger.FieldSource: a.ProviderID()}).
					Warn(nil, "status poll for run %s failed: %v", runID, err)
				continue
			}
			if dsID != "" {
				datasetID = dsID
			}

			if !status.Terminal() {
				continue
			}

			if status != RunSucceeded {
				return nil, errors.New("scrape run ended with status " + string(status))
			}

			return FetchAll(ctx, a, datasetID, limit)
		}
	}
}

// FetchAll pages through a dataset until limit postings are read or the
// dataset is exhausted.
func FetchAll(ctx context.Context, a Adapter, datasetID string, limit int) ([]domain.Posting, error) {
	const pageSize = 100

	var out []domain.Posting
	offset := 0
	for len(out) < limit {
		want := limit - len(out)
		if want > pageSize {
			want = pageSize
		}
		page, err := a.Fetch(ctx, datasetID, offset, want)
		if err != nil {
			if len(out) > 0 {
				// Partial results beat none.
				return out, nil
			}
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		offset += len(page)
	}
	return out, nil
}
