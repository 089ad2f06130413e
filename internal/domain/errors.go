package domain

import "errors"

// Sentinel errors for the pipeline. Handlers map these to HTTP statuses;
// everything else surfaces as a generic 500 without internals.
var (
	// ErrBadRequest indicates a malformed request: empty role, quota out of range.
	ErrBadRequest = errors.New("bad request")

	// ErrAdapterUnavailable indicates missing scraper credentials or a refused submission.
	ErrAdapterUnavailable = errors.New("adapter unavailable")

	// ErrScrapeTimeout indicates the remote run never reached a terminal status in time.
	ErrScrapeTimeout = errors.New("scrape timeout")

	// ErrModelUnavailable indicates no LLM credential is configured or reachable.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelParseFailure indicates the model output could not be parsed as JSON after retry.
	ErrModelParseFailure = errors.New("model parse failure")

	// ErrDeadline indicates the whole-run deadline expired.
	ErrDeadline = errors.New("deadline exceeded")

	// ErrNotFound indicates an unknown collection or extraction run id.
	ErrNotFound = errors.New("not found")
)
