package apify

import "github.com/heliohq/mpc/internal/scraper"

// MapStatus translates an Apify run status string into the provider
// independent run status.
func MapStatus(status string) scraper.RunStatus {
	switch status {
	case "READY":
		return scraper.RunPending
	case "RUNNING":
		return scraper.RunRunning
	case "SUCCEEDED":
		return scraper.RunSucceeded
	case "FAILED":
		return scraper.RunFailed
	case "ABORTING", "ABORTED":
		return scraper.RunAborted
	case "TIMING-OUT", "TIMED-OUT":
		return scraper.RunTimedOut
	default:
		return scraper.RunUnknown
	}
}
