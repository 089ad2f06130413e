package indeed

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/scraper"
	"github.com/heliohq/mpc/internal/scraper/apify"
)

const (
	ProviderID   = "indeed"
	ProviderName = "Indeed"

	actorID = "misceres/indeed-scraper"
)

// Indeed takes its search radius in miles, restricted to a fixed set of
// allowed values.
var allowedRadiusMiles = []int{5, 10, 15, 25, 50, 100}

// Adapter scrapes Indeed postings through the hosted actor.
type Adapter struct {
	client       *apify.Client
	token        string
	pollInterval time.Duration
}

// NewAdapter creates an Indeed adapter. An empty token leaves the adapter
// in degraded mode where only synthetic postings are produced.
func NewAdapter(token string, pollInterval time.Duration) *Adapter {
	return &Adapter{
		client:       apify.NewClient(token),
		token:        token,
		pollInterval: pollInterval,
	}
}

// Client exposes the underlying API client, used by tests to redirect it.
func (a *Adapter) Client() *apify.Client {
	return a.client
}

func (a *Adapter) ProviderID() string  { return ProviderID }
func (a *Adapter) DisplayName() string { return ProviderName }

func (a *Adapter) Available() bool {
	return a.token != ""
}

// actorInput is the input document for the hosted Indeed actor.
type actorInput struct {
	Position            string `json:"position"`
	Country             string `json:"country"`
	Location            string `json:"location,omitempty"`
	MaxItems            int    `json:"maxItems"`
	Radius              string `json:"radius,omitempty"`
	ParseCompanyDetails bool   `json:"parseCompanyDetails"`
	SaveOnlyUniqueItems bool   `json:"saveOnlyUniqueItems"`
}

// actorItem is one dataset item as emitted by the actor.
type actorItem struct {
	ID           string   `json:"id"`
	PositionName string   `json:"positionName"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Salary       string   `json:"salary"`
	JobTypes     []string `json:"jobType"`
}

func (a *Adapter) Start(ctx context.Context, q domain.JobQuery) (string, string, error) {
	input := actorInput{
		Position:            q.Role,
		Country:             "BR",
		Location:            q.Location,
		MaxItems:            q.Quota,
		Radius:              snapRadius(q.RadiusKm),
		SaveOnlyUniqueItems: true,
	}

	info, err := a.client.StartActor(ctx, actorID, input)
	if err != nil {
		return "", "", err
	}
	return info.ID, info.DatasetID, nil
}

func (a *Adapter) Status(ctx context.Context, runID string) (scraper.RunStatus, string, error) {
	info, err := a.client.Run(ctx, runID)
	if err != nil {
		return scraper.RunUnknown, "", err
	}
	return apify.MapStatus(info.Status), info.DatasetID, nil
}

func (a *Adapter) Fetch(ctx context.Context, datasetID string, offset, limit int) ([]domain.Posting, error) {
	raw, err := a.client.DatasetItems(ctx, datasetID, offset, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Posting, 0, len(raw))
	for _, msg := range raw {
		var item actorItem
		if err := json.Unmarshal(msg, &item); err != nil {
			logger.With(logger.Fields{logger.FieldSource: ProviderID}).
				Warn(ctx, "skipping malformed dataset item: %v", err)
			continue
		}
		out = append(out, mapItem(item))
	}
	return out, nil
}

func (a *Adapter) Cancel(ctx context.Context, runID string) bool {
	if err := a.client.AbortRun(ctx, runID); err != nil {
		logger.With(logger.Fields{logger.FieldSource: ProviderID}).
			Warn(ctx, "abort of run %s failed: %v", runID, err)
		return false
	}
	return true
}

func (a *Adapter) RunBlocking(ctx context.Context, q domain.JobQuery, limit int) ([]domain.Posting, error) {
	if !a.Available() {
		return scraper.SyntheticPostings(ProviderID, q, limit), nil
	}

	runID, datasetID, err := a.Start(ctx, q)
	if err != nil {
		return nil, domain.ErrAdapterUnavailable
	}

	postings, err := scraper.Poll(ctx, a, runID, datasetID, limit, scraper.PollConfig{Interval: a.pollInterval})
	if err != nil {
		// The collection deadline expired: no synthetic substitute, the
		// coordinator decides how to finalize.
		if ctx.Err() != nil {
			return postings, err
		}
		if len(postings) == 0 {
			return scraper.SyntheticPostings(ProviderID, q, limit), err
		}
		return postings, err
	}
	return postings, nil
}

func mapItem(item actorItem) domain.Posting {
	p := domain.Posting{
		ID:          domain.PostingID(ProviderID, firstNonEmpty(item.ID, item.URL)),
		Title:       item.PositionName,
		Company:     item.Company,
		Location:    item.Location,
		Description: item.Description,
		URL:         item.URL,
		Source:      ProviderID,
		SalaryText:  item.Salary,
		JobType:     strings.Join(item.JobTypes, ", "),
	}
	p.Normalize()
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// snapRadius converts a kilometre radius to the nearest radius Indeed
// accepts, in miles.
func snapRadius(km int) string {
	if km <= 0 {
		km = domain.DefaultRadiusKm
	}
	miles := float64(km) * 0.621371

	best := allowedRadiusMiles[0]
	bestDiff := miles - float64(best)
	if bestDiff < 0 {
		bestDiff = -bestDiff
	}
	for _, r := range allowedRadiusMiles[1:] {
		diff := miles - float64(r)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best = r
			bestDiff = diff
		}
	}
	return strconv.Itoa(best)
}
