package googlejobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/scraper"
	"github.com/heliohq/mpc/internal/scraper/apify"
)

const (
	ProviderID   = "googlejobs"
	ProviderName = "Google Jobs"

	actorID = "epctex/google-jobs-scraper"
)

// Adapter scrapes Google Jobs postings through the hosted actor.
type Adapter struct {
	client       *apify.Client
	token        string
	pollInterval time.Duration
}

// NewAdapter creates a Google Jobs adapter. An empty token leaves the
// adapter in degraded mode where only synthetic postings are produced.
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

type actorInput struct {
	Queries                  []string   `json:"queries"`
	CountryCode              string     `json:"countryCode"`
	LanguageCode             string     `json:"languageCode"`
	MaxItems                 int        `json:"maxItems"`
	LocationQuery            string     `json:"locationQuery,omitempty"`
	Radius                   int        `json:"radius,omitempty"`
	CSVFriendlyOutput        bool       `json:"csvFriendlyOutput"`
	IncludeUnfilteredResults bool       `json:"includeUnfilteredResults"`
	Proxy                    proxyInput `json:"proxy"`
}

type proxyInput struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

type actorItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CompanyName  string `json:"companyName"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	Salary       string `json:"salary"`
	ScheduleType string `json:"scheduleType"`
}

func (a *Adapter) Start(ctx context.Context, q domain.JobQuery) (string, string, error) {
	input := actorInput{
		Queries:       []string{q.Role},
		CountryCode:   "br",
		LanguageCode:  "pt-br",
		MaxItems:      q.Quota,
		LocationQuery: q.Location,
		Radius:        q.RadiusKm,
		Proxy:         proxyInput{UseApifyProxy: true},
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
	external := item.ID
	if external == "" {
		external = item.URL
	}
	p := domain.Posting{
		ID:          domain.PostingID(ProviderID, external),
		Title:       item.Title,
		Company:     item.CompanyName,
		Location:    item.Location,
		Description: item.Description,
		URL:         item.URL,
		Source:      ProviderID,
		SalaryText:  item.Salary,
		JobType:     item.ScheduleType,
	}
	p.Normalize()
	return p
}
