package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.apify.com/v2"

// Client is a thin wrapper over the Apify actor-run API. Adapters own the
// actor id and input shape; the client only handles transport.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client authenticated with the given API token.
func NewClient(token string) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+token)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		http:    client,
		baseURL: defaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data runData `json:"data"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// RunInfo describes the observed state of an actor run.
type RunInfo struct {
	ID        string
	Status    string
	DatasetID string
}

// StartActor submits a run of the actor with the given input. The actor id
// uses the "user/name" form; the API path wants "user~name".
func (c *Client) StartActor(ctx context.Context, actorID string, input any) (RunInfo, error) {
	path := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, strings.ReplaceAll(actorID, "/", "~"))

	var resp runResponse
	var apiErr apiError
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&resp).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to start actor %s: %w", actorID, err)
	}
	if httpResp.StatusCode() != 201 {
		if apiErr.Error.Message != "" {
			return RunInfo{}, fmt.Errorf("actor %s start rejected: %s", actorID, apiErr.Error.Message)
		}
		return RunInfo{}, fmt.Errorf("actor %s start rejected: status %d", actorID, httpResp.StatusCode())
	}
	if resp.Data.ID == "" {
		return RunInfo{}, fmt.Errorf("actor %s start returned no run id", actorID)
	}

	return RunInfo{ID: resp.Data.ID, Status: resp.Data.Status, DatasetID: resp.Data.DefaultDatasetID}, nil
}

// Run fetches the current state of an actor run.
func (c *Client) Run(ctx context.Context, runID string) (RunInfo, error) {
	path := fmt.Sprintf("%s/actor-runs/%s", c.baseURL, runID)

	var resp runResponse
	var apiErr apiError
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetResult(&resp).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	if httpResp.StatusCode() != 200 {
		if apiErr.Error.Message != "" {
			return RunInfo{}, fmt.Errorf("run %s lookup failed: %s", runID, apiErr.Error.Message)
		}
		return RunInfo{}, fmt.Errorf("run %s lookup failed: status %d", runID, httpResp.StatusCode())
	}

	return RunInfo{ID: resp.Data.ID, Status: resp.Data.Status, DatasetID: resp.Data.DefaultDatasetID}, nil
}

// AbortRun requests an abort of a running actor. Failures are reported but
// not retried; the run will time out remotely either way.
func (c *Client) AbortRun(ctx context.Context, runID string) error {
	path := fmt.Sprintf("%s/actor-runs/%s/abort", c.baseURL, runID)

	httpResp, err := c.http.R().
		SetContext(ctx).
		Post(path)
	if err != nil {
		return fmt.Errorf("failed to abort run %s: %w", runID, err)
	}
	if httpResp.StatusCode() != 200 {
		return fmt.Errorf("abort of run %s rejected: status %d", runID, httpResp.StatusCode())
	}
	return nil
}

// DatasetItems reads a page of raw items from a dataset. Items are returned
// as raw JSON so each adapter can decode its own actor's shape.
func (c *Client) DatasetItems(ctx context.Context, datasetID string, offset, limit int) ([]json.RawMessage, error) {
	path := fmt.Sprintf("%s/datasets/%s/items", c.baseURL, datasetID)

	var items []json.RawMessage
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("format", "json").
		SetResult(&items).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", datasetID, err)
	}
	if httpResp.StatusCode() != 200 {
		return nil, fmt.Errorf("dataset %s read failed: status %d", datasetID, httpResp.StatusCode())
	}
	return items, nil
}
