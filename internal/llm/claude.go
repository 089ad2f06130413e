package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// Claude implements TextModel over the Anthropic Messages API.
type Claude struct {
	client   *resty.Client
	model    string
	endpoint string
}

// NewClaude creates a Claude backend. Returns nil when the API key is
// empty so the chain can skip it.
func NewClaude(apiKey, model string) *Claude {
	if apiKey == "" {
		return nil
	}

	client := resty.New()
	client.SetHeader("x-api-key", apiKey)
	client.SetHeader("anthropic-version", anthropicVersion)
	client.SetHeader("Content-Type", "application/json")

	return &Claude{client: client, model: model, endpoint: anthropicEndpoint}
}

// SetEndpoint overrides the API endpoint, used by tests.
func (c *Claude) SetEndpoint(url string) {
	c.endpoint = url
}

func (c *Claude) Name() string {
	return c.model
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	var resp anthropicResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Error.Message != "" {
			return "", fmt.Errorf("Anthropic API error: %s", resp.Error.Message)
		}
		return "", fmt.Errorf("Anthropic API error: status %d", httpResp.StatusCode())
	}

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	if out == "" {
		return "", fmt.Errorf("empty completion from Anthropic API")
	}
	return out, nil
}
