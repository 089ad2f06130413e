package llm

import (
	"context"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/logger"
)

// Generation parameters shared by all providers. Extraction wants
// deterministic, parseable output, so the temperature stays low.
const (
	temperature     = 0.2
	maxOutputTokens = 2048
)

// TextModel is a single text generation backend.
type TextModel interface {
	// Name returns the provider-qualified model name, e.g. "gemini-2.0-flash".
	Name() string

	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain orders models by preference. A call uses the primary model and, on
// failure, exactly one fallback hop to the next model in line; models past
// the first fallback are never consulted within a single call.
type Chain struct {
	models []TextModel
}

// NewChain builds a chain from the given models, dropping nil entries.
func NewChain(models ...TextModel) *Chain {
	c := &Chain{}
	for _, m := range models {
		if m != nil {
			c.models = append(c.models, m)
		}
	}
	return c
}

// Empty reports whether no backend is configured at all.
func (c *Chain) Empty() bool {
	return len(c.models) == 0
}

// Generate runs the prompt against the primary model, falling back to the
// next model once when the primary fails. Returns the completion and the
// name of the model that produced it.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, string, error) {
	if c.Empty() {
		return "", "", domain.ErrModelUnavailable
	}

	attempts := len(c.models)
	if attempts > 2 {
		attempts = 2
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		m := c.models[i]
		text, err := m.Generate(ctx, prompt)
		if err == nil {
			return text, m.Name(), nil
		}
		lastErr = err
		logger.With(logger.Fields{logger.FieldModel: m.Name()}).
			Warn(ctx, "model call failed: %v", err)

		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
	}
	return "", "", lastErr
}
