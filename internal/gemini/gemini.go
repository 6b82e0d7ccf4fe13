// Package gemini calls a Gemini generateContent endpoint in structured-output
// mode and returns the raw JSON text the model produced. Every failure is
// reported as either ErrCommunication or ErrEmptyOutput; a caller never
// receives a placeholder result.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/tally/pkg/schema"
)

// Sentinel errors for model calls.
var (
	ErrCommunication = errors.New("model communication failed")
	ErrEmptyOutput   = errors.New("model returned no output")
)

// Request is one structured-output generation.
type Request struct {
	System  string
	Context string
	Schema  *schema.Schema
}

// Model produces the JSON text for a request.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New creates the Model selected by cfg.Provider, wrapped in a Retrying
// decorator when cfg.MaxRetries is positive.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Model, error) {
	var m Model

	switch cfg.Provider {
	case ProviderREST:
		m = NewClient(cfg, logger)
	case ProviderGenAI:
		sdk, err := NewSDKClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		m = sdk
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}

	if cfg.MaxRetries > 0 {
		m = NewRetrying(m, cfg.MaxRetries, cfg.RetryBackoffDuration(), logger)
	}

	return m, nil
}
