package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Retrying re-issues a request after ErrCommunication, up to a fixed number
// of extra attempts with a constant backoff. Other errors return immediately.
type Retrying struct {
	next       Model
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewRetrying wraps next with bounded retries.
func NewRetrying(next Model, maxRetries int, backoff time.Duration, logger *slog.Logger) *Retrying {
	return &Retrying{
		next:       next,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger.With("client", "retry"),
	}
}

func (r *Retrying) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.logger.WarnContext(
				ctx, "retrying model call",
				"attempt", attempt,
				"max_retries", r.maxRetries,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrCommunication, ctx.Err())
			case <-time.After(r.backoff):
			}
		}

		text, err := r.next.Generate(ctx, req)
		if err == nil || !errors.Is(err, ErrCommunication) {
			return text, err
		}
		lastErr = err
	}

	return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}
