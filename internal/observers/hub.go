// Package observers fans classification state updates out to live
// dashboard connections over WebSocket.
package observers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/JaimeStill/tally/internal/classification"
)

// ErrClosed is returned by Subscribe after the hub has been closed.
var ErrClosed = errors.New("observer hub closed")

// Subscriber receives state updates from a Hub.
type Subscriber struct {
	updates chan classification.Update
}

// Updates returns the receive channel. It is closed when the subscriber is
// removed or the hub shuts down.
func (s *Subscriber) Updates() <-chan classification.Update {
	return s.updates
}

// Hub broadcasts state updates to every subscriber. Publish never blocks:
// a subscriber whose buffer is full loses its oldest pending update, so a
// slow observer always ends up holding the newest state.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewHub creates a Hub whose subscribers buffer up to buffer updates.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
		logger: logger.With("system", "observers"),
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscriber{updates: make(chan classification.Update, h.buffer)}
	h.subs[sub] = struct{}{}
	h.logger.Debug("observer subscribed", "observers", len(h.subs))
	return sub, nil
}

// Unsubscribe removes sub and closes its channel. Unknown subscribers are ignored.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.updates)
	h.logger.Debug("observer unsubscribed", "observers", len(h.subs))
}

// Publish implements classification.Sink.
func (h *Hub) Publish(ctx context.Context, update classification.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for sub := range h.subs {
		select {
		case sub.updates <- update:
			continue
		default:
		}

		select {
		case <-sub.updates:
			h.logger.WarnContext(ctx, "observer lagging, dropped stale update")
		default:
		}
		sub.updates <- update
	}
}

// Len returns the number of current subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Ready reports whether the hub still accepts subscribers.
func (h *Hub) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed
}

// Close removes every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.subs {
		close(sub.updates)
	}
	clear(h.subs)
	h.logger.Info("observer hub closed")
}
