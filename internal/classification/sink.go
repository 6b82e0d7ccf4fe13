package classification

import "context"

// EventStateUpdate is the event name carried by every published Update.
const EventStateUpdate = "state_update"

// State is the question and full record history at one point in time.
type State struct {
	Question  string   `json:"question"`
	Responses []Record `json:"responses"`
}

// Update is a state snapshot pushed to observers after the history or the
// question changes. Record is set when the change was a new classification.
type Update struct {
	Event  string  `json:"event"`
	Record *Record `json:"record,omitempty"`
	State
}

// Sink receives state updates. Publish must not block on slow receivers.
type Sink interface {
	Publish(ctx context.Context, update Update)
}

// NopSink discards every update.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(context.Context, Update) {}
