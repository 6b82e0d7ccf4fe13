package observers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/goleak"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/observers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func update(question string) classification.Update {
	return classification.Update{
		Event: classification.EventStateUpdate,
		State: classification.State{Question: question, Responses: []classification.Record{}},
	}
}

func TestHubPublish(t *testing.T) {
	hub := observers.NewHub(4, discardLogger())

	a, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	b, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	hub.Publish(context.Background(), update("q1"))

	for name, sub := range map[string]*observers.Subscriber{"a": a, "b": b} {
		got := <-sub.Updates()
		if got.Question != "q1" {
			t.Errorf("%s received %q, want q1", name, got.Question)
		}
	}
}

func TestHubDropsStaleUpdates(t *testing.T) {
	hub := observers.NewHub(2, discardLogger())

	sub, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	for _, q := range []string{"q1", "q2", "q3", "q4"} {
		hub.Publish(context.Background(), update(q))
	}

	var got []string
	for range 2 {
		got = append(got, (<-sub.Updates()).Question)
	}

	if got[0] != "q3" || got[1] != "q4" {
		t.Errorf("received %v, want [q3 q4]", got)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := observers.NewHub(1, discardLogger())

	sub, _ := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	if _, ok := <-sub.Updates(); ok {
		t.Error("channel not closed after unsubscribe")
	}
	if hub.Len() != 0 {
		t.Errorf("len = %d, want 0", hub.Len())
	}

	hub.Publish(context.Background(), update("ignored"))
}

func TestHubClose(t *testing.T) {
	hub := observers.NewHub(1, discardLogger())

	sub, _ := hub.Subscribe()
	hub.Close()
	hub.Close()

	if _, ok := <-sub.Updates(); ok {
		t.Error("channel not closed after hub close")
	}
	if _, err := hub.Subscribe(); !errors.Is(err, observers.ErrClosed) {
		t.Errorf("Subscribe after close err = %v, want ErrClosed", err)
	}

	hub.Unsubscribe(sub)
	hub.Publish(context.Background(), update("ignored"))
}
