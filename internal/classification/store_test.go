package classification_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JaimeStill/tally/internal/classification"
)

func TestMemoryStoreCategories(t *testing.T) {
	store := classification.NewMemoryStore()

	if got := store.Categories(); got == nil || len(got) != 0 {
		t.Errorf("empty store categories = %#v", got)
	}

	seed(t, store, "Oncology", "Ethics", "Oncology", "Diagnostics")

	want := []string{"Diagnostics", "Ethics", "Oncology"}
	if diff := cmp.Diff(want, store.Categories()); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if store.Len() != 4 {
		t.Errorf("len = %d, want 4", store.Len())
	}
}

func TestMemoryStoreRejectsIncompleteRecords(t *testing.T) {
	store := classification.NewMemoryStore()

	tests := []struct {
		name string
		rec  classification.Record
	}{
		{"nil id", classification.Record{Classification: classification.Result{PrimaryDomain: "Ethics"}}},
		{"no domain", classification.Record{ID: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Append(tt.rec); !errors.Is(err, classification.ErrInvalidRecord) {
				t.Errorf("err = %v, want ErrInvalidRecord", err)
			}
		})
	}

	if store.Len() != 0 {
		t.Errorf("len = %d, want 0", store.Len())
	}
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	store := classification.NewMemoryStore()
	seed(t, store, "Ethics")

	snapshot := store.Records()
	snapshot[0].Classification.PrimaryDomain = "Changed"

	if got := store.Records()[0].Classification.PrimaryDomain; got != "Ethics" {
		t.Errorf("stored record mutated through snapshot: %q", got)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := classification.NewMemoryStore()
	seed(t, store, "Ethics", "Oncology")

	store.Reset()
	store.Reset()

	if store.Len() != 0 || len(store.Records()) != 0 || len(store.Categories()) != 0 {
		t.Error("store not empty after reset")
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	store := classification.NewMemoryStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			err := store.Append(classification.Record{
				ID:             uuid.New(),
				Answer:         fmt.Sprintf("answer %d", i),
				Classification: classification.Result{PrimaryDomain: fmt.Sprintf("C%d", i%5)},
				Timestamp:      time.Now(),
			})
			if err != nil {
				t.Errorf("Append: %v", err)
			}
			_ = store.Categories()
		})
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("len = %d, want 50", store.Len())
	}
	if n := len(store.Categories()); n != 5 {
		t.Errorf("categories = %d, want 5", n)
	}
}
