package classification

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store holds the shared classification history. The category taxonomy
// is derived from the stored records on every read, so a category exists
// exactly when at least one record carries it.
type Store interface {
	// Categories returns the distinct primary domains, sorted.
	Categories() []string
	// Records returns a snapshot of the history in append order.
	Records() []Record
	Len() int
	// Append adds a record. Records without an ID or primary domain are rejected.
	Append(rec Record) error
	// Reset discards every record.
	Reset()
}

type memoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-process Store safe for concurrent use.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		categories = append(categories, rec.Classification.PrimaryDomain)
	}

	slices.Sort(categories)
	return slices.Compact(categories)
}

func (s *memoryStore) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.records == nil {
		return []Record{}
	}
	return slices.Clone(s.records)
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *memoryStore) Append(rec Record) error {
	if rec.ID == uuid.Nil || rec.Classification.PrimaryDomain == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *memoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
