package usage

import (
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// Key identifies one user's usage bucket for one UTC calendar day.
type Key struct {
	UserID string
	Day    string
}

// KeyFor builds the bucket key for the given instant.
func KeyFor(userID string, at time.Time) Key {
	return Key{UserID: userID, Day: at.UTC().Format(dayFormat)}
}

// Record is one usage bucket: call count, accumulated affiliate
// revenue and the last tool invoked.
type Record struct {
	Calls    int     `json:"calls"`
	Revenue  float64 `json:"revenue"`
	LastTool string  `json:"lastTool"`
}

// Store is the ledger's storage backend. The ledger serializes
// check-then-increment itself, so implementations only need to be safe
// for concurrent independent reads and writes.
type Store interface {
	Get(key Key) (Record, bool, error)
	Put(key Key, record Record) error
	Keys() ([]Key, error)
	Delete(key Key) error
}

// MemoryStore keeps usage buckets in a process-local map. Buckets for
// past days stay until swept.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]Record)}
}

func (s *MemoryStore) Get(key Key) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	return record, ok, nil
}

func (s *MemoryStore) Put(key Key, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
	return nil
}

func (s *MemoryStore) Keys() ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *MemoryStore) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
