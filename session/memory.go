package session

import (
	"context"
	"sync"

	"github.com/tallyhq/authflow"
)

type memoryEntry struct {
	Payload authflow.SessionPayload
	Options authflow.SessionOptions
}

// MemoryStore keeps sessions in a map. Meant for tests and demos.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	last    *memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}}
}

// Set implements authflow.SessionStore.
func (s *MemoryStore) Set(_ context.Context, payload authflow.SessionPayload, opts authflow.SessionOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{Payload: payload, Options: opts}
	s.entries[payload.Token] = entry
	s.last = &entry
	return nil
}

// Get returns the payload stored under token.
func (s *MemoryStore) Get(token string) (authflow.SessionPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	return entry.Payload, ok
}

// Delete removes token and reports whether it existed.
func (s *MemoryStore) Delete(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[token]
	delete(s.entries, token)
	return ok
}

// Last returns the most recent write along with the options it was
// written with, for assertions on persistence policy.
func (s *MemoryStore) Last() (authflow.SessionPayload, authflow.SessionOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return authflow.SessionPayload{}, authflow.SessionOptions{}, false
	}
	return s.last.Payload, s.last.Options, true
}

// Len reports how many sessions are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
