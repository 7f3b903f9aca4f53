package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/callguide/roteiro/pkg/domain"
)

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SessionSnapshot
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]*domain.SessionSnapshot),
	}
}

// Save persists the snapshot in memory.
func (s *SessionStore) Save(ctx context.Context, sessionID string, snap *domain.SessionSnapshot) error {
	// Copy to ensure isolation, similar to serialization.
	copied := *snap
	copied.History = make([]string, len(snap.History))
	copy(copied.History, snap.History)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = &copied
	return nil
}

// Load retrieves the snapshot for a session.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	copied := *snap
	copied.History = make([]string, len(snap.History))
	copy(copied.History, snap.History)
	return &copied, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns all stored session IDs in deterministic order.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
