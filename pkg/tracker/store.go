package tracker

import (
	"sync"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
)

// Store persists the tab's session between navigations. Implementations
// back onto whatever the embedding runtime offers (session storage, a
// temp file, memory).
type Store interface {
	Load() (*tracking.Session, error)
	Save(session *tracking.Session) error
	Clear() error
}

// MemoryStore is the in-process Store used by default and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	session *tracking.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*tracking.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *MemoryStore) Save(session *tracking.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
