package credstore

import "sync"

// MemoryStore is an in-process credential store used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool

	// Clears counts Clear calls on a non-empty store.
	Clears int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

func (s *MemoryStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, s.set, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.Clears++
	}
	s.creds = Credentials{}
	s.set = false
	return nil
}
