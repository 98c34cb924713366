package repository

import "sync"

// MemoryStore is a DocumentStore that lives only as long as the process.
// Used by tests and by STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// FailWrites makes every Put fail; lets tests observe persistence errors.
	FailWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.docs[key] = append([]byte(nil), data...)
	return nil
}
