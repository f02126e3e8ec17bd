package images

import (
	"context"
	"strings"
	"sync"
)

// memoryStore keeps blobs in memory. Used by tests and demo mode where
// no S3 bucket is available.
type memoryStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	urlBase string
}

// NewMemoryStore creates an in-memory image store.
func NewMemoryStore(urlBase string) *memoryStore {
	return &memoryStore{
		blobs:   make(map[string][]byte),
		urlBase: urlBase,
	}
}

func (s *memoryStore) Put(_ context.Context, data []byte, _ string) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyImage
	}

	key := NewKey()

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp

	return key, strings.TrimSuffix(s.urlBase, "/") + "/" + key, nil
}

// Get returns a stored blob; test helper.
func (s *memoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}
