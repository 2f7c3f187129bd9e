package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/Revolution-Populi/revpop-samples/client/config"
)

// MemoryStore keeps blobs in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Backend() string { return config.BackendMemory }

func (m *MemoryStore) Put(_ context.Context, data []byte) (string, error) {
	id, err := blobID(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = slices.Clone(data)
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[id]
	if !ok {
		return nil, notFound(m.Backend(), id)
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[id]; !ok {
		return notFound(m.Backend(), id)
	}
	delete(m.blobs, id)
	return nil
}

func (m *MemoryStore) URL(id string) string { return "mem://" + id }

// Len returns the number of stored blobs
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *MemoryStore) Close(context.Context) error { return nil }
