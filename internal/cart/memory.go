package cart

import (
	"context"
	"sync"
)

// MemoryStorage implementa Storage en memoria.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (storage *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	value, ok := storage.values[key]
	return value, ok, nil
}

func (storage *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	storage.values[key] = value
	return nil
}

func (storage *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	delete(storage.values, key)
	return nil
}
