package repositories

import (
	"bytes"
	"context"
	"sync"

	"github.com/BradenHooton/conecta/internal/models"
)

// MemoryStore keeps values in a map. Transactions hold the store lock for
// their whole duration and stage writes until commit.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *MemoryStore) get(key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = bytes.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Lock is a no-op: a transaction already holds the whole store.
func (s *MemoryStore) Lock(ctx context.Context, keys ...string) error { return nil }

func (s *MemoryStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}

	for k, v := range tx.staged {
		if v == nil {
			delete(s.data, k)
		} else {
			s.data[k] = v
		}
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// memoryTx records writes in staged; a nil value marks a deletion.
type memoryTx struct {
	store  *MemoryStore
	staged map[string][]byte
}

func (t *memoryTx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		if v == nil {
			return nil, models.ErrNotFound
		}
		return bytes.Clone(v), nil
	}
	return t.store.get(key)
}

func (t *memoryTx) Put(ctx context.Context, key string, value []byte) error {
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	t.staged[key] = v
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, key string) error {
	t.staged[key] = nil
	return nil
}

func (t *memoryTx) Lock(ctx context.Context, keys ...string) error { return nil }
