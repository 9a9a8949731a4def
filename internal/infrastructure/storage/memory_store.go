package storage

import (
	"context"
	"sync"

	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

var _ repository.DraftStore = (*MemoryStore)(nil)

// MemoryStore implementación en memoria de DraftStore (tests y modo efímero).
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore construye un almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get devuelve el valor o repository.ErrKeyNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

// Set reemplaza el valor de la clave.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete elimina la clave si existe.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
