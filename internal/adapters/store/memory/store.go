package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
)

// Store keeps records in process memory. Nothing survives a restart.
type Store struct {
	mu      sync.RWMutex
	records map[string]string
}

var _ ports.KVStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{records: map[string]string{}}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	if !ok {
		return "", fmt.Errorf("record %q: %w", key, domain.ErrRecordNotFound)
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
