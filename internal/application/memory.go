package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/obfuscation"
	"github.com/bnema/memochat/internal/ports"
)

// FactMemory is the bounded fact map of one session. Every mutation
// re-persists the whole map obfuscated under the session PIN.
type FactMemory struct {
	store   ports.KVStore
	pin     string
	facts   domain.Facts
	catalog locale.Catalog
}

func NewFactMemory(store ports.KVStore, pin string, facts domain.Facts, catalog locale.Catalog) *FactMemory {
	return &FactMemory{
		store:   store,
		pin:     pin,
		facts:   facts.Clone(),
		catalog: catalog,
	}
}

// Save upserts key. The in-memory map only changes once the new map has
// been persisted.
func (m *FactMemory) Save(ctx context.Context, key, value string) (string, error) {
	if !m.facts.Accepts(key) {
		return m.catalog.MemoryFull, domain.ErrMemoryFull
	}

	next := m.facts.Clone()
	next[key] = value
	if err := m.persist(ctx, next); err != nil {
		return "", err
	}
	m.facts = next

	return m.catalog.Saved(key), nil
}

func (m *FactMemory) Get(key string) string {
	if value, ok := m.facts[key]; ok && value != "" {
		return m.catalog.Found(key, value)
	}
	return m.catalog.Missing(key)
}

// Delete removes key. Absent keys are a no-op. The in-memory removal
// stands even when persisting fails; the error is returned for logging.
func (m *FactMemory) Delete(ctx context.Context, key string) error {
	if _, ok := m.facts[key]; !ok {
		return nil
	}

	next := m.facts.Clone()
	delete(next, key)
	m.facts = next

	return m.persist(ctx, next)
}

// ListAll serializes the whole map for the greeting flow.
func (m *FactMemory) ListAll() string {
	raw, err := json.Marshal(m.facts)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (m *FactMemory) Snapshot() domain.Facts {
	return m.facts.Clone()
}

func (m *FactMemory) Len() int {
	return len(m.facts)
}

func (m *FactMemory) persist(ctx context.Context, facts domain.Facts) error {
	blob, err := obfuscation.Encode(facts, m.pin)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := m.store.Put(ctx, FactsKey, blob); err != nil {
		return fmt.Errorf("store memory: %w", err)
	}
	return nil
}
