package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
)

// Memory keeps the cache document in process memory only
type Memory struct {
	mu      sync.RWMutex
	entries []*model.CacheEntry
	saves   int
}

var _ interfaces.CacheStore = &Memory{}

func New() *Memory {
	return &Memory{}
}

func copyEntries(entries []*model.CacheEntry) []*model.CacheEntry {
	out := make([]*model.CacheEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Copy())
	}
	return out
}

func (m *Memory) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyEntries(m.entries), nil
}

func (m *Memory) Save(ctx context.Context, entries []*model.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = copyEntries(entries)
	m.saves++
	return nil
}

// Saves returns how many times the document was rewritten
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *Memory) Close() error {
	return nil
}
