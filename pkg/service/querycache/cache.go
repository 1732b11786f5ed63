package querycache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

// ErrPersistence is returned when the cache document could not be written.
// The in-memory state is already updated when it is returned.
var ErrPersistence = goerr.New("failed to persist query cache")

// Cache is a bounded FIFO of answered queries keyed by the normalized query.
// Lookups never change an entry's position. Every mutation rewrites the
// backing document until the first write failure, after which the cache is
// memory-only for the rest of the process. Only that first failure is
// reported.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	entries  []*model.CacheEntry
	index    map[string]*model.CacheEntry
	seq      int64

	persistMu  sync.Mutex
	store      interfaces.CacheStore
	memoryOnly bool
}

type Option func(*Cache)

// WithCapacity sets the maximum number of entries. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New builds the cache and loads the persisted document from store. A load
// failure is logged and the cache starts empty. A nil store makes the cache
// memory-only.
func New(ctx context.Context, store interfaces.CacheStore, opts ...Option) *Cache {
	c := &Cache{
		capacity:   model.DefaultCacheCapacity,
		index:      make(map[string]*model.CacheEntry),
		store:      store,
		memoryOnly: store == nil,
	}
	for _, opt := range opts {
		opt(c)
	}

	if store == nil {
		return c
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to load query cache, starting empty", slog.Any("error", err))
		return c
	}

	// Keep the newest entries when the document holds more than capacity
	if len(loaded) > c.capacity {
		loaded = loaded[len(loaded)-c.capacity:]
	}
	for _, e := range loaded {
		c.appendLocked(e.Query, e.Answer, e.Categories)
	}

	logging.From(ctx).Debug("query cache loaded", slog.Int("entries", len(c.entries)))
	return c
}

// Capacity returns the maximum number of entries
func (c *Cache) Capacity() int {
	return c.capacity
}

// Len returns the current number of entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// MemoryOnly reports whether persistence is disabled
func (c *Cache) MemoryOnly() bool {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	return c.memoryOnly
}

// Lookup returns a copy of the entry cached for query
func (c *Cache) Lookup(query string) (*model.CacheEntry, bool) {
	key := model.NormalizeQuery(query)
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return e.Copy(), true
}

// Entries returns copies of all entries, oldest first
func (c *Cache) Entries() []*model.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.CacheEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Copy()
	}
	return out
}

// Insert stores an answer and persists the document. Re-inserting a cached
// query replaces its answer without moving it. When the cache is full the
// oldest entry is evicted. The returned error wraps ErrPersistence; the entry
// is kept in memory either way.
func (c *Cache) Insert(ctx context.Context, query, answer string, categories []types.Category) error {
	key := model.NormalizeQuery(query)
	if key == "" {
		return goerr.New("empty query cannot be cached")
	}

	c.mu.Lock()
	if existing, ok := c.index[key]; ok {
		existing.Answer = answer
		existing.Categories = append([]types.Category(nil), categories...)
	} else {
		if len(c.entries) >= c.capacity {
			evicted := c.entries[0]
			c.entries = c.entries[1:]
			delete(c.index, evicted.Key)
			logging.From(ctx).Debug("query cache evicted oldest entry", slog.String("query", evicted.Query))
		}
		c.appendLocked(query, answer, categories)
	}
	c.mu.Unlock()

	return c.persist(ctx)
}

// Clear removes every entry and persists the empty document
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = nil
	c.index = make(map[string]*model.CacheEntry)
	c.mu.Unlock()

	return c.persist(ctx)
}

func (c *Cache) appendLocked(query, answer string, categories []types.Category) {
	c.seq++
	e := &model.CacheEntry{
		Query:      query,
		Key:        model.NormalizeQuery(query),
		Answer:     answer,
		Categories: append([]types.Category(nil), categories...),
		Seq:        c.seq,
	}
	if _, dup := c.index[e.Key]; dup {
		return
	}
	c.entries = append(c.entries, e)
	c.index[e.Key] = e
}

// persist writes the latest snapshot. persistMu orders writers so the last
// completed Save always carries the newest state.
func (c *Cache) persist(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if c.memoryOnly {
		return nil
	}

	snapshot := c.Entries()
	if err := c.store.Save(ctx, snapshot); err != nil {
		c.memoryOnly = true
		return goerr.Wrap(ErrPersistence, "query cache switched to memory-only",
			goerr.V("entries", len(snapshot)),
			goerr.V("cause", err.Error()),
		)
	}
	return nil
}
