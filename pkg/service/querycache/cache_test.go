package querycache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/repository/memory"
	"github.com/secmon-lab/lifeguide/pkg/service/querycache"
)

type failingStore struct {
	mu      sync.Mutex
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return nil, nil
}

func (s *failingStore) Save(ctx context.Context, entries []*model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.saveErr
}

func (s *failingStore) Close() error { return nil }

func TestCache_InsertAndLookup(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := querycache.New(ctx, store)

	_, ok := c.Lookup("What is term life?")
	gt.B(t, ok).False()

	gt.NoError(t, c.Insert(ctx, "What is term life?", "A fixed-period policy.", []types.Category{types.CategoryPolicyTypes})).Required()

	t.Run("normalized key hits", func(t *testing.T) {
		e, ok := c.Lookup("  what IS   term life?  ")
		gt.B(t, ok).True()
		gt.V(t, e.Answer).Equal("A fixed-period policy.")
		gt.V(t, e.Categories).Equal([]types.Category{types.CategoryPolicyTypes})
	})

	t.Run("blank query misses", func(t *testing.T) {
		_, ok := c.Lookup("   ")
		gt.B(t, ok).False()
	})

	t.Run("returned entry is a copy", func(t *testing.T) {
		e, _ := c.Lookup("What is term life?")
		e.Answer = "changed"
		again, _ := c.Lookup("What is term life?")
		gt.V(t, again.Answer).Equal("A fixed-period policy.")
	})

	t.Run("document persisted", func(t *testing.T) {
		loaded, err := store.Load(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, loaded).Length(1)
		gt.V(t, store.Saves()).Equal(1)
	})
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(ctx, memory.New())
	gt.V(t, c.Capacity()).Equal(model.DefaultCacheCapacity)

	for i := range 25 {
		gt.NoError(t, c.Insert(ctx, fmt.Sprintf("question %d", i), "answer", []types.Category{types.CategoryClaims})).Required()
		gt.B(t, c.Len() <= model.DefaultCacheCapacity).True()
	}

	gt.V(t, c.Len()).Equal(model.DefaultCacheCapacity)
	for i := range 5 {
		_, ok := c.Lookup(fmt.Sprintf("question %d", i))
		gt.B(t, ok).False()
	}
	entries := c.Entries()
	gt.V(t, entries[0].Query).Equal("question 5")
	gt.V(t, entries[len(entries)-1].Query).Equal("question 24")
}

func TestCache_LookupDoesNotRefreshPosition(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(ctx, nil, querycache.WithCapacity(2))

	gt.NoError(t, c.Insert(ctx, "a", "1", nil)).Required()
	gt.NoError(t, c.Insert(ctx, "b", "2", nil)).Required()

	_, ok := c.Lookup("a")
	gt.B(t, ok).True()

	gt.NoError(t, c.Insert(ctx, "c", "3", nil)).Required()

	_, ok = c.Lookup("a")
	gt.B(t, ok).False()
	_, ok = c.Lookup("b")
	gt.B(t, ok).True()
}

func TestCache_ReinsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(ctx, nil)

	gt.NoError(t, c.Insert(ctx, "first", "old", nil)).Required()
	gt.NoError(t, c.Insert(ctx, "second", "two", nil)).Required()
	gt.NoError(t, c.Insert(ctx, "FIRST", "new", nil)).Required()

	entries := c.Entries()
	gt.A(t, entries).Length(2).Required()
	gt.V(t, entries[0].Query).Equal("first")
	gt.V(t, entries[0].Answer).Equal("new")
}

func TestCache_LoadsPersistedDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	var seeded []*model.CacheEntry
	for i := range 4 {
		q := fmt.Sprintf("q%d", i)
		seeded = append(seeded, &model.CacheEntry{Query: q, Key: q, Answer: "a"})
	}
	gt.NoError(t, store.Save(ctx, seeded)).Required()

	c := querycache.New(ctx, store, querycache.WithCapacity(3))
	gt.V(t, c.Len()).Equal(3)
	_, ok := c.Lookup("q0")
	gt.B(t, ok).False()
	_, ok = c.Lookup("q3")
	gt.B(t, ok).True()
}

func TestCache_LoadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{loadErr: errors.New("corrupt")}

	c := querycache.New(ctx, store)
	gt.V(t, c.Len()).Equal(0)
	gt.B(t, c.MemoryOnly()).False()
}

func TestCache_PersistenceFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{saveErr: errors.New("disk full")}
	c := querycache.New(ctx, store)

	err := c.Insert(ctx, "q1", "a1", nil)
	gt.Error(t, err).Is(querycache.ErrPersistence)
	gt.B(t, c.MemoryOnly()).True()

	_, ok := c.Lookup("q1")
	gt.B(t, ok).True()

	gt.NoError(t, c.Insert(ctx, "q2", "a2", nil))
	gt.V(t, store.saves).Equal(1)
	gt.V(t, c.Len()).Equal(2)
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := querycache.New(ctx, store)

	gt.NoError(t, c.Insert(ctx, "q1", "a1", nil)).Required()
	gt.NoError(t, c.Clear(ctx)).Required()

	gt.V(t, c.Len()).Equal(0)
	loaded, err := store.Load(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, loaded).Length(0)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(ctx, memory.New())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := fmt.Sprintf("q%d", i)
			_ = c.Insert(ctx, q, "a", nil)
			c.Lookup(q)
			c.Entries()
		}()
	}
	wg.Wait()

	gt.V(t, c.Len()).Equal(model.DefaultCacheCapacity)
}
