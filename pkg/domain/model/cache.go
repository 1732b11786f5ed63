package model

import (
	"strings"

	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// DefaultCacheCapacity is the number of answered queries kept in the cache
const DefaultCacheCapacity = 20

// CacheEntry is one cached query/answer pair. Seq is the insertion ordinal;
// lookups never change it.
type CacheEntry struct {
	Query      string           `json:"query"`
	Key        string           `json:"key,omitempty"`
	Answer     string           `json:"answer"`
	Categories []types.Category `json:"categories"`
	Seq        int64            `json:"seq,omitempty"`
}

// NormalizeQuery returns the cache key for a query: surrounding whitespace
// trimmed, inner whitespace collapsed to single spaces, lower-cased.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Copy returns a deep copy of the entry
func (e *CacheEntry) Copy() *CacheEntry {
	copied := *e
	if e.Categories != nil {
		copied.Categories = make([]types.Category, len(e.Categories))
		copy(copied.Categories, e.Categories)
	}
	return &copied
}
