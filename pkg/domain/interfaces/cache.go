package interfaces

import (
	"context"

	"github.com/secmon-lab/lifeguide/pkg/domain/model"
)

// CacheStore persists the query cache as one document. Save always rewrites
// the whole document.
type CacheStore interface {
	// Load returns the persisted entries in insertion order. A missing
	// document yields an empty slice and no error.
	Load(ctx context.Context) ([]*model.CacheEntry, error)

	// Save replaces the persisted document with entries
	Save(ctx context.Context, entries []*model.CacheEntry) error

	// Close releases backend resources
	Close() error
}
