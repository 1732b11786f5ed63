package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/utils/safe"
	"google.golang.org/api/option"
)

const defaultObject = "query_cache.json"

// GCS keeps the cache document as one Cloud Storage object
type GCS struct {
	client *storage.Client
	bucket string
	object string
}

var _ interfaces.CacheStore = &GCS{}

func New(ctx context.Context, bucket, object string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket is required")
	}
	if object == "" {
		object = defaultObject
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCS{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

func (g *GCS) handle() *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(g.object)
}

func (g *GCS) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	r, err := g.handle().NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return []*model.CacheEntry{}, nil
		}
		return nil, goerr.Wrap(err, "failed to open cache object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", g.object),
		)
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cache object", goerr.V("object", g.object))
	}

	entries, err := model.UnmarshalCacheDocument(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse cache object", goerr.V("object", g.object))
	}
	return entries, nil
}

// Save uploads the full document. The object is only replaced when the
// writer closes successfully.
func (g *GCS) Save(ctx context.Context, entries []*model.CacheEntry) error {
	data, err := model.MarshalCacheDocument(entries)
	if err != nil {
		return err
	}

	w := g.handle().NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write cache object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", g.object),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize cache object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", g.object),
		)
	}
	return nil
}

func (g *GCS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
