package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCollection = "caches"
	defaultDocument   = "query_cache"
)

// Firestore keeps the whole cache document in a single Firestore document
type Firestore struct {
	client     *firestore.Client
	collection string
	document   string
}

var _ interfaces.CacheStore = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the collection name, used to isolate tests
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collection = prefix + f.collection
	}
}

// WithDocument sets the document ID holding the cache
func WithDocument(id string) Option {
	return func(f *Firestore) {
		if id != "" {
			f.document = id
		}
	}
}

// cacheDoc is the Firestore document representation of the cache
type cacheDoc struct {
	Entries   []cacheEntryDoc `firestore:"Entries"`
	UpdatedAt time.Time       `firestore:"UpdatedAt"`
}

type cacheEntryDoc struct {
	Query      string   `firestore:"Query"`
	Answer     string   `firestore:"Answer"`
	Categories []string `firestore:"Categories"`
}

func toCacheDoc(entries []*model.CacheEntry) *cacheDoc {
	doc := &cacheDoc{
		Entries:   make([]cacheEntryDoc, 0, len(entries)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, e := range entries {
		cats := make([]string, len(e.Categories))
		for i, c := range e.Categories {
			cats[i] = c.String()
		}
		doc.Entries = append(doc.Entries, cacheEntryDoc{
			Query:      e.Query,
			Answer:     e.Answer,
			Categories: cats,
		})
	}
	return doc
}

func fromCacheDoc(d *cacheDoc) []*model.CacheEntry {
	entries := make([]*model.CacheEntry, 0, len(d.Entries))
	for i, e := range d.Entries {
		var cats []types.Category
		for _, s := range e.Categories {
			if c, err := types.ParseCategory(s); err == nil {
				cats = append(cats, c)
			}
		}
		entries = append(entries, &model.CacheEntry{
			Query:      e.Query,
			Key:        model.NormalizeQuery(e.Query),
			Answer:     e.Answer,
			Categories: cats,
			Seq:        int64(i + 1),
		})
	}
	return entries
}

func New(ctx context.Context, projectID, databaseID string, opts []option.ClientOption, fsOpts ...Option) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:     client,
		collection: defaultCollection,
		document:   defaultDocument,
	}
	for _, opt := range fsOpts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) docRef() *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(f.document)
}

func (f *Firestore) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	snap, err := f.docRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []*model.CacheEntry{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get cache document",
			goerr.V("collection", f.collection),
			goerr.V("document", f.document),
		)
	}

	var d cacheDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal cache document", goerr.V("document", f.document))
	}
	return fromCacheDoc(&d), nil
}

func (f *Firestore) Save(ctx context.Context, entries []*model.CacheEntry) error {
	if _, err := f.docRef().Set(ctx, toCacheDoc(entries)); err != nil {
		return goerr.Wrap(err, "failed to save cache document",
			goerr.V("collection", f.collection),
			goerr.V("document", f.document),
		)
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
