package redis

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
)

const defaultKey = "lifeguide:query_cache"

// Redis keeps the cache document under a single key
type Redis struct {
	client *goredis.Client
	key    string
}

var _ interfaces.CacheStore = &Redis{}

type Option func(*Redis)

// WithKey sets the key holding the cache document
func WithKey(key string) Option {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// New connects to addr and verifies the connection with PING
func New(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	if addr == "" {
		return nil, goerr.New("redis address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr), goerr.V("db", db))
	}

	return newWithClient(client, opts...), nil
}

func newWithClient(client *goredis.Client, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		key:    defaultKey,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []*model.CacheEntry{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get cache document", goerr.V("key", r.key))
	}

	entries, err := model.UnmarshalCacheDocument(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse cache document", goerr.V("key", r.key))
	}
	return entries, nil
}

func (r *Redis) Save(ctx context.Context, entries []*model.CacheEntry) error {
	data, err := model.MarshalCacheDocument(entries)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to save cache document", goerr.V("key", r.key))
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
