package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/repository/file"
	"github.com/secmon-lab/lifeguide/pkg/repository/firestore"
	"github.com/secmon-lab/lifeguide/pkg/repository/gcs"
	"github.com/secmon-lab/lifeguide/pkg/repository/memory"
	"github.com/secmon-lab/lifeguide/pkg/repository/redis"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendFirestore = "firestore"
	BackendGCS       = "gcs"
	BackendRedis     = "redis"

	DefaultCacheFile = "query_cache.json"
)

// Repository holds CLI flags for the query cache backend
type Repository struct {
	backend         string
	cacheFile       string
	projectID       string
	databaseID      string
	gcsBucket       string
	gcsObject       string
	redisAddr       string
	redisPassword   string
	redisDB         int
	credentialsFile string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Query cache backend [memory|file|firestore|gcs|redis]",
			Value:       BackendFile,
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_CACHE_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "cache-file",
			Usage:       "Path of the cache document (file backend)",
			Value:       DefaultCacheFile,
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_CACHE_FILE"),
			Destination: &r.cacheFile,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID (firestore backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID (firestore backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (gcs backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_GCS_BUCKET"),
			Destination: &r.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-object",
			Usage:       "Cloud Storage object name (gcs backend)",
			Value:       "query_cache.json",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_GCS_OBJECT"),
			Destination: &r.gcsObject,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address host:port (redis backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password (redis backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number (redis backend)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_REDIS_DB"),
			Destination: &r.redisDB,
		},
		&cli.StringFlag{
			Name:        "google-credentials",
			Usage:       "Path to a Google Cloud credentials JSON file (firestore and gcs backends)",
			Category:    "Cache",
			Sources:     cli.EnvVars("LIFEGUIDE_GOOGLE_CREDENTIALS"),
			Destination: &r.credentialsFile,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// LogAttrs returns log attributes for the repository configuration
func (r *Repository) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("backend", r.backend)}
	switch r.backend {
	case BackendFile:
		attrs = append(attrs, slog.String("path", r.cacheFile))
	case BackendFirestore:
		attrs = append(attrs, slog.String("project_id", r.projectID), slog.String("database_id", r.databaseID))
	case BackendGCS:
		attrs = append(attrs, slog.String("bucket", r.gcsBucket), slog.String("object", r.gcsObject))
	case BackendRedis:
		attrs = append(attrs, slog.String("addr", r.redisAddr), slog.Int("db", r.redisDB))
	}
	return attrs
}

func (r *Repository) clientOptions() []option.ClientOption {
	if r.credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(r.credentialsFile)}
}

// Configure initializes the cache store for the configured backend.
// The caller is responsible for calling Close() on the returned store.
func (r *Repository) Configure(ctx context.Context) (interfaces.CacheStore, error) {
	logger := logging.From(ctx)

	switch r.backend {
	case BackendMemory:
		logger.Info("Using in-memory query cache (not persisted)")
		return memory.New(), nil

	case BackendFile:
		store, err := file.New(r.cacheFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file cache store")
		}
		logger.Info("Using file query cache", "path", r.cacheFile)
		return store, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(OptionKey, "firestore-project-id"))
		}
		store, err := firestore.New(ctx, r.projectID, r.databaseID, r.clientOptions())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore cache store")
		}
		logger.Info("Using Firestore query cache",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return store, nil

	case BackendGCS:
		if r.gcsBucket == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gcs-bucket is required when using gcs backend",
				goerr.V(OptionKey, "gcs-bucket"))
		}
		store, err := gcs.New(ctx, r.gcsBucket, r.gcsObject, r.clientOptions()...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs cache store")
		}
		logger.Info("Using Cloud Storage query cache", "bucket", r.gcsBucket, "object", r.gcsObject)
		return store, nil

	case BackendRedis:
		if r.redisAddr == "" {
			return nil, goerr.Wrap(ErrMissingOption, "redis-addr is required when using redis backend",
				goerr.V(OptionKey, "redis-addr"))
		}
		store, err := redis.New(ctx, r.redisAddr, r.redisPassword, r.redisDB)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis cache store")
		}
		logger.Info("Using Redis query cache", "addr", r.redisAddr, "db", r.redisDB)
		return store, nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid cache backend", goerr.V(BackendKey, r.backend))
	}
}
