package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/cli/config"
	"github.com/secmon-lab/lifeguide/pkg/service/querycache"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cacheConfig holds the flags needed to open the query cache
type cacheConfig struct {
	app  config.App
	repo config.Repository
}

func (x *cacheConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.app.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	return flags
}

// open loads the application config and the query cache. The returned
// function closes the cache store.
func (x *cacheConfig) open(ctx context.Context) (*config.AppConfig, *querycache.Cache, func(), error) {
	appCfg, err := x.app.Configure()
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to load configuration")
	}

	store, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to initialize cache store")
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logging.Default().Error("failed to close cache store", "error", err.Error())
		}
	}

	cache := querycache.New(ctx, store, querycache.WithCapacity(appCfg.CacheSize))
	return appCfg, cache, closer, nil
}

// runtimeConfig holds every flag needed to answer queries
type runtimeConfig struct {
	cacheConfig
	knowledge config.Knowledge
	llm       config.LLM
}

func (x *runtimeConfig) Flags() []cli.Flag {
	flags := x.cacheConfig.Flags()
	flags = append(flags, x.knowledge.Flags()...)
	flags = append(flags, x.llm.Flags()...)
	return flags
}

// build wires configuration, knowledge, completion tiers and the query cache
// into the use cases
func (x *runtimeConfig) build(ctx context.Context) (*usecase.UseCases, func(), error) {
	logging.Default().Info("Configuration",
		slog.Any("app", slog.GroupValue(x.app.LogAttrs()...)),
		slog.Any("cache", slog.GroupValue(x.repo.LogAttrs()...)),
		slog.Any("knowledge", slog.GroupValue(x.knowledge.LogAttrs()...)),
		slog.Any("llm", slog.GroupValue(x.llm.LogAttrs()...)),
	)

	kb, err := x.knowledge.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}

	llm, err := x.llm.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM")
	}

	appCfg, cache, closer, err := x.open(ctx)
	if err != nil {
		return nil, nil, err
	}

	uc, err := usecase.New(llm, kb, cache, appCfg.UseCaseOptions()...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to initialize use cases")
	}

	return uc, closer, nil
}
