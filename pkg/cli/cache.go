package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdCache() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or reset the persisted query cache",
		Commands: []*cli.Command{
			cmdCacheShow(),
			cmdCacheClear(),
		},
	}
}

func cmdCacheShow() *cli.Command {
	var cfg cacheConfig

	return &cli.Command{
		Name:  "show",
		Usage: "List cached queries, oldest first",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			_, cache, closer, err := cfg.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			printEntries(c.Root().Writer, cache.Entries())
			return nil
		},
	}
}

func cmdCacheClear() *cli.Command {
	var cfg cacheConfig

	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every cached query",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			_, cache, closer, err := cfg.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			n := cache.Len()
			if err := cache.Clear(ctx); err != nil {
				return goerr.Wrap(err, "failed to clear query cache")
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Removed %d cached queries\n", n)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []*model.CacheEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "Query cache is empty")
		return
	}

	for i, entry := range entries {
		categories := make([]string, len(entry.Categories))
		for j, c := range entry.Categories {
			categories[j] = c.String()
		}
		_, _ = fmt.Fprintf(w, "%d. %s [%s]\n", i+1, entry.Query, strings.Join(categories, ","))
		_, _ = fmt.Fprintf(w, "   %s\n", entry.Answer)
	}
}
