package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/service/knowledge"
	"github.com/urfave/cli/v3"
)

// Knowledge holds CLI flags for the knowledge directory
type Knowledge struct {
	dir    string
	strict bool
}

// Flags returns CLI flags for knowledge configuration
func (k *Knowledge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "knowledge-dir",
			Aliases:     []string{"k"},
			Usage:       "Directory holding category_classification.json and <category>/<category>_data.json",
			Value:       "data",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("LIFEGUIDE_KNOWLEDGE_DIR"),
			Destination: &k.dir,
		},
		&cli.BoolFlag{
			Name:        "knowledge-strict",
			Usage:       "Fail at start-up when a knowledge document is missing or invalid",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("LIFEGUIDE_KNOWLEDGE_STRICT"),
			Destination: &k.strict,
		},
	}
}

// LogAttrs returns log attributes for the knowledge configuration
func (k *Knowledge) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("dir", k.dir),
		slog.Bool("strict", k.strict),
	}
}

// Configure loads the knowledge store from the directory
func (k *Knowledge) Configure(ctx context.Context) (*knowledge.Store, error) {
	if k.dir == "" {
		return nil, goerr.Wrap(ErrMissingOption, "knowledge directory is required", goerr.V(OptionKey, "knowledge-dir"))
	}

	store, err := knowledge.LoadDir(ctx, k.dir, knowledge.WithStrict(k.strict))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load knowledge", goerr.V("dir", k.dir))
	}
	return store, nil
}
