package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type askResult struct {
	Query      string   `json:"query"`
	Response   string   `json:"response"`
	Categories []string `json:"categories"`
	Route      string   `json:"route"`
	Cached     bool     `json:"cached"`
}

func cmdAsk() *cli.Command {
	var cfg runtimeConfig
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the reply as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a single question and exit",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("question is required")
			}

			uc, closer, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			reply := uc.Chat.HandleQuery(ctx, uc.NewSession(), query)

			w := c.Root().Writer
			if !asJSON {
				_, err := fmt.Fprintln(w, reply.Text)
				return err
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(askResult{
				Query:      reply.Query,
				Response:   reply.Text,
				Categories: reply.CategoryStrings(),
				Route:      reply.Route.String(),
				Cached:     reply.Cached,
			})
		},
	}
}
