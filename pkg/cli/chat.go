package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/peterh/liner"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const chatPrompt = "You: "

var (
	botLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	metaLabel = color.New(color.FgHiBlack).SprintFunc()
)

// lineReader reads one line of user input
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// queryHandler answers one query within a session
type queryHandler interface {
	HandleQuery(ctx context.Context, session *usecase.Session, query string) *model.Reply
}

func cmdChat() *cli.Command {
	var cfg runtimeConfig
	var verbose bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Show route and categories of every reply",
			Destination: &verbose,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Start an interactive chat session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			line := liner.NewLiner()
			defer func() { _ = line.Close() }()
			line.SetCtrlCAborts(true)

			return chatLoop(ctx, &historyReader{line: line}, c.Root().Writer, uc.Chat, uc.NewSession(), verbose)
		},
	}
}

// historyReader records non-empty input in the liner history
type historyReader struct {
	line *liner.State
}

func (r *historyReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// chatLoop reads queries until exit, quit, Ctrl+C or EOF
func chatLoop(ctx context.Context, in lineReader, out io.Writer, chat queryHandler, session *usecase.Session, verbose bool) error {
	_, _ = fmt.Fprintln(out, "Ask about life insurance policies, benefits, eligibility or claims. Type 'exit' to quit.")

	for {
		input, err := in.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			return goerr.Wrap(err, "failed to read input")
		}

		query := strings.TrimSpace(input)
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "exit", "quit":
			_, _ = fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reply := chat.HandleQuery(ctx, session, query)
		_, _ = fmt.Fprintf(out, "%s %s\n", botLabel("Bot:"), reply.Text)
		if verbose {
			_, _ = fmt.Fprintln(out, metaLabel(replyMeta(reply)))
		}
	}
}

func replyMeta(reply *model.Reply) string {
	meta := fmt.Sprintf("[route=%s", reply.Route)
	if len(reply.Categories) > 0 {
		meta += " categories=" + strings.Join(reply.CategoryStrings(), ",")
	}
	if reply.Cached {
		meta += " cached"
	}
	return meta + "]"
}
