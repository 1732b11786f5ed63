package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/peterh/liner"
	"github.com/secmon-lab/lifeguide/pkg/cli"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
)

type scriptedReader struct {
	lines []string
	end   error
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

type echoChat struct {
	queries []string
}

func (c *echoChat) HandleQuery(ctx context.Context, session *usecase.Session, query string) *model.Reply {
	c.queries = append(c.queries, query)
	return &model.Reply{
		Query:      query,
		Text:       "answer to " + query,
		Categories: []types.Category{types.CategoryClaims},
		Route:      types.RouteSingle,
	}
}

func TestChatLoop(t *testing.T) {
	t.Run("exit ends the loop", func(t *testing.T) {
		chat := &echoChat{}
		var out bytes.Buffer
		in := &scriptedReader{lines: []string{"How do I file a claim?", "  ", "exit", "never read"}}

		err := cli.ChatLoop(t.Context(), in, &out, chat, usecase.NewSession(5), false)
		gt.NoError(t, err)
		gt.Value(t, chat.queries).Equal([]string{"How do I file a claim?"})
		gt.String(t, out.String()).Contains("answer to How do I file a claim?")
		gt.String(t, out.String()).Contains("Goodbye!")
		gt.String(t, out.String()).NotContains("route=")
	})

	t.Run("quit is case insensitive", func(t *testing.T) {
		chat := &echoChat{}
		in := &scriptedReader{lines: []string{"QUIT"}}

		gt.NoError(t, cli.ChatLoop(t.Context(), in, io.Discard, chat, usecase.NewSession(5), false))
		gt.A(t, chat.queries).Length(0)
	})

	t.Run("EOF ends the loop", func(t *testing.T) {
		chat := &echoChat{}
		in := &scriptedReader{lines: []string{"hello"}, end: io.EOF}

		gt.NoError(t, cli.ChatLoop(t.Context(), in, io.Discard, chat, usecase.NewSession(5), false))
		gt.A(t, chat.queries).Length(1)
	})

	t.Run("Ctrl+C ends the loop", func(t *testing.T) {
		in := &scriptedReader{end: liner.ErrPromptAborted}
		gt.NoError(t, cli.ChatLoop(t.Context(), in, io.Discard, &echoChat{}, usecase.NewSession(5), false))
	})

	t.Run("read failure is returned", func(t *testing.T) {
		in := &scriptedReader{end: io.ErrClosedPipe}
		err := cli.ChatLoop(t.Context(), in, io.Discard, &echoChat{}, usecase.NewSession(5), false)
		gt.Error(t, err).Is(io.ErrClosedPipe)
	})

	t.Run("verbose prints route", func(t *testing.T) {
		var out bytes.Buffer
		in := &scriptedReader{lines: []string{"claims?", "exit"}}

		gt.NoError(t, cli.ChatLoop(t.Context(), in, &out, &echoChat{}, usecase.NewSession(5), true))
		gt.String(t, out.String()).Contains("route=single")
		gt.String(t, out.String()).Contains("categories=claims")
	})
}

func TestReplyMeta(t *testing.T) {
	meta := cli.ReplyMeta(&model.Reply{
		Route:      types.RouteCache,
		Categories: []types.Category{types.CategoryBenefits, types.CategoryClaims},
		Cached:     true,
	})
	gt.Value(t, meta).Equal("[route=cache categories=benefits,claims cached]")
}

func TestPrintEntries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		cli.PrintEntries(&out, nil)
		gt.Value(t, strings.TrimSpace(out.String())).Equal("Query cache is empty")
	})

	t.Run("entries in order", func(t *testing.T) {
		var out bytes.Buffer
		cli.PrintEntries(&out, []*model.CacheEntry{
			{Query: "first", Answer: "a1", Categories: []types.Category{types.CategoryClaims}},
			{Query: "second", Answer: "a2", Categories: []types.Category{types.CategoryBenefits, types.CategoryEligibility}},
		})

		text := out.String()
		gt.String(t, text).Contains("1. first [claims]")
		gt.String(t, text).Contains("2. second [benefits,eligibility]")
		gt.B(t, strings.Index(text, "first") < strings.Index(text, "second")).True()
	})
}
