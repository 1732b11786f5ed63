package usecase

import (
	"context"
	_ "embed"

	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

//go:embed prompt/greeting_system.md
var greetingSystemPrompt string

// Greeter answers greetings and small talk, and holds the refusal text for
// unrelated queries
type Greeter struct {
	llm      interfaces.Completer
	messages Messages
}

func NewGreeter(llm interfaces.Completer, messages Messages) *Greeter {
	return &Greeter{
		llm:      llm,
		messages: messages.merge(),
	}
}

// Greet asks the model for a short friendly reply. It never fails: a model
// error yields the canned greeting.
func (g *Greeter) Greet(ctx context.Context, query string) string {
	text, err := g.llm.Complete(ctx, model.Prompt{
		System: greetingSystemPrompt,
		User:   query,
	})
	if err != nil {
		logging.From(ctx).Warn("greeting model call failed, using canned greeting", "error", err.Error())
		return g.messages.Greeting
	}
	return text
}

// Refuse returns the fixed answer for queries outside life insurance
func (g *Greeter) Refuse() string {
	return g.messages.Refusal
}
