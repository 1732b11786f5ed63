package usecase

import (
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

//go:embed prompt/agent_system.md
var agentSystemPromptTmpl string

//go:embed prompt/agent_user.md
var agentUserPromptTmpl string

var (
	agentSystemPrompt = template.Must(template.New("agent_system").Parse(agentSystemPromptTmpl))
	agentUserPrompt   = template.Must(template.New("agent_user").Parse(agentUserPromptTmpl))
)

// agentSystemData holds the data for the category agent system prompt
type agentSystemData struct {
	Title string
	Facts []string
}

type agentUserData struct {
	Query   string
	History []model.Turn
}

// CategoryAgent answers a query from the facts of a single category. It holds
// no state between calls.
type CategoryAgent struct {
	llm         interfaces.Completer
	knowledge   interfaces.KnowledgeStore
	historySize int
}

// NewCategoryAgent creates a CategoryAgent that sends at most historySize
// turns of history to the model
func NewCategoryAgent(llm interfaces.Completer, knowledge interfaces.KnowledgeStore, historySize int) *CategoryAgent {
	if historySize <= 0 {
		historySize = model.DefaultHistorySize
	}
	return &CategoryAgent{
		llm:         llm,
		knowledge:   knowledge,
		historySize: historySize,
	}
}

// Answer returns the model's answer for query restricted to category.
// Sentinel categories are rejected with ErrInvalidCategory and model failures
// are returned as ErrAgentFailed.
func (a *CategoryAgent) Answer(ctx context.Context, query string, history []model.Turn, category types.Category) (string, error) {
	if !category.IsInsurance() {
		return "", goerr.Wrap(ErrInvalidCategory, "category agent requires an insurance category",
			goerr.V(CategoryKey, category.String()),
		)
	}

	prompt, err := a.buildPrompt(query, history, category)
	if err != nil {
		return "", err
	}

	text, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", goerr.Wrap(ErrAgentFailed, "category agent model call failed",
			goerr.V(CategoryKey, category.String()),
			goerr.V("cause", err.Error()),
		)
	}
	return text, nil
}

func (a *CategoryAgent) buildPrompt(query string, history []model.Turn, category types.Category) (model.Prompt, error) {
	data := agentSystemData{Title: category.Title()}
	if set := a.knowledge.Facts(category); set != nil {
		for _, f := range set.Facts {
			if line := f.String(); line != "" {
				data.Facts = append(data.Facts, line)
			}
		}
	}

	system, err := renderPrompt(agentSystemPrompt, data)
	if err != nil {
		return model.Prompt{}, err
	}
	user, err := renderPrompt(agentUserPrompt, agentUserData{
		Query:   query,
		History: lastTurns(history, a.historySize),
	})
	if err != nil {
		return model.Prompt{}, err
	}
	return model.Prompt{System: system, User: user}, nil
}
