package usecase

import (
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

//go:embed prompt/aggregate_system.md
var aggregateSystemPromptTmpl string

//go:embed prompt/aggregate_user.md
var aggregateUserPromptTmpl string

var (
	aggregateSystemPrompt = template.Must(template.New("aggregate_system").Parse(aggregateSystemPromptTmpl))
	aggregateUserPrompt   = template.Must(template.New("aggregate_user").Parse(aggregateUserPromptTmpl))
)

// precedence orders categories from most to least specific when answers
// contradict each other
var precedence = []types.Category{
	types.CategoryClaims,
	types.CategoryEligibility,
	types.CategoryPolicyTypes,
	types.CategoryBenefits,
}

type aggregateAnswer struct {
	Category types.Category
	Title    string
	Text     string
}

type aggregateUserData struct {
	Query   string
	Answers []aggregateAnswer
}

// Aggregator merges per-category answers into one reply
type Aggregator struct {
	llm interfaces.Completer
}

func NewAggregator(llm interfaces.Completer) *Aggregator {
	return &Aggregator{llm: llm}
}

// Aggregate merges answers. A single answer is returned unchanged. When the
// model call fails or returns nothing the answers are concatenated in canonical order instead;
// an error is returned only when there is nothing to merge.
func (a *Aggregator) Aggregate(ctx context.Context, query string, answers map[types.Category]string) (string, error) {
	ordered := orderAnswers(answers)
	switch len(ordered) {
	case 0:
		return "", goerr.New("no answers to aggregate", goerr.V(QueryKey, query))
	case 1:
		return ordered[0].Text, nil
	}

	prompt, err := buildAggregatePrompt(query, ordered)
	if err != nil {
		return "", err
	}

	text, err := a.llm.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = goerr.New("empty aggregation reply")
	}
	if err != nil {
		logging.From(ctx).Warn("aggregation model call failed, concatenating answers",
			"error", err.Error(),
			"answers", len(ordered),
		)
		return concatAnswers(ordered), nil
	}
	return text, nil
}

func buildAggregatePrompt(query string, ordered []aggregateAnswer) (model.Prompt, error) {
	names := make([]string, len(precedence))
	for i, c := range precedence {
		names[i] = c.Title()
	}

	system, err := renderPrompt(aggregateSystemPrompt, struct{ Precedence string }{
		Precedence: strings.Join(names, " > "),
	})
	if err != nil {
		return model.Prompt{}, err
	}
	user, err := renderPrompt(aggregateUserPrompt, aggregateUserData{
		Query:   query,
		Answers: ordered,
	})
	if err != nil {
		return model.Prompt{}, err
	}
	return model.Prompt{System: system, User: user}, nil
}

// orderAnswers returns the non-empty answers in canonical category order
func orderAnswers(answers map[types.Category]string) []aggregateAnswer {
	var ordered []aggregateAnswer
	for _, c := range types.InsuranceCategories() {
		text, ok := answers[c]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		ordered = append(ordered, aggregateAnswer{
			Category: c,
			Title:    c.Title(),
			Text:     strings.TrimSpace(text),
		})
	}
	return ordered
}

func concatAnswers(ordered []aggregateAnswer) string {
	sections := make([]string, len(ordered))
	for i, a := range ordered {
		sections[i] = a.Title + ":\n" + a.Text
	}
	return strings.Join(sections, "\n\n")
}
