package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
)

func TestParseCategories(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []types.Category
	}{
		{
			name: "JSON array",
			text: `["claims", "benefits"]`,
			want: []types.Category{types.CategoryClaims, types.CategoryBenefits},
		},
		{
			name: "single quoted list",
			text: `['policy_types', 'eligibility']`,
			want: []types.Category{types.CategoryPolicyTypes, types.CategoryEligibility},
		},
		{
			name: "code fence",
			text: "```json\n[\"claims\"]\n```",
			want: []types.Category{types.CategoryClaims},
		},
		{
			name: "array inside prose",
			text: `The categories are ["Eligibility"].`,
			want: []types.Category{types.CategoryEligibility},
		},
		{
			name: "unknown tags dropped",
			text: `["claims", "pets"]`,
			want: []types.Category{types.CategoryClaims},
		},
		{
			name: "bare tag",
			text: "greeting",
			want: []types.Category{types.CategoryGreeting},
		},
		{
			name: "bare tag with spaces",
			text: "Policy Types",
			want: []types.Category{types.CategoryPolicyTypes},
		},
		{
			name: "comma separated words",
			text: "benefits, claims",
			want: []types.Category{types.CategoryBenefits, types.CategoryClaims},
		},
		{
			name: "nothing recognized",
			text: "I cannot tell.",
			want: nil,
		},
		{
			name: "empty",
			text: "  ",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, usecase.ParseCategories(tc.text)).Equal(tc.want)
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		answer string
		want   []types.Category
	}{
		{
			name:   "canonical order regardless of model order",
			answer: `["claims", "policy_types", "benefits"]`,
			want:   []types.Category{types.CategoryPolicyTypes, types.CategoryBenefits, types.CategoryClaims},
		},
		{
			name:   "insurance categories win over sentinels",
			answer: `["greeting", "benefits", "unrelated"]`,
			want:   []types.Category{types.CategoryBenefits},
		},
		{
			name:   "greeting beats unrelated",
			answer: `["unrelated", "greeting"]`,
			want:   []types.Category{types.CategoryGreeting},
		},
		{
			name:   "nothing recognized is unrelated",
			answer: `["weather"]`,
			want:   []types.Category{types.CategoryUnrelated},
		},
		{
			name:   "duplicates removed",
			answer: `["claims", "Claims", "claims"]`,
			want:   []types.Category{types.CategoryClaims},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			llm := script{classify: tc.answer}.completer()
			c, err := usecase.NewClassifier(llm, newKnowledge())
			gt.NoError(t, err).Required()

			got, err := c.Classify(ctx, "some question", nil)
			gt.NoError(t, err).Required()
			gt.V(t, got.Tags()).Equal(tc.want)
		})
	}
}

func TestClassifier_Prompt(t *testing.T) {
	llm := script{classify: `["claims"]`}.completer()
	c, err := usecase.NewClassifier(llm, newKnowledge())
	gt.NoError(t, err).Required()

	history := []model.Turn{
		{Role: types.RoleUser, Text: "What is term life?", Seq: 1},
		{Role: types.RoleAssistant, Text: "A fixed-period policy.", Seq: 2},
	}
	_, err = c.Classify(context.Background(), "How do I claim on it?", history)
	gt.NoError(t, err).Required()

	prompts := llm.prompts(kindClassify)
	gt.A(t, prompts).Length(1).Required()

	system := prompts[0].System
	for _, cat := range types.AllCategories() {
		gt.String(t, system).Contains("`" + cat.String() + "`")
	}
	gt.String(t, system).Contains("How to file and track a claim")
	gt.String(t, system).Contains("JSON array")

	gt.String(t, prompts[0].User).Contains("User: What is term life?")
	gt.String(t, prompts[0].User).Contains("Question: How do I claim on it?")
}

func TestClassifier_BlankQuery(t *testing.T) {
	llm := script{classify: `["claims"]`}.completer()
	c, err := usecase.NewClassifier(llm, newKnowledge())
	gt.NoError(t, err).Required()

	got, err := c.Classify(context.Background(), " \n\t", nil)
	gt.NoError(t, err).Required()
	gt.B(t, got.IsUnrelated()).True()
	gt.V(t, llm.total()).Equal(0)
}

func TestClassifier_ModelFailure(t *testing.T) {
	llm := script{classifyErr: errors.New("exhausted")}.completer()
	c, err := usecase.NewClassifier(llm, newKnowledge())
	gt.NoError(t, err).Required()

	_, err = c.Classify(context.Background(), "What is whole life?", nil)
	gt.Error(t, err).Is(usecase.ErrClassificationFailed)
}
