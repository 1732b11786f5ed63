package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
)

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("single answer is returned unchanged", func(t *testing.T) {
		llm := script{aggregate: "merged"}.completer()
		a := usecase.NewAggregator(llm)

		got, err := a.Aggregate(ctx, "q", map[types.Category]string{types.CategoryClaims: "File within 30 days."})
		gt.NoError(t, err).Required()
		gt.V(t, got).Equal("File within 30 days.")
		gt.V(t, llm.total()).Equal(0)
	})

	t.Run("no answers is an error", func(t *testing.T) {
		a := usecase.NewAggregator(script{}.completer())
		_, err := a.Aggregate(ctx, "q", nil)
		gt.Error(t, err)
	})

	t.Run("model answer is used", func(t *testing.T) {
		llm := script{aggregate: "merged answer"}.completer()
		a := usecase.NewAggregator(llm)

		got, err := a.Aggregate(ctx, "q", map[types.Category]string{
			types.CategoryClaims:   "c",
			types.CategoryBenefits: "b",
		})
		gt.NoError(t, err).Required()
		gt.V(t, got).Equal("merged answer")
	})

	t.Run("model failure concatenates in canonical order", func(t *testing.T) {
		a := usecase.NewAggregator(script{aggregateErr: errors.New("down")}.completer())

		got, err := a.Aggregate(ctx, "q", map[types.Category]string{
			types.CategoryClaims:      "claims answer",
			types.CategoryEligibility: "eligibility answer",
			types.CategoryPolicyTypes: "policy answer",
		})
		gt.NoError(t, err).Required()
		gt.V(t, got).Equal("Policy types:\npolicy answer\n\nEligibility:\neligibility answer\n\nClaims:\nclaims answer")
	})

	t.Run("empty model reply concatenates", func(t *testing.T) {
		a := usecase.NewAggregator(script{aggregate: "  "}.completer())

		got, err := a.Aggregate(ctx, "q", map[types.Category]string{
			types.CategoryClaims:   "claims answer",
			types.CategoryBenefits: "benefits answer",
		})
		gt.NoError(t, err).Required()
		gt.V(t, got).Equal("Benefits:\nbenefits answer\n\nClaims:\nclaims answer")
	})
}

func TestGreeter(t *testing.T) {
	ctx := context.Background()

	g := usecase.NewGreeter(script{greeting: "Hi! Ask me about your policy."}.completer(), usecase.Messages{})
	gt.V(t, g.Greet(ctx, "hello")).Equal("Hi! Ask me about your policy.")
	gt.V(t, g.Refuse()).Equal(usecase.DefaultRefusal)

	failing := usecase.NewGreeter(script{greetingErr: errors.New("down")}.completer(), usecase.Messages{Greeting: "Welcome!"})
	gt.V(t, failing.Greet(ctx, "hello")).Equal("Welcome!")
}
