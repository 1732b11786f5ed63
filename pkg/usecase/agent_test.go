package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
)

func TestCategoryAgent_RejectsSentinels(t *testing.T) {
	llm := script{}.completer()
	agent := usecase.NewCategoryAgent(llm, newKnowledge(), 0)

	for _, c := range []types.Category{types.CategoryGreeting, types.CategoryUnrelated, types.Category("pets")} {
		t.Run(c.String(), func(t *testing.T) {
			_, err := agent.Answer(context.Background(), "hello", nil, c)
			gt.Error(t, err).Is(usecase.ErrInvalidCategory)
		})
	}
	gt.V(t, llm.total()).Equal(0)
}

func TestCategoryAgent_ModelFailure(t *testing.T) {
	llm := script{agentErrs: map[types.Category]error{types.CategoryBenefits: errors.New("down")}}.completer()
	agent := usecase.NewCategoryAgent(llm, newKnowledge(), 0)

	_, err := agent.Answer(context.Background(), "What is paid out?", nil, types.CategoryBenefits)
	gt.Error(t, err).Is(usecase.ErrAgentFailed)
}

func TestCategoryAgent_PromptKeepsLastTurns(t *testing.T) {
	agent := usecase.NewCategoryAgent(script{}.completer(), newKnowledge(), model.DefaultHistorySize)

	var turns []model.Turn
	for i := range 8 {
		turns = append(turns, model.Turn{Role: types.RoleUser, Text: fmt.Sprintf("turn-%d", i), Seq: int64(i + 1)})
	}

	prompt, err := usecase.BuildAgentPrompt(agent, "What is term life?", turns, types.CategoryPolicyTypes)
	gt.NoError(t, err).Required()

	gt.String(t, prompt.System).Contains("Answer only using Policy types content.")
	gt.String(t, prompt.System).Contains("Term life: Covers a fixed period such as 10 or 20 years.")
	gt.B(t, strings.Contains(prompt.User, "turn-2")).False()
	gt.String(t, prompt.User).Contains("turn-3")
	gt.String(t, prompt.User).Contains("turn-7")
	gt.String(t, prompt.User).Contains("User question: What is term life?")
}

func TestCategoryAgent_NoHistory(t *testing.T) {
	agent := usecase.NewCategoryAgent(script{}.completer(), newKnowledge(), 0)

	prompt, err := usecase.BuildAgentPrompt(agent, "q", nil, types.CategoryClaims)
	gt.NoError(t, err).Required()
	gt.B(t, strings.Contains(prompt.User, "Previous conversation")).False()
}

func TestLastTurns(t *testing.T) {
	turns := []model.Turn{{Seq: 1}, {Seq: 2}, {Seq: 3}}
	gt.A(t, usecase.LastTurns(turns, 2)).Length(2)
	gt.V(t, usecase.LastTurns(turns, 2)[0].Seq).Equal(int64(2))
	gt.A(t, usecase.LastTurns(turns, 5)).Length(3)
	gt.A(t, usecase.LastTurns(nil, 5)).Length(0)
}
