package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/service/completion"
	"github.com/secmon-lab/lifeguide/pkg/service/querycache"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient answers the n-th call (1-based) through answer
type mockLLMClient struct {
	calls  atomic.Int32
	answer func(n int32) (string, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	n := c.calls.Add(1)
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			text, err := c.answer(n)
			if err != nil {
				return nil, err
			}
			return &gollem.Response{Texts: []string{text}}, nil
		},
	}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func newTieredUseCases(t *testing.T, base, fallback *mockLLMClient) (*usecase.UseCases, *querycache.Cache) {
	t.Helper()

	client, err := completion.New([]completion.Tier{
		{Name: "base", Model: "base-model", Client: base},
		{Name: "fallback", Model: "fallback-model", Client: fallback},
	})
	gt.NoError(t, err).Required()

	cache := querycache.New(context.Background(), nil)
	uc, err := usecase.New(client, newKnowledge(), cache)
	gt.NoError(t, err).Required()
	return uc, cache
}

func TestHandleQuery_FallbackModelAnswers(t *testing.T) {
	base := &mockLLMClient{answer: func(n int32) (string, error) {
		return "", errors.New("base unavailable")
	}}
	// classification first, then the claims agent
	fallback := &mockLLMClient{answer: func(n int32) (string, error) {
		if n == 1 {
			return `["claims"]`, nil
		}
		return "Submit the claim form within 30 days.", nil
	}}

	uc, cache := newTieredUseCases(t, base, fallback)
	reply := uc.Chat.HandleQuery(context.Background(), uc.NewSession(), "How do I file a claim?")

	gt.V(t, reply.Route).Equal(types.RouteSingle)
	gt.V(t, reply.Text).Equal("Submit the claim form within 30 days.")
	gt.V(t, base.calls.Load()).Equal(int32(2))
	gt.V(t, fallback.calls.Load()).Equal(int32(2))
	gt.V(t, cache.Len()).Equal(1)
}

func TestHandleQuery_AllModelsFail(t *testing.T) {
	// base classifies, then both tiers fail for the agent
	base := &mockLLMClient{answer: func(n int32) (string, error) {
		if n == 1 {
			return `["eligibility"]`, nil
		}
		return "", errors.New("base unavailable")
	}}
	fallback := &mockLLMClient{answer: func(n int32) (string, error) {
		return "", errors.New("fallback unavailable")
	}}

	uc, cache := newTieredUseCases(t, base, fallback)
	reply := uc.Chat.HandleQuery(context.Background(), uc.NewSession(), "Am I eligible at 70?")

	gt.V(t, reply.Route).Equal(types.RouteFailed)
	gt.V(t, reply.Text).Equal(usecase.DefaultApology)
	gt.V(t, base.calls.Load()).Equal(int32(2))
	gt.V(t, fallback.calls.Load()).Equal(int32(1))
	gt.V(t, cache.Len()).Equal(0)
}
