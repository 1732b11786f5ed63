package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

const (
	kindClassify  = "classify"
	kindAgent     = "agent"
	kindGreeting  = "greeting"
	kindAggregate = "aggregate"
)

// mockCompleter records every prompt and answers through fn
type mockCompleter struct {
	mu    sync.Mutex
	calls []model.Prompt
	fn    func(ctx context.Context, p model.Prompt) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, p model.Prompt) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, p)
	m.mu.Unlock()
	return m.fn(ctx, p)
}

func (m *mockCompleter) prompts(kind string) []model.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Prompt
	for _, p := range m.calls {
		if promptKind(p) == kind {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockCompleter) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func promptKind(p model.Prompt) string {
	switch {
	case strings.HasPrefix(p.System, "You classify"):
		return kindClassify
	case strings.Contains(p.System, "Answer only using"):
		return kindAgent
	case strings.Contains(p.System, "friendly life insurance assistant"):
		return kindGreeting
	case strings.HasPrefix(p.System, "Refine multiple answers"):
		return kindAggregate
	default:
		return ""
	}
}

func agentCategory(p model.Prompt) types.Category {
	for _, c := range types.InsuranceCategories() {
		if strings.Contains(p.System, "Answer only using "+c.Title()+" content") {
			return c
		}
	}
	return ""
}

// script describes the model's behaviour for one test
type script struct {
	classify     string
	classifyErr  error
	agents       map[types.Category]string
	agentErrs    map[types.Category]error
	delays       map[types.Category]time.Duration
	agentFn      func(ctx context.Context, c types.Category) (string, error)
	greeting     string
	greetingErr  error
	aggregate    string
	aggregateErr error
}

func (s script) completer() *mockCompleter {
	return &mockCompleter{
		fn: func(ctx context.Context, p model.Prompt) (string, error) {
			switch promptKind(p) {
			case kindClassify:
				return s.classify, s.classifyErr

			case kindAgent:
				c := agentCategory(p)
				if d := s.delays[c]; d > 0 {
					time.Sleep(d)
				}
				if s.agentFn != nil {
					return s.agentFn(ctx, c)
				}
				if err := s.agentErrs[c]; err != nil {
					return "", err
				}
				return s.agents[c], nil

			case kindGreeting:
				return s.greeting, s.greetingErr

			case kindAggregate:
				return s.aggregate, s.aggregateErr
			}
			return "", nil
		},
	}
}

// failingStore loads nothing and rejects every save
type failingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *failingStore) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	return nil, nil
}

func (s *failingStore) Save(ctx context.Context, entries []*model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return errors.New("disk full")
}

func (s *failingStore) Close() error {
	return nil
}

func (s *failingStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
