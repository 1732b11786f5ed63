package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/service/querycache"
)

type UseCases struct {
	llm         interfaces.Completer
	knowledge   interfaces.KnowledgeStore
	cache       *querycache.Cache
	messages    Messages
	workers     int
	historySize int
	maxSessions int

	Chat     *ChatUseCase
	Sessions *SessionRegistry
}

type Option func(*UseCases)

// WithMessages overrides the fixed reply texts. Empty fields keep defaults.
func WithMessages(m Messages) Option {
	return func(uc *UseCases) {
		uc.messages = m
	}
}

// WithWorkers sets the number of concurrent category agent calls
func WithWorkers(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithHistorySize sets how many turns a session keeps
func WithHistorySize(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.historySize = n
		}
	}
}

// WithMaxSessions bounds the session registry
func WithMaxSessions(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.maxSessions = n
		}
	}
}

func New(llm interfaces.Completer, knowledge interfaces.KnowledgeStore, cache *querycache.Cache, opts ...Option) (*UseCases, error) {
	if llm == nil {
		return nil, goerr.New("completer is required")
	}
	if knowledge == nil {
		return nil, goerr.New("knowledge store is required")
	}
	if cache == nil {
		return nil, goerr.New("query cache is required")
	}

	uc := &UseCases{
		llm:         llm,
		knowledge:   knowledge,
		cache:       cache,
		messages:    DefaultMessages(),
		workers:     DefaultWorkers,
		historySize: model.DefaultHistorySize,
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.messages = uc.messages.merge()

	classifier, err := NewClassifier(llm, knowledge)
	if err != nil {
		return nil, err
	}

	uc.Chat = &ChatUseCase{
		classifier: classifier,
		agent:      NewCategoryAgent(llm, knowledge, uc.historySize),
		greeter:    NewGreeter(llm, uc.messages),
		aggregator: NewAggregator(llm),
		cache:      cache,
		messages:   uc.messages,
		workers:    uc.workers,
	}
	uc.Sessions = NewSessionRegistry(uc.historySize, uc.maxSessions)

	return uc, nil
}

// NewSession starts a standalone conversation, used by the CLI
func (uc *UseCases) NewSession() *Session {
	return NewSession(uc.historySize)
}
