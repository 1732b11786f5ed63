package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/service/querycache"
	"github.com/secmon-lab/lifeguide/pkg/utils/async"
	"github.com/secmon-lab/lifeguide/pkg/utils/errutil"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent category agent calls for one query
const DefaultWorkers = 4

// ChatUseCase routes one query through cache, classification, category
// agents and aggregation. It owns the query cache and serializes every
// cache and history mutation.
type ChatUseCase struct {
	classifier *Classifier
	agent      *CategoryAgent
	greeter    *Greeter
	aggregator *Aggregator
	cache      *querycache.Cache
	messages   Messages
	workers    int

	mu sync.Mutex
}

// outcome is the result of routing a query before it is committed
type outcome struct {
	reply     *model.Reply
	cacheable bool
	record    bool
}

type agentResult struct {
	category types.Category
	text     string
	err      error
}

// HandleQuery answers query within session. It never fails: every error path
// ends in a fixed message. Model calls are detached from ctx; when ctx ends
// first the apology is returned and the late result is dropped without
// touching the cache or the history.
func (uc *ChatUseCase) HandleQuery(ctx context.Context, session *Session, query string) *model.Reply {
	logger := logging.From(ctx).With(SessionKey, string(session.ID))
	ctx = logging.With(ctx, logger)

	if entry, ok := uc.cache.Lookup(query); ok {
		logger.Debug("query cache hit", "query", query)
		uc.mu.Lock()
		session.History().AppendExchange(query, entry.Answer)
		uc.mu.Unlock()

		return &model.Reply{
			Query:      query,
			Text:       entry.Answer,
			Categories: entry.Categories,
			Route:      types.RouteCache,
			Cached:     true,
		}
	}

	turns := session.History().Turns()
	done := async.Go(ctx, func(ctx context.Context) outcome {
		return uc.route(ctx, query, turns)
	}, func(ctx context.Context, r any) outcome {
		_ = errutil.Handle(ctx, goerr.New("panic while handling query",
			goerr.V(QueryKey, query),
			goerr.V("panic", fmt.Sprint(r)),
		), "recovered from panic")
		return outcome{reply: uc.failed(query)}
	})

	select {
	case out := <-done:
		uc.commit(context.WithoutCancel(ctx), session, query, out)
		return out.reply

	case <-ctx.Done():
		logger.Warn("caller went away, discarding result of this query", "query", query)
		return uc.failed(query)
	}
}

// route runs classification and the agents
func (uc *ChatUseCase) route(ctx context.Context, query string, turns []model.Turn) outcome {
	record := strings.TrimSpace(query) != ""

	classification, err := uc.classifier.Classify(ctx, query, turns)
	if err != nil {
		_ = errutil.Handle(ctx, err, "classification failed, treating query as unrelated")
		classification = model.Unrelated()
	}

	switch {
	case classification.IsGreeting():
		return outcome{
			reply: &model.Reply{
				Query:      query,
				Text:       uc.greeter.Greet(ctx, query),
				Categories: classification.Tags(),
				Route:      types.RouteGreeting,
			},
			record: record,
		}

	case classification.IsUnrelated():
		return outcome{
			reply: &model.Reply{
				Query:      query,
				Text:       uc.greeter.Refuse(),
				Categories: classification.Tags(),
				Route:      types.RouteRefused,
			},
			record: record,
		}
	}

	categories := classification.Categories()
	if len(categories) == 1 {
		return uc.single(ctx, query, turns, categories[0])
	}
	return uc.multi(ctx, query, turns, categories)
}

func (uc *ChatUseCase) single(ctx context.Context, query string, turns []model.Turn, category types.Category) outcome {
	text, err := uc.agent.Answer(ctx, query, turns, category)
	if err != nil {
		_ = errutil.Handle(ctx, err, "category agent failed")
		return outcome{reply: uc.failed(query)}
	}

	return outcome{
		reply: &model.Reply{
			Query:      query,
			Text:       text,
			Categories: []types.Category{category},
			Route:      types.RouteSingle,
		},
		cacheable: true,
		record:    true,
	}
}

// multi fans the query out to one agent per category on a bounded pool and
// joins the results by category index, never by arrival order.
func (uc *ChatUseCase) multi(ctx context.Context, query string, turns []model.Turn, categories []types.Category) outcome {
	results := make([]agentResult, len(categories))

	var eg errgroup.Group
	eg.SetLimit(uc.workers)
	for i, category := range categories {
		eg.Go(func() error {
			results[i] = uc.answerSafely(ctx, query, turns, category)
			return nil
		})
	}
	_ = eg.Wait()

	// failed categories keep their canonical slot with a placeholder
	answers := make(map[types.Category]string, len(results))
	failures := 0
	for _, r := range results {
		if r.err != nil {
			_ = errutil.Handle(ctx, r.err, "category agent failed in fan-out")
			answers[r.category] = uc.messages.unavailable(r.category.Title())
			failures++
			continue
		}
		answers[r.category] = r.text
	}

	if failures == len(results) {
		return outcome{reply: uc.failed(query)}
	}

	text, err := uc.aggregator.Aggregate(ctx, query, answers)
	if err != nil {
		_ = errutil.Handle(ctx, err, "aggregation failed")
		return outcome{reply: uc.failed(query)}
	}

	return outcome{
		reply: &model.Reply{
			Query:      query,
			Text:       text,
			Categories: categories,
			Route:      types.RouteMulti,
		},
		cacheable: failures == 0,
		record:    true,
	}
}

func (uc *ChatUseCase) answerSafely(ctx context.Context, query string, turns []model.Turn, category types.Category) (res agentResult) {
	res.category = category
	defer func() {
		if r := recover(); r != nil {
			res.err = goerr.Wrap(ErrAgentFailed, "category agent panicked",
				goerr.V(CategoryKey, category.String()),
				goerr.V("panic", fmt.Sprint(r)),
			)
		}
	}()

	res.text, res.err = uc.agent.Answer(ctx, query, turns, category)
	return res
}

// commit applies the history and cache updates of one routed query
func (uc *ChatUseCase) commit(ctx context.Context, session *Session, query string, out outcome) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if out.record {
		session.History().AppendExchange(query, out.reply.Text)
	}
	if out.cacheable && out.reply.Route.Cacheable() {
		if err := uc.cache.Insert(ctx, query, out.reply.Text, out.reply.Categories); err != nil {
			_ = errutil.Handle(ctx, err, "failed to update query cache")
		}
	}
}

func (uc *ChatUseCase) failed(query string) *model.Reply {
	return &model.Reply{
		Query: query,
		Text:  uc.messages.Apology,
		Route: types.RouteFailed,
	}
}

// CacheEntries returns the cached queries, oldest first
func (uc *ChatUseCase) CacheEntries() []*model.CacheEntry {
	return uc.cache.Entries()
}

// ClearCache drops every cached answer
func (uc *ChatUseCase) ClearCache(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.cache.Clear(ctx)
}
