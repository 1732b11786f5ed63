package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

// DefaultTimeout bounds a single attempt against one tier
const DefaultTimeout = 30 * time.Second

// Tier is one provider in the fallback policy. Model is informational; the
// client is already bound to it.
type Tier struct {
	Name   string
	Model  string
	Client gollem.LLMClient
}

// Client tries each tier once, in order, and returns the first non-empty
// answer.
type Client struct {
	tiers   []Tier
	timeout time.Duration
}

var _ interfaces.Completer = &Client{}

// Option is a functional option for Client
type Option func(*Client)

// WithTimeout sets the per-attempt timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Client. At least one tier is required; the first is the base
// model and each following tier is a fallback for the one before it.
func New(tiers []Tier, opts ...Option) (*Client, error) {
	if len(tiers) == 0 {
		return nil, goerr.New("at least one model tier is required")
	}
	for i, t := range tiers {
		if t.Client == nil {
			return nil, goerr.New("LLM client is required", goerr.V(TierKey, t.Name), goerr.V("index", i))
		}
	}

	c := &Client{
		tiers:   append([]Tier(nil), tiers...),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete runs the prompt against the base tier and, on ErrModel, against
// each fallback tier in turn. There is exactly one attempt per tier.
func (c *Client) Complete(ctx context.Context, prompt model.Prompt) (string, error) {
	logger := logging.From(ctx)

	var lastErr error
	for i, tier := range c.tiers {
		text, err := c.attempt(ctx, tier, prompt)
		if err == nil {
			if i > 0 {
				logger.Info("answered by fallback model", "tier", tier.Name, "model", tier.Model)
			}
			return text, nil
		}

		logger.Warn("model attempt failed",
			"tier", tier.Name,
			"model", tier.Model,
			"error", err.Error(),
		)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", goerr.Wrap(ErrAllModelsExhausted, "no model produced an answer",
		goerr.V("tiers", len(c.tiers)),
		goerr.V("last_error", errorString(lastErr)),
	)
}

// Tiers returns the tier names in policy order
func (c *Client) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name
	}
	return names
}

type result struct {
	text string
	err  error
}

func (c *Client) attempt(ctx context.Context, tier Tier, prompt model.Prompt) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := generate(attemptCtx, tier.Client, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", goerr.Wrap(ErrModel, "completion failed",
				goerr.V(TierKey, tier.Name),
				goerr.V(ModelKey, tier.Model),
				goerr.V("cause", r.err.Error()),
			)
		}
		return r.text, nil

	case <-attemptCtx.Done():
		reason := "cancelled"
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		return "", goerr.Wrap(ErrModel, "completion did not finish",
			goerr.V(TierKey, tier.Name),
			goerr.V(ModelKey, tier.Model),
			goerr.V("reason", reason),
			goerr.V("timeout", c.timeout.String()),
		)
	}
}

func generate(ctx context.Context, client gollem.LLMClient, prompt model.Prompt) (string, error) {
	var opts []gollem.SessionOption
	if prompt.System != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(prompt.System))
	}

	session, err := client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.User))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil {
		return "", goerr.New("LLM returned no response")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if text == "" {
		return "", goerr.New("LLM returned an empty response")
	}
	return text, nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
