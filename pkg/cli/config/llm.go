package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/lifeguide/pkg/service/completion"
	"github.com/urfave/cli/v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"

	DefaultBaseModel     = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.0-flash-lite"
)

// LLM holds configuration for the completion tiers. The base model is tried
// first and the fallback model when it fails.
type LLM struct {
	provider       string
	geminiProject  string
	geminiLocation string
	openaiAPIKey   string
	claudeAPIKey   string
	baseModel      string
	fallbackModel  string
	timeout        time.Duration
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider [gemini|openai|claude]",
			Value:       ProviderGemini,
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_CLAUDE_API_KEY"),
			Destination: &x.claudeAPIKey,
		},
		&cli.StringFlag{
			Name:        "base-model",
			Usage:       "Model tried first for every request",
			Value:       DefaultBaseModel,
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_BASE_MODEL"),
			Destination: &x.baseModel,
		},
		&cli.StringFlag{
			Name:        "fallback-model",
			Usage:       "Model tried when the base model fails",
			Value:       DefaultFallbackModel,
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_FALLBACK_MODEL"),
			Destination: &x.fallbackModel,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout of a single model attempt",
			Value:       completion.DefaultTimeout,
			Category:    "LLM",
			Sources:     cli.EnvVars("LIFEGUIDE_LLM_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration. API keys are
// reported only as set or unset.
func (x *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", x.provider),
		slog.String("base_model", x.baseModel),
		slog.String("fallback_model", x.fallbackModel),
		slog.Duration("timeout", x.timeout),
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.Bool("openai_api_key_set", x.openaiAPIKey != ""),
		slog.Bool("claude_api_key_set", x.claudeAPIKey != ""),
	}
}

// tierModels returns the tier names and models in policy order
func (x *LLM) tierModels() []struct{ name, model string } {
	return []struct{ name, model string }{
		{name: "base", model: x.baseModel},
		{name: "fallback", model: x.fallbackModel},
	}
}

// Validate checks that both tier models are set and the selected provider
// has its credentials
func (x *LLM) Validate() error {
	if x.baseModel == "" {
		return goerr.Wrap(ErrMissingOption, "base model is required", goerr.V(OptionKey, "base-model"))
	}
	if x.fallbackModel == "" {
		return goerr.Wrap(ErrMissingOption, "fallback model is required", goerr.V(OptionKey, "fallback-model"))
	}

	switch x.provider {
	case ProviderGemini:
		if x.geminiProject == "" {
			return goerr.Wrap(ErrMissingOption, "gemini project is required", goerr.V(OptionKey, "gemini-project"))
		}
	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return goerr.Wrap(ErrMissingOption, "OpenAI API key is required", goerr.V(OptionKey, "openai-api-key"))
		}
	case ProviderClaude:
		if x.claudeAPIKey == "" {
			return goerr.Wrap(ErrMissingOption, "Claude API key is required", goerr.V(OptionKey, "claude-api-key"))
		}
	default:
		return goerr.Wrap(ErrUnknownProvider, "unsupported LLM provider", goerr.V(ProviderKey, x.provider))
	}
	return nil
}

// Configure creates the completion client with one tier per configured model
func (x *LLM) Configure(ctx context.Context) (*completion.Client, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}

	var tiers []completion.Tier
	for _, t := range x.tierModels() {
		client, err := x.newClient(ctx, t.model)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create LLM client",
				goerr.V("tier", t.name),
				goerr.V("model", t.model),
			)
		}
		tiers = append(tiers, completion.Tier{
			Name:   t.name,
			Model:  t.model,
			Client: client,
		})
	}

	return completion.New(tiers, completion.WithTimeout(x.timeout))
}

func (x *LLM) newClient(ctx context.Context, model string) (gollem.LLMClient, error) {
	switch x.provider {
	case ProviderGemini:
		return gemini.New(ctx, x.geminiProject, x.geminiLocation, gemini.WithModel(model))
	case ProviderOpenAI:
		return openai.New(ctx, x.openaiAPIKey, openai.WithModel(model))
	case ProviderClaude:
		return claude.New(ctx, x.claudeAPIKey, claude.WithModel(model))
	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "unsupported LLM provider", goerr.V(ProviderKey, x.provider))
	}
}
