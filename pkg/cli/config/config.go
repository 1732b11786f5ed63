package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the optional application configuration file
type AppConfig struct {
	Messages    Messages `toml:"messages"`
	HistorySize int      `toml:"history_size"`
	CacheSize   int      `toml:"cache_size"`
	Workers     int      `toml:"workers"`
	MaxSessions int      `toml:"max_sessions"`
}

// Messages overrides the fixed reply texts
type Messages struct {
	Refusal     string `toml:"refusal"`
	Apology     string `toml:"apology"`
	Greeting    string `toml:"greeting"`
	Unavailable string `toml:"unavailable"`
}

// DefaultAppConfig returns the configuration used without a file
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		HistorySize: model.DefaultHistorySize,
		CacheSize:   model.DefaultCacheCapacity,
		Workers:     usecase.DefaultWorkers,
		MaxSessions: usecase.DefaultMaxSessions,
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.HistorySize < 1 {
		return goerr.Wrap(ErrInvalidConfig, "history_size must be positive", goerr.V("history_size", a.HistorySize))
	}
	if a.CacheSize < 1 {
		return goerr.Wrap(ErrInvalidConfig, "cache_size must be positive", goerr.V("cache_size", a.CacheSize))
	}
	if a.Workers < 1 {
		return goerr.Wrap(ErrInvalidConfig, "workers must be positive", goerr.V("workers", a.Workers))
	}
	if a.MaxSessions < 1 {
		return goerr.Wrap(ErrInvalidConfig, "max_sessions must be positive", goerr.V("max_sessions", a.MaxSessions))
	}
	if a.Messages.Unavailable != "" && strings.Count(a.Messages.Unavailable, "%s") != 1 {
		return goerr.Wrap(ErrInvalidConfig, "messages.unavailable must contain exactly one %s",
			goerr.V("unavailable", a.Messages.Unavailable))
	}
	return nil
}

// UseCaseOptions converts the configuration to use case options
func (a *AppConfig) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithMessages(usecase.Messages{
			Refusal:     a.Messages.Refusal,
			Apology:     a.Messages.Apology,
			Greeting:    a.Messages.Greeting,
			Unavailable: a.Messages.Unavailable,
		}),
		usecase.WithHistorySize(a.HistorySize),
		usecase.WithWorkers(a.Workers),
		usecase.WithMaxSessions(a.MaxSessions),
	}
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Keys missing from the file keep their defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrInvalidConfig, "config file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}

// App holds the CLI flag pointing at the configuration file
type App struct {
	path string
}

// Flags returns CLI flags for the application configuration
func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Sources:     cli.EnvVars("LIFEGUIDE_CONFIG"),
			Destination: &x.path,
		},
	}
}

// LogAttrs returns log attributes for the application configuration
func (x *App) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("config", x.path)}
}

// Configure loads the configuration file, or returns defaults when no path
// is set
func (x *App) Configure() (*AppConfig, error) {
	if x.path == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfiguration(x.path)
}
