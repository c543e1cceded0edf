// Package providers contains dependency injection providers for the mini-app client.
package providers

import (
	"io"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/logger"
)

// Args are the command-line arguments without the program name.
type Args []string

// Terminal is where prompts and command output go when no host shell is attached.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Invocation is the parsed command line: configuration plus the positional
// arguments left over for the command itself.
type Invocation struct {
	Config *config.Config
	Args   []string
}

// ProvideInvocation parses the command line.
func ProvideInvocation(i do.Injector) (*Invocation, error) {
	args := do.MustInvoke[Args](i)

	cfg, rest, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	return &Invocation{Config: cfg, Args: rest}, nil
}

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return do.MustInvoke[*Invocation](i).Config, nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	term := do.MustInvoke[*Terminal](i)

	log := logger.New(logger.Options{
		Writer:      term.Err,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("Starting mini-app client",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"api_url", cfg.API.BaseURL,
		"locale", cfg.App.Locale,
		"cache_path", cfg.Cache.Path,
	)

	return log, nil
}
