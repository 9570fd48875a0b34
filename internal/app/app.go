package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/medboot/internal/cli"
	"github.com/agbru/medboot/internal/config"
	apperrors "github.com/agbru/medboot/internal/errors"
	"github.com/agbru/medboot/internal/logging"
	"github.com/agbru/medboot/internal/metrics"
	"github.com/agbru/medboot/internal/model"
	"github.com/agbru/medboot/internal/simulate"
	"github.com/agbru/medboot/internal/ui"
)

// Application represents the medboot application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// Source produces the dataset to analyse. It defaults to the simulator
	// configured by Config.Data.
	Source func(config.DataConfig) model.RawInput
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithSource replaces the simulated dataset.
func WithSource(src func(config.DataConfig) model.RawInput) AppOption {
	return func(a *Application) { a.Source = src }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, Source: simulateData}
	for _, opt := range opts {
		opt(app)
	}

	programName := "medboot"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, apperrors.NewConfigError("invalid log level %q", cfg.LogLevel)
	}

	app.Config = cfg
	return app, nil
}

// Run executes a bootstrap run and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.NewMetrics()
	code := a.runEstimate(ctx, out, a.newLogger(), m)
	if a.Config.Metrics {
		m.ObserveMemory(metrics.ReadMemory())
		if err := m.WriteText(out); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}
	return code
}

// newLogger builds the run logger on ErrWriter, human-readable unless JSON
// logs were requested.
func (a *Application) newLogger() logging.Logger {
	level, err := zerolog.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	w := a.ErrWriter
	if !a.Config.JSONLogs {
		w = zerolog.ConsoleWriter{Out: a.ErrWriter, TimeFormat: time.TimeOnly, NoColor: ui.GetCurrentTheme().Name == ui.NoColorTheme.Name}
	}
	return logging.NewZerologAdapter(zerolog.New(w).Level(level).With().Timestamp().Str("component", "medboot").Logger())
}

// simulateData draws the configured synthetic dataset.
func simulateData(d config.DataConfig) model.RawInput {
	p := simulate.DefaultParams()
	p.N = d.Observations
	p.Stages = d.Stages
	p.Mediators = d.Mediators
	p.Moderators = d.Moderators
	p.Covariates = d.Covariates
	p.Seed = d.Seed
	return simulate.Generate(p)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// presenter returns the result presenter for the configured verbosity.
func (a *Application) presenter() cli.ResultPresenter {
	return cli.ResultPresenter{Quiet: a.Config.Quiet}
}
