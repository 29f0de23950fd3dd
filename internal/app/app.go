// Package app wires configuration, logging, metrics and the three run modes
// (lab, users, compare) into the labwork command.
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

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/labwork/internal/cli"
	"github.com/agbru/labwork/internal/config"
	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/logging"
	"github.com/agbru/labwork/internal/metrics"
	"github.com/agbru/labwork/internal/sysmon"
	"github.com/agbru/labwork/internal/ui"
	"github.com/agbru/labwork/internal/users"
)

const tracerName = "github.com/agbru/labwork"

// Application represents the labwork application instance.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	Metrics   *metrics.Recorder
	Logger    logging.Logger
	ErrWriter io.Writer

	redisClient users.RedisClient
	dashboard   dashboardSettings
}

// dashboardSettings configures the --tui program.
type dashboardSettings struct {
	exitOnDone bool
	options    []tea.ProgramOption
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom CalculatorFactory for the application.
func WithFactory(f fibonacci.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithRedisClient sets the client used when the cache driver is redis.
func WithRedisClient(c users.RedisClient) AppOption {
	return func(a *Application) { a.redisClient = c }
}

// WithDashboardOptions replaces the bubbletea options of the --tui dashboard.
// With exitOnDone the dashboard closes as soon as the comparison completes.
func WithDashboardOptions(exitOnDone bool, opts ...tea.ProgramOption) AppOption {
	return func(a *Application) {
		a.dashboard = dashboardSettings{exitOnDone: exitOnDone, options: opts}
	}
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, Metrics: metrics.NewRecorder()}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultFactory(fibonacci.WithObserver(app.Metrics))
	}

	programName := "labwork"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.Theme, a.Config.NoColor)

	logger, err := logging.New(logging.Options{
		Level:     a.Config.LogLevel,
		File:      a.Config.LogFile,
		Console:   a.ErrWriter,
		Component: "labwork",
	})
	if err != nil {
		return apperrors.HandleError(apperrors.NewConfigError("%v", err), 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			fmt.Fprintf(a.ErrWriter, "closing log file: %v\n", cerr)
		}
	}()
	a.Logger = logger

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.Verbose && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
	}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	start := time.Now()

	err = a.dispatch(ctx, out)

	code := a.exitCode(err, time.Since(start))
	if a.Config.Verbose {
		after := collector.Snapshot()
		system := sysmon.Sample(context.WithoutCancel(ctx))
		a.Logger.Debug("memory after run", after.Fields()...)
		a.Logger.Debug("system usage", system.Fields()...)
		if !a.Config.Quiet {
			cli.DisplayMemoryStats(before, after, out)
			cli.DisplaySystemStats(system, out)
		}
	}
	if a.Config.MetricsFile != "" {
		if werr := a.Metrics.WriteTextfile(a.Config.MetricsFile); werr != nil {
			a.Logger.Error("writing metrics file", werr, logging.String("path", a.Config.MetricsFile))
			if code == apperrors.ExitSuccess {
				code = apperrors.ExitErrorIO
			}
		}
	}
	return code
}

func (a *Application) dispatch(ctx context.Context, out io.Writer) error {
	switch a.Config.Mode {
	case config.ModeLab:
		return a.runMode(ctx, config.ModeLab, out, a.runLab)
	case config.ModeUsers:
		return a.runMode(ctx, config.ModeUsers, out, a.runUsers)
	case config.ModeCompare:
		return a.runMode(ctx, config.ModeCompare, out, a.runCompare)
	case config.ModeAll:
		for _, m := range []struct {
			name string
			fn   modeFunc
		}{
			{config.ModeLab, a.runLab},
			{config.ModeUsers, a.runUsers},
			{config.ModeCompare, a.runCompare},
		} {
			if err := a.runMode(ctx, m.name, out, m.fn); err != nil {
				return err
			}
			if !a.Config.Quiet {
				fmt.Fprintln(out)
			}
		}
		return nil
	default:
		return apperrors.NewConfigError("unknown mode %q", a.Config.Mode)
	}
}

type modeFunc func(ctx context.Context, out io.Writer) error

// runMode runs fn inside a span and records its duration and outcome.
func (a *Application) runMode(ctx context.Context, mode string, out io.Writer, fn modeFunc) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "labwork."+mode)
	defer span.End()
	span.SetAttributes(attribute.String("labwork.mode", mode))

	a.Logger.Debug("mode started", logging.String("mode", mode))
	start := time.Now()
	err := fn(ctx, out)
	elapsed := time.Since(start)
	a.Metrics.ObserveMode(mode, err, elapsed)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.TimeoutError{Operation: mode + " mode", Limit: a.Config.Timeout}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.Logger.Error("mode failed", err, logging.String("mode", mode))
		return err
	}
	span.SetStatus(codes.Ok, "")
	a.Logger.Debug("mode finished", logging.String("mode", mode), logging.String("elapsed", elapsed.String()))
	return nil
}

// reportedError carries the exit code of a failure already shown to the
// user.
type reportedError struct {
	code int
}

func (e reportedError) Error() string {
	return fmt.Sprintf("reported failure (exit code %d)", e.code)
}

func (a *Application) exitCode(err error, elapsed time.Duration) int {
	var reported reportedError
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case errors.As(err, &reported):
		return reported.code
	default:
		return apperrors.HandleError(err, elapsed, a.ErrWriter, cli.CLIColorProvider{})
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeForStartup maps an error returned by New to an exit code.
func ExitCodeForStartup(err error) int {
	if code := apperrors.ExitCodeFor(err); code != apperrors.ExitErrorGeneric {
		return code
	}
	return apperrors.ExitErrorConfig
}
