package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/labwork/internal/cli"
	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/fileio"
	"github.com/agbru/labwork/internal/logging"
	"github.com/agbru/labwork/internal/orchestration"
	"github.com/agbru/labwork/internal/tui"
	"github.com/agbru/labwork/internal/users"
)

// Messages printed by the lab mode.
const (
	MsgWritten      = "Data successfully written to file"
	MsgFileNotFound = "File not found."
)

// redisKeyPrefix namespaces the cache keys written by labwork.
const redisKeyPrefix = "labwork:"

// runLab appends the configured message to the lab file, prints the file
// back and then prints the sequence.
func (a *Application) runLab(ctx context.Context, out io.Writer) error {
	path := a.Config.FilePath
	if err := fileio.AppendLine(ctx, path, a.Config.Message); err != nil {
		return apperrors.StorageError{Op: "write " + path, Cause: err}
	}
	fmt.Fprintln(out, MsgWritten)
	a.Logger.Debug("line appended", logging.String("path", path))

	lines, errc := fileio.StreamLines(ctx, path)
	read := 0
	for line := range lines {
		read++
		fmt.Fprintln(out, line)
	}
	err := <-errc
	switch {
	case errors.Is(err, fileio.ErrFileNotFound):
		fmt.Fprintln(out, MsgFileNotFound)
	case err != nil:
		return apperrors.StorageError{Op: "read " + path, Cause: err}
	default:
		a.Logger.Debug("file read", logging.String("path", path), logging.Int("lines", read))
	}

	calc, err := a.Factory.Get(a.Config.Algo)
	if err != nil {
		return err
	}
	return cli.DisplaySequence(ctx, out, calc, a.Config.Count, a.Config.Quiet)
}

// runUsers opens the users store, seeds the demo users and prints the two
// listings.
func (a *Application) runUsers(ctx context.Context, out io.Writer) error {
	store, err := users.Open(ctx, users.StoreConfig{Driver: a.Config.DBDriver, DSN: a.Config.DBDSN})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.Logger.Error("closing users store", cerr)
		}
	}()

	cache, closeCache := a.userCache()
	defer closeCache()

	svc := users.NewService(store, cache,
		users.WithCacheTTL(a.Config.CacheTTL),
		users.WithLogger(a.Logger),
		users.WithCacheObserver(a.Metrics),
	)

	var active []users.User
	var withOrders []users.UserWithOrderInfo
	err = cli.WithSpinner(out, a.Config.Quiet, "Loading users...", func() error {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := svc.AddUsers(ctx, users.DemoUsers()); err != nil {
			return err
		}
		var err error
		if active, err = svc.CachedActiveUsers(ctx); err != nil {
			return err
		}
		withOrders, err = svc.UsersWithOrders(ctx)
		return err
	})
	if err != nil {
		return err
	}

	cli.DisplayActiveUsers(out, active, a.Config.Quiet)
	cli.DisplayUsersWithOrders(out, withOrders, a.Config.Quiet)
	return nil
}

// userCache builds the configured active-user cache and a func releasing it.
func (a *Application) userCache() (users.Cache, func()) {
	if a.Config.CacheDriver != "redis" {
		return users.NewMemoryCache(a.Config.CacheTTL), func() {}
	}
	if a.redisClient != nil {
		return users.NewRedisCache(a.redisClient, redisKeyPrefix), func() {}
	}
	client := users.NewRedisClient(a.Config.RedisAddr)
	return users.NewRedisCache(client, redisKeyPrefix), func() {
		if err := client.Close(); err != nil {
			a.Logger.Error("closing redis client", err)
		}
	}
}

// runCompare evaluates F(0)..F(count-1) with every registered calculator
// concurrently and checks that they agree.
func (a *Application) runCompare(ctx context.Context, out io.Writer) error {
	calculators := orchestration.GetCalculatorsToRun("all", a.Factory)
	indices := orchestration.IndexRange(a.Config.Count)
	if a.Config.TUI {
		return a.runCompareDashboard(ctx, calculators, indices, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	} else {
		cli.PrintExecutionMode(calculators, a.Config.Count, out)
	}

	results := orchestration.ExecuteEvaluations(ctx, calculators, indices, a.Config.Workers, reporter, progressOut)
	if err := ctx.Err(); err != nil {
		a.observeEvaluations(results)
		return err
	}
	return a.summarizeComparison(results, indices, out)
}

// runCompareDashboard runs the comparison on the interactive dashboard, then
// prints the summary table once the dashboard has closed.
func (a *Application) runCompareDashboard(ctx context.Context, calculators []fibonacci.Calculator, indices []uint64, out io.Writer) error {
	opts := a.dashboard.options
	if opts == nil {
		opts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(out)}
	}
	outcome, err := tui.Run(ctx, tui.Session{
		Calculators: calculators,
		Indices:     indices,
		Workers:     a.Config.Workers,
		ExitOnDone:  a.dashboard.exitOnDone,
	}, opts...)
	if err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	if outcome.Err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return outcome.Err
	}
	return a.summarizeComparison(outcome.Results, indices, out)
}

func (a *Application) observeEvaluations(results []orchestration.EvaluationResult) {
	for _, res := range results {
		if res.Err == nil {
			a.Metrics.ObserveEvaluation(res.Name, res.Duration)
		}
	}
}

// summarizeComparison records metrics and prints the comparison verdict.
func (a *Application) summarizeComparison(results []orchestration.EvaluationResult, indices []uint64, out io.Writer) error {
	a.observeEvaluations(results)
	if code := orchestration.AnalyzeComparisonResults(results, indices, cli.CLIResultPresenter{}, out); code != apperrors.ExitSuccess {
		return reportedError{code: code}
	}
	return nil
}
