// Package config defines the application configuration and how it is
// assembled from command-line flags, LABWORK_* environment variables and an
// optional YAML file.
package config

import (
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/ui"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "LABWORK_"

// Application modes.
const (
	ModeLab     = "lab"
	ModeUsers   = "users"
	ModeCompare = "compare"
	ModeAll     = "all"
)

// Default values.
const (
	DefaultCount       = 20
	DefaultFile        = "data.txt"
	DefaultMessage     = "Some data to be written to the file"
	DefaultDBDriver    = "sqlite"
	DefaultCacheDriver = "memory"
	DefaultRedisAddr   = "localhost:6379"
	DefaultCacheTTL    = 5 * time.Minute
	DefaultTimeout     = 1 * time.Minute
	DefaultAlgo        = "memo"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Mode selects what the application runs: lab, users, compare or all.
	Mode string
	// Count is the number of sequence terms printed (indices 0..Count-1).
	Count int
	// Algo is the evaluator used for the printed sequence (memo or big).
	Algo string
	// Workers bounds the goroutines used by compare mode.
	Workers int
	// FilePath is the text file the lab mode appends to and reads back.
	FilePath string
	// Message is the line appended to FilePath.
	Message string
	// DBDriver is the users store driver: sqlite, pgx or mysql.
	DBDriver string
	// DBDSN is the users store data source name. Empty selects an in-memory
	// SQLite database.
	DBDSN string
	// CacheDriver is the backend of the active-user cache: memory or redis.
	CacheDriver string
	// RedisAddr is the Redis address used when CacheDriver is redis.
	RedisAddr string
	// CacheTTL is the absolute expiration of the cached active-user query.
	CacheTTL time.Duration
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Quiet suppresses headers and decorations.
	Quiet bool
	// TUI shows compare mode on an interactive dashboard.
	TUI bool
	// Verbose enables debug logging and memory statistics.
	Verbose bool
	// NoColor disables ANSI colors.
	NoColor bool
	// Theme is the console color theme: dark or light.
	Theme string
	// LogLevel is debug, info, warn or error.
	LogLevel string
	// LogFile, when set, sends logs to a rotated file.
	LogFile string
	// MetricsFile, when set, receives the prometheus text exposition at exit.
	MetricsFile string
	// ConfigFile is the YAML file the configuration was loaded from.
	ConfigFile string
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() AppConfig {
	return AppConfig{
		Mode:        ModeLab,
		Count:       DefaultCount,
		Algo:        DefaultAlgo,
		Workers:     runtime.NumCPU(),
		FilePath:    DefaultFile,
		Message:     DefaultMessage,
		DBDriver:    DefaultDBDriver,
		CacheDriver: DefaultCacheDriver,
		RedisAddr:   DefaultRedisAddr,
		CacheTTL:    DefaultCacheTTL,
		Timeout:     DefaultTimeout,
		LogLevel:    "info",
		Theme:       "dark",
	}
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableAlgos []string) error {
	switch c.Mode {
	case ModeLab, ModeUsers, ModeCompare, ModeAll:
	default:
		return apperrors.NewConfigError("unknown mode %q (expected lab, users, compare or all)", c.Mode)
	}
	if c.Count <= 0 {
		return apperrors.NewConfigError("count must be greater than zero, got %d", c.Count)
	}
	if c.Workers <= 0 {
		return apperrors.NewConfigError("workers must be greater than zero, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.CacheTTL <= 0 {
		return apperrors.NewConfigError("cache-ttl must be positive, got %s", c.CacheTTL)
	}
	if c.FilePath == "" {
		return apperrors.NewConfigError("file path must not be empty")
	}
	switch c.DBDriver {
	case "sqlite":
	case "pgx", "mysql":
		if c.DBDSN == "" {
			return apperrors.NewConfigError("db driver %s requires --db-dsn", c.DBDriver)
		}
	default:
		return apperrors.NewConfigError("unknown db driver %q (expected sqlite, pgx or mysql)", c.DBDriver)
	}
	switch c.CacheDriver {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return apperrors.NewConfigError("cache driver redis requires --redis-addr")
		}
	default:
		return apperrors.NewConfigError("unknown cache driver %q (expected memory or redis)", c.CacheDriver)
	}
	if c.TUI {
		if c.Mode != ModeCompare {
			return apperrors.NewConfigError("--tui requires --mode compare, got %q", c.Mode)
		}
		if c.Quiet {
			return apperrors.NewConfigError("--tui and --quiet are mutually exclusive")
		}
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return apperrors.NewConfigError("unknown theme %q (expected %s)", c.Theme, strings.Join(ui.ThemeNames(), " or "))
	}
	if len(availableAlgos) > 0 && !contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q (available: %s)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseConfig builds the configuration from the command line, then the
// environment, then the optional YAML file named by --config, then defaults.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The command-line arguments without the program name.
//   - errWriter: Where usage and parse errors are written.
//   - availableAlgos: Evaluator names accepted by --algo.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp when --help was requested, a ConfigError otherwise.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := Defaults()
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file.")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "What to run: lab, users, compare or all.")
	fs.IntVar(&cfg.Count, "count", cfg.Count, "Number of sequence terms to print.")
	fs.StringVar(&cfg.Algo, "algo", cfg.Algo, fmt.Sprintf("Sequence evaluator (%s).", strings.Join(availableAlgos, ", ")))
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Goroutines used by compare mode.")
	fs.StringVar(&cfg.FilePath, "file", cfg.FilePath, "Text file used by lab mode.")
	fs.StringVar(&cfg.Message, "message", cfg.Message, "Line appended to the file in lab mode.")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Users store driver (sqlite, pgx or mysql).")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "Users store data source name (empty: in-memory SQLite).")
	fs.StringVar(&cfg.CacheDriver, "cache-driver", cfg.CacheDriver, "Active-user cache backend (memory or redis).")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for --cache-driver=redis.")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Expiration of the cached active-user query.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum execution time.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Quiet mode: print values only.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Interactive dashboard for compare mode.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Debug logging and memory statistics.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme (dark or light).")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error.")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to a rotated file.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write prometheus metrics to this file at exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	configFile := cfg.ConfigFile
	if !isFlagSet(fs, "config") {
		configFile = getEnvString("CONFIG", "")
	}
	if configFile != "" {
		fileCfg, err := loadFile(configFile)
		if err != nil {
			return AppConfig{}, err
		}
		applyFileConfig(&cfg, fileCfg, fs)
		cfg.ConfigFile = configFile
	}

	applyEnvOverrides(&cfg, fs)

	if cfg.Verbose && !isFlagSet(fs, "log-level") && getEnvString("LOG_LEVEL", "") == "" {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errWriter, "Error:", err)
		return AppConfig{}, err
	}
	return cfg, nil
}
