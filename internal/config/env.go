package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the LABWORK_-prefixed variable key, or defaultVal when
// it is unset or empty.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet reports whether the flag was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny reports whether any alias of a flag was given.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride binds one LABWORK_ variable to the flags it shadows. apply
// leaves the field untouched when the value does not parse.
type envOverride struct {
	key   string
	flags []string
	apply func(*AppConfig, string)
}

func stringEnv(key string, field func(*AppConfig) *string, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) { *field(c) = v }}
}

func intEnv(key string, field func(*AppConfig) *int, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(c) = n
		}
	}}
}

func durationEnv(key string, field func(*AppConfig) *time.Duration, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) { applyDuration(field(c), v) }}
}

func boolEnv(key string, field func(*AppConfig) *bool, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		dst := field(c)
		*dst = parseBoolEnv(v, *dst)
	}}
}

var envOverrides = []envOverride{
	stringEnv("MODE", func(c *AppConfig) *string { return &c.Mode }, "mode"),
	intEnv("COUNT", func(c *AppConfig) *int { return &c.Count }, "count"),
	stringEnv("ALGO", func(c *AppConfig) *string { return &c.Algo }, "algo"),
	intEnv("WORKERS", func(c *AppConfig) *int { return &c.Workers }, "workers"),
	stringEnv("FILE", func(c *AppConfig) *string { return &c.FilePath }, "file"),
	stringEnv("MESSAGE", func(c *AppConfig) *string { return &c.Message }, "message"),
	stringEnv("DB_DRIVER", func(c *AppConfig) *string { return &c.DBDriver }, "db-driver"),
	stringEnv("DB_DSN", func(c *AppConfig) *string { return &c.DBDSN }, "db-dsn"),
	stringEnv("CACHE_DRIVER", func(c *AppConfig) *string { return &c.CacheDriver }, "cache-driver"),
	stringEnv("REDIS_ADDR", func(c *AppConfig) *string { return &c.RedisAddr }, "redis-addr"),
	durationEnv("CACHE_TTL", func(c *AppConfig) *time.Duration { return &c.CacheTTL }, "cache-ttl"),
	durationEnv("TIMEOUT", func(c *AppConfig) *time.Duration { return &c.Timeout }, "timeout"),
	boolEnv("QUIET", func(c *AppConfig) *bool { return &c.Quiet }, "quiet", "q"),
	boolEnv("TUI", func(c *AppConfig) *bool { return &c.TUI }, "tui"),
	boolEnv("VERBOSE", func(c *AppConfig) *bool { return &c.Verbose }, "verbose", "v"),
	boolEnv("NO_COLOR", func(c *AppConfig) *bool { return &c.NoColor }, "no-color"),
	stringEnv("THEME", func(c *AppConfig) *string { return &c.Theme }, "theme"),
	stringEnv("LOG_LEVEL", func(c *AppConfig) *string { return &c.LogLevel }, "log-level"),
	stringEnv("LOG_FILE", func(c *AppConfig) *string { return &c.LogFile }, "log-file"),
	stringEnv("METRICS_FILE", func(c *AppConfig) *string { return &c.MetricsFile }, "metrics-file"),
}

// parseBoolEnv accepts true/1/yes and false/0/no in any case and returns
// defaultVal for anything else.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyDuration sets *dst when v parses as a time.Duration ("5m", "30s").
func applyDuration(dst *time.Duration, v string) {
	if parsed, err := time.ParseDuration(v); err == nil {
		*dst = parsed
	}
}

// applyEnvOverrides applies LABWORK_* variables for every flag not given on
// the command line, so flags win over the environment.
func applyEnvOverrides(cfg *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.key); val != "" {
			o.apply(cfg, val)
		}
	}
}
