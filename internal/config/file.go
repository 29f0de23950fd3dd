package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/labwork/internal/errors"
)

// fileConfig mirrors AppConfig with pointer fields so that keys absent from
// the YAML document can be told apart from explicit zero values.
type fileConfig struct {
	Mode        *string `yaml:"mode"`
	Count       *int    `yaml:"count"`
	Algo        *string `yaml:"algo"`
	Workers     *int    `yaml:"workers"`
	FilePath    *string `yaml:"file"`
	Message     *string `yaml:"message"`
	DBDriver    *string `yaml:"db_driver"`
	DBDSN       *string `yaml:"db_dsn"`
	CacheDriver *string `yaml:"cache_driver"`
	RedisAddr   *string `yaml:"redis_addr"`
	CacheTTL    *string `yaml:"cache_ttl"`
	Timeout     *string `yaml:"timeout"`
	Quiet       *bool   `yaml:"quiet"`
	TUI         *bool   `yaml:"tui"`
	Verbose     *bool   `yaml:"verbose"`
	NoColor     *bool   `yaml:"no_color"`
	Theme       *string `yaml:"theme"`
	LogLevel    *string `yaml:"log_level"`
	LogFile     *string `yaml:"log_file"`
	MetricsFile *string `yaml:"metrics_file"`
}

// loadFile reads a YAML configuration file. Unknown keys and malformed
// durations are rejected.
func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, apperrors.NewConfigError("reading config file: %v", err)
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	for key, v := range map[string]*string{"cache_ttl": fc.CacheTTL, "timeout": fc.Timeout} {
		if v == nil {
			continue
		}
		if _, err := time.ParseDuration(*v); err != nil {
			return fileConfig{}, apperrors.NewConfigError("config file %s: invalid %s %q", path, key, *v)
		}
	}
	return fc, nil
}

// applyFileConfig copies file values into cfg for flags not set explicitly.
// Environment overrides are applied afterwards and win over the file.
func applyFileConfig(cfg *AppConfig, fc fileConfig, fs *flag.FlagSet) {
	setString := func(dst *string, src *string, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool, flags ...string) {
		if src != nil && !isFlagSetAny(fs, flags...) {
			*dst = *src
		}
	}

	setString(&cfg.Mode, fc.Mode, "mode")
	setInt(&cfg.Count, fc.Count, "count")
	setString(&cfg.Algo, fc.Algo, "algo")
	setInt(&cfg.Workers, fc.Workers, "workers")
	setString(&cfg.FilePath, fc.FilePath, "file")
	setString(&cfg.Message, fc.Message, "message")
	setString(&cfg.DBDriver, fc.DBDriver, "db-driver")
	setString(&cfg.DBDSN, fc.DBDSN, "db-dsn")
	setString(&cfg.CacheDriver, fc.CacheDriver, "cache-driver")
	setString(&cfg.RedisAddr, fc.RedisAddr, "redis-addr")
	if fc.CacheTTL != nil && !isFlagSet(fs, "cache-ttl") {
		applyDuration(&cfg.CacheTTL, *fc.CacheTTL)
	}
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		applyDuration(&cfg.Timeout, *fc.Timeout)
	}
	setBool(&cfg.Quiet, fc.Quiet, "quiet", "q")
	setBool(&cfg.TUI, fc.TUI, "tui")
	setBool(&cfg.Verbose, fc.Verbose, "verbose", "v")
	setBool(&cfg.NoColor, fc.NoColor, "no-color")
	setString(&cfg.Theme, fc.Theme, "theme")
	setString(&cfg.LogLevel, fc.LogLevel, "log-level")
	setString(&cfg.LogFile, fc.LogFile, "log-file")
	setString(&cfg.MetricsFile, fc.MetricsFile, "metrics-file")
}
