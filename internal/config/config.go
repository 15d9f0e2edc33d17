// Package config loads kin settings from defaults, a kin.yaml file, KIN_
// environment variables and command-line flags, in increasing priority.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds every kin setting.
type Config struct {
	Database          string `koanf:"database"`
	Filters           string `koanf:"filters"`
	CustomFilters     string `koanf:"custom_filters"`
	LogLevel          string `koanf:"log_level"`
	LogFormat         string `koanf:"log_format"`
	Listen            string `koanf:"listen"`
	Parallel          int    `koanf:"parallel"`
	AncestorCacheSize int    `koanf:"ancestor_cache_size"`
	ReportTitle       string `koanf:"report_title"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Default values.
const (
	DefaultDatabase          = "kin.db"
	DefaultFilters           = "filters.yaml"
	DefaultCustomFilters     = "custom_filters.yaml"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultListen            = "localhost:8080"
	DefaultParallel          = 1
	DefaultAncestorCacheSize = 256
	DefaultReportTitle       = "Filter report"
	DefaultFile              = "kin.yaml"
	envPrefix                = "KIN_"
)

func defaults() map[string]any {
	return map[string]any{
		"database":            DefaultDatabase,
		"filters":             DefaultFilters,
		"custom_filters":      DefaultCustomFilters,
		"log_level":           DefaultLogLevel,
		"log_format":          DefaultLogFormat,
		"listen":              DefaultListen,
		"parallel":            DefaultParallel,
		"ancestor_cache_size": DefaultAncestorCacheSize,
		"report_title":        DefaultReportTitle,
	}
}

// Load reads the configuration. cfgFile names the config file; when it
// is empty, kin.yaml in the working directory is used if present. Only
// flags that were set on the command line override other sources; flag
// names are the config keys with dashes for underscores.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", used, err)
		}
	}

	// KIN_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, not %q", c.LogFormat)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, not %d", c.Parallel)
	}
	if c.AncestorCacheSize < 0 {
		return fmt.Errorf("ancestor_cache_size must not be negative")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Logger builds the logger described by the log settings, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
