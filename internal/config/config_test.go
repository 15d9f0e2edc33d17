package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/pflag"

	"github.com/ezachrisen/kin/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kin.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("kin", pflag.ContinueOnError)
	fs.String("database", config.DefaultDatabase, "")
	fs.Int("parallel", config.DefaultParallel, "")
	fs.String("log-level", config.DefaultLogLevel, "")
	return fs
}

func TestDefaults(t *testing.T) {
	is := is.New(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	is.NoErr(err)
	is.Equal(cfg.Database, config.DefaultDatabase)
	is.Equal(cfg.Filters, config.DefaultFilters)
	is.Equal(cfg.Parallel, 1)
	is.Equal(cfg.AncestorCacheSize, 256)
	is.Equal(cfg.File, "")
}

func TestPrecedence(t *testing.T) {
	is := is.New(t)
	path := writeFile(t, "database: file.db\nparallel: 4\nlog_level: debug\nreport_title: Family\n")

	cfg, err := config.Load(path, nil)
	is.NoErr(err)
	is.Equal(cfg.Database, "file.db")
	is.Equal(cfg.Parallel, 4)
	is.Equal(cfg.ReportTitle, "Family")
	is.Equal(cfg.File, path)

	t.Setenv("KIN_DATABASE", "env.db")
	t.Setenv("KIN_LOG_LEVEL", "warn")
	cfg, err = config.Load(path, nil)
	is.NoErr(err)
	is.Equal(cfg.Database, "env.db")
	is.Equal(cfg.LogLevel, "warn")
	is.Equal(cfg.Parallel, 4)

	fs := testFlags()
	is.NoErr(fs.Parse([]string{"--database", "flag.db", "--log-level", "error"}))
	cfg, err = config.Load(path, fs)
	is.NoErr(err)
	is.Equal(cfg.Database, "flag.db")
	is.Equal(cfg.LogLevel, "error")
	is.Equal(cfg.Parallel, 4) // unset flags do not override
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"parallel":   "parallel: 0\n",
		"log level":  "log_level: loud\n",
		"log format": "log_format: xml\n",
		"cache size": "ancestor_cache_size: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := config.Load(writeFile(t, body), nil)
			is.True(err != nil)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		is := is.New(t)
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		is.True(err != nil)
	})
}

func TestLogger(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	cfg := &config.Config{LogLevel: "warn", LogFormat: "json"}
	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "filter", "women")
	is.True(!strings.Contains(buf.String(), "hidden"))
	is.True(strings.Contains(buf.String(), `"filter":"women"`))

	buf.Reset()
	cfg = &config.Config{LogLevel: "debug", LogFormat: "text"}
	cfg.Logger(&buf).Debug("details")
	is.True(strings.Contains(buf.String(), "msg=details"))
}
