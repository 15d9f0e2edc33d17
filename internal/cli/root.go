// Package cli provides the kin command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/cel"
	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/config"
	"github.com/ezachrisen/kin/internal/server"
	"github.com/ezachrisen/kin/internal/store"
)

// Version is set at build time.
var Version = "dev"

// app is what every command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

type appKey struct{}

func fromContext(ctx context.Context) *app {
	if a, ok := ctx.Value(appKey{}).(*app); ok {
		return a
	}
	cfg := &config.Config{
		Database:          config.DefaultDatabase,
		Filters:           config.DefaultFilters,
		CustomFilters:     config.DefaultCustomFilters,
		LogLevel:          config.DefaultLogLevel,
		LogFormat:         config.DefaultLogFormat,
		Listen:            config.DefaultListen,
		Parallel:          config.DefaultParallel,
		AncestorCacheSize: config.DefaultAncestorCacheSize,
		ReportTitle:       config.DefaultReportTitle,
	}
	return &app{cfg: cfg, logger: slog.New(slog.DiscardHandler)}
}

// NewRootCmd creates the kin command and its subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "kin",
		Short: "kin - filter people in a family tree",
		Long: `kin keeps a family tree in a SQLite database and selects people from it
with filters: named combinations of rules such as "Is a descendant of" or
"Has the birth", kept in YAML filter files.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a := &app{cfg: cfg, logger: cfg.Logger(cmd.ErrOrStderr())}
			if cfg.File != "" {
				a.logger.Debug("using config file", "file", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./kin.yaml)")
	pf.String("database", config.DefaultDatabase, "path to the SQLite tree database")
	pf.String("filters", config.DefaultFilters, "system filter file")
	pf.String("custom-filters", config.DefaultCustomFilters, "custom filter file")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	pf.String("log-format", config.DefaultLogFormat, "log format (text|json)")
	pf.Int("parallel", config.DefaultParallel, "number of workers used to apply a filter")
	pf.Int("ancestor-cache-size", config.DefaultAncestorCacheSize, "number of ancestor sets to cache (0 disables)")

	_ = root.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newImportCmd(),
		newPeopleCmd(),
		newFiltersCmd(),
		newApplyCmd(),
		newReportCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line in args, without the program name.
func Execute(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// loadTree reads the whole tree from the configured database.
func (a *app) loadTree(ctx context.Context) (*genealogy.MemDB, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	db, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("tree loaded", "database", s.Path(), "people", db.Len())
	return db, nil
}

func (a *app) openStore() (*store.Store, error) {
	s, err := store.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// library loads the configured filter files, compiled by an engine built
// from the configuration and opts.
func (a *app) library(opts ...kin.EngineOption) (*server.Library, error) {
	opts = append([]kin.EngineOption{kin.WithLogger(a.logger)}, opts...)
	if a.cfg.AncestorCacheSize > 0 {
		c, err := kin.NewAncestorCache(a.cfg.AncestorCacheSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kin.WithAncestorCache(c))
	}
	return server.NewLibrary(a.cfg.Filters, a.cfg.CustomFilters, cel.NewEvaluator(), a.logger, opts...)
}

// lookup finds a filter in the library.
func lookup(lib *server.Library, name string) (*kin.Filter, *kin.Engine, error) {
	f, e, ok := lib.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("%q: %w", name, server.ErrUnknownFilter)
	}
	return f, e, nil
}

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	if title != "" {
		tw.SetTitle(title)
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw
}
