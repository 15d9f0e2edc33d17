package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/internal/filterfile"
)

// Library holds the system and custom filter lists, compiled and ready to
// apply. Reload replaces both lists at once; readers never see a half
// loaded library.
type Library struct {
	systemPath string
	customPath string
	evaluator  kin.Evaluator
	engineOpts []kin.EngineOption
	logger     *slog.Logger

	current atomic.Pointer[snapshot]
}

// snapshot is an immutable view of the filters loaded at one point in time.
type snapshot struct {
	system *kin.FilterList
	custom *kin.FilterList
	engine *kin.Engine
	loaded time.Time
}

// NewLibrary loads the filter files and compiles every filter. The engine
// options are used for every engine the library creates; the library
// adds its own filter source.
func NewLibrary(systemPath, customPath string, ev kin.Evaluator, logger *slog.Logger, opts ...kin.EngineOption) (*Library, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Library{
		systemPath: systemPath,
		customPath: customPath,
		evaluator:  ev,
		engineOpts: opts,
		logger:     logger,
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload reads both filter files again. If either file fails to load or
// compile, the filters already loaded stay in use.
func (l *Library) Reload() error {
	system, err := filterfile.Load(l.systemPath)
	if err != nil {
		return fmt.Errorf("loading system filters: %w", err)
	}
	custom, err := filterfile.Load(l.customPath)
	if err != nil {
		return fmt.Errorf("loading custom filters: %w", err)
	}

	opts := append([]kin.EngineOption{}, l.engineOpts...)
	opts = append(opts, kin.WithFilters(kin.Chain(system, custom)))
	e := kin.NewEngine(l.evaluator, opts...)
	for _, list := range []*kin.FilterList{system, custom} {
		if err := e.CompileList(list); err != nil {
			return fmt.Errorf("compiling %s: %w", list.Name, err)
		}
	}

	l.current.Store(&snapshot{
		system: system,
		custom: custom,
		engine: e,
		loaded: time.Now(),
	})
	l.logger.Info("filters loaded", "system", system.Len(), "custom", custom.Len())
	return nil
}

// Lookup finds a filter by name, system filters first. The engine that
// compiled the filter is returned with it.
func (l *Library) Lookup(name string) (*kin.Filter, *kin.Engine, bool) {
	s := l.current.Load()
	if f, ok := s.system.Lookup(name); ok {
		return f, s.engine, true
	}
	if f, ok := s.custom.Lookup(name); ok {
		return f, s.engine, true
	}
	return nil, nil, false
}

// Lists returns the system and custom lists currently in use.
func (l *Library) Lists() (system, custom *kin.FilterList) {
	s := l.current.Load()
	return s.system, s.custom
}

// Loaded returns the time of the last successful load.
func (l *Library) Loaded() time.Time {
	return l.current.Load().loaded
}

// Watch reloads the library whenever one of the filter files is written,
// created, renamed or removed. It blocks until ctx is canceled.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors and filterfile.Save replace files by renaming, which drops
	// a watch on the file itself, so watch the directories.
	files := map[string]bool{}
	for _, p := range []string{l.systemPath, l.customPath} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
	}
	dirs := map[string]bool{}
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(50*time.Millisecond, func() {
				l.logger.Debug("filter file changed", "file", name)
				if err := l.Reload(); err != nil {
					l.logger.Error("reloading filters", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watcher error", "error", err)
		}
	}
}
