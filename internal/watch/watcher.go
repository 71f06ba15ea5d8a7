package watch

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// DefaultDebounce coalesces editor write bursts into a single import run.
const DefaultDebounce = 500 * time.Millisecond

// Config wires a Watcher to the importer that runs change-triggered imports.
type Config struct {
	// Importer receives one ImportFile call per settled Markdown change.
	Importer interfaces.ImporterService
	// Dir is the posts directory to observe. Subdirectories (image folders)
	// are not watched.
	Dir string
	// Debounce delays imports after an event so write bursts coalesce.
	// Zero selects DefaultDebounce.
	Debounce time.Duration
	// Options are applied to every change-triggered import run.
	Options interfaces.ImportOptions
	// Logger defaults to a no-op logger when nil.
	Logger interfaces.Logger
}

// Watcher re-imports Markdown posts as they change on disk.
type Watcher struct {
	importer interfaces.ImporterService
	dir      string
	debounce time.Duration
	opts     interfaces.ImportOptions
	logger   interfaces.Logger
}

// New validates the configuration and returns a Watcher ready to run.
func New(cfg Config) (*Watcher, error) {
	if cfg.Importer == nil {
		return nil, errors.New("watch: importer is required")
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, errors.New("watch: dir is required")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{
		importer: cfg.Importer,
		dir:      dir,
		debounce: debounce,
		opts:     cfg.Options,
		logger:   logger,
	}, nil
}

// Run starts an fsnotify watcher on the posts directory and processes file
// change events until ctx is cancelled. Create and write events on Markdown
// files are debounced and re-imported one file at a time. Removals and
// renames only drop the path from the pending set; imports are push-only,
// so a post deleted locally stays in the CMS until removed there.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	w.logger.Info("watcher started", "dir", w.dir)

	pending := map[string]struct{}{}

	// flushTimer debounces change-triggered imports.
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(w.debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			w.logger.Info("watcher stopped")
			return nil

		case <-flushCh:
			w.flush(ctx, pending)
			pending = map[string]struct{}{}

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = struct{}{}
				scheduleFlush()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
				w.logger.Info("post removed locally, remote copy untouched", "path", ev.Name)
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", watchErr)
		}
	}
}

// flush imports every pending path in a stable order. Failures are logged
// and never stop the watch loop.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		outcome, err := w.importer.ImportFile(ctx, path, w.opts)
		if err != nil {
			w.logger.Error("change import failed", "path", path, "error", err)
			continue
		}
		if outcome != nil && outcome.Err != nil {
			w.logger.Error("change import failed", "path", path, "error", outcome.Err)
			continue
		}
		if outcome != nil {
			w.logger.Info("change imported", "path", path, "slug", outcome.Slug, "status", string(outcome.Status))
		}
	}
}
