package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window before a change is reported.
const DefaultDebounce = 250 * time.Millisecond

// ChangeEvent is one coalesced change to a watched file.
type ChangeEvent struct {
	Path string
	Op   string // create, write, remove or rename
}

// FileWatcher reports changes to a set of files. It watches their parent
// directories so files replaced by rename-on-save are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filter   *NameFilter
	debounce time.Duration
	onChange func(ChangeEvent)
	logger   *slog.Logger
}

// NewFileWatcher watches paths. All paths must share one directory.
func NewFileWatcher(debounce time.Duration, onChange func(ChangeEvent), paths ...string) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths")
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		if filepath.Dir(p) != dir {
			return nil, fmt.Errorf("watch: %s is not in %s", p, dir)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		watcher:  w,
		filter:   NewNameFilter(paths...),
		debounce: debounce,
		onChange: onChange,
		logger:   slog.Default(),
	}, nil
}

// WithLogger sets the logger for watcher errors.
func (w *FileWatcher) WithLogger(l *slog.Logger) *FileWatcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Run delivers debounced changes until ctx is done. Watcher errors are
// logged and do not stop the loop.
func (w *FileWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck // closing on shutdown

	pending := make(chan ChangeEvent, 1)
	debouncer := NewDebouncer(w.debounce, func() {
		select {
		case ev := <-pending:
			if w.onChange != nil {
				w.onChange(ev)
			}
		default:
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			op := opName(event.Op)
			if op == "" || !w.filter.Matches(event.Name) {
				continue
			}
			// Keep only the newest event.
			select {
			case <-pending:
			default:
			}
			pending <- ChangeEvent{Path: event.Name, Op: op}
			debouncer.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
