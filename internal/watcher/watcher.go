package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates the file appeared.
	OpCreate Operation = iota
	// OpModify indicates the file was written or replaced.
	OpModify
	// OpDelete indicates the file was removed or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a change to one watched file.
type FileEvent struct {
	// Path is the absolute path of the watched file.
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 300ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode.
	// Default: 1s
	PollInterval time.Duration

	// ForcePolling skips fsnotify.
	ForcePolling bool
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 300 * time.Millisecond,
		PollInterval:   time.Second,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	return o
}

// Watcher watches a fixed set of files.
type Watcher struct {
	opts      Options
	files     map[string]bool
	dirs      []string
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	events    chan []FileEvent
	errors    chan error
	stopCh    chan struct{}
	mu        sync.RWMutex
	stopped   bool
}

// New creates a watcher for paths. Files need not exist yet.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	opts = opts.WithDefaults()

	w := &Watcher{
		opts:      opts,
		files:     make(map[string]bool, len(paths)),
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, 16),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve absolute path: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		w.dirs = append(w.dirs, d)
	}
	sort.Strings(w.dirs)

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Warn("fsnotify unavailable, polling instead", slog.String("error", err.Error()))
		} else {
			w.fsWatcher = fsw
		}
	}
	return w, nil
}

// Mode returns "fsnotify" or "polling".
func (w *Watcher) Mode() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.fsWatcher != nil {
		return "fsnotify"
	}
	return "polling"
}

// Run watches until ctx is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	go w.forwardDebouncedEvents(ctx)

	w.mu.Lock()
	fsw := w.fsWatcher
	if fsw != nil {
		for _, d := range w.dirs {
			if err := fsw.Add(d); err != nil {
				slog.Warn("cannot watch directory, polling instead",
					slog.String("dir", d),
					slog.String("error", err.Error()))
				_ = fsw.Close()
				w.fsWatcher, fsw = nil, nil
				break
			}
		}
	}
	w.mu.Unlock()

	slog.Debug("watch_started",
		slog.String("mode", w.Mode()),
		slog.Int("files", len(w.files)))

	if fsw != nil {
		return w.runFsnotify(ctx, fsw)
	}
	return w.runPolling(ctx)
}

func (w *Watcher) runFsnotify(ctx context.Context, fsw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context) error {
	p := newPoller(w.watched())
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case now := <-ticker.C:
			for _, e := range p.changes(now) {
				w.debouncer.Add(e)
			}
		}
	}
}

// handleFsnotifyEvent filters directory events down to the watched files.
func (w *Watcher) handleFsnotifyEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if !w.files[name] {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		op = OpDelete
	default:
		return
	}

	w.debouncer.Add(FileEvent{Path: name, Operation: op, Timestamp: time.Now()})
}

func (w *Watcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(events) > 0 {
				w.emitEvents(events)
			}
		}
	}
}

func (w *Watcher) emitEvents(events []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.events <- events:
	default:
		slog.Warn("event buffer full, dropping batch", slog.Int("batch_size", len(events)))
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// watched returns the watched paths, sorted.
func (w *Watcher) watched() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stop stops the watcher and closes both channels.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	close(w.events)
	close(w.errors)
	return nil
}

// Events returns batches of debounced events, sorted by path.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}
