// Package watch re-runs an action whenever a single file changes on disk. It is used to
// keep generated UI source patched while the code generator rewrites it.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/earshooks/internal/logfields"
)

// DefaultDebounce coalesces the burst of events a generator produces while writing.
const DefaultDebounce = 500 * time.Millisecond

// Action is invoked after the watched file settles.
type Action func(ctx context.Context) error

// FileWatcher monitors one file and triggers a debounced Action.
type FileWatcher struct {
	path     string
	action   Action
	watcher  *fsnotify.Watcher
	clock    clockwork.Clock
	debounce time.Duration

	mu        sync.Mutex
	runMu     sync.Mutex
	stopChan  chan struct{}
	stopOnce  sync.Once
	trigger   chan struct{}
	loopsDone sync.WaitGroup
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period before the action runs.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// WithClock injects the clock driving the debounce timer.
func WithClock(c clockwork.Clock) Option {
	return func(fw *FileWatcher) {
		if c != nil {
			fw.clock = c
		}
	}
}

// NewFileWatcher creates a watcher for path.
func NewFileWatcher(path string, action Action, opts ...Option) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}

	fw := &FileWatcher{
		path:     absPath,
		action:   action,
		watcher:  watcher,
		clock:    clockwork.NewRealClock(),
		debounce: DefaultDebounce,
		stopChan: make(chan struct{}),
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Start begins monitoring. The directory is watched rather than the file, since
// generators usually replace files instead of writing them in place.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	slog.Info("Watching file for changes", logfields.Path(fw.path))

	fw.loopsDone.Add(2)
	go fw.watchLoop(ctx)
	go fw.debounceLoop(ctx)
	return nil
}

// Run starts the watcher and blocks until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context) error {
	if err := fw.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	fw.Stop()
	return nil
}

// Stop ends monitoring and waits for the event loops to exit.
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		if err := fw.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
		fw.loopsDone.Wait()
		slog.Info("Stopped file watcher", logfields.Path(fw.path))
	})
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	defer fw.loopsDone.Done()
	name := filepath.Base(fw.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
				slog.Debug("Watched file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				fw.triggerRun()
			case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
				slog.Debug("Watched file moved away", logfields.Path(event.Name))
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (fw *FileWatcher) debounceLoop(ctx context.Context) {
	defer fw.loopsDone.Done()
	var timer clockwork.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fw.trigger:
			if timer != nil {
				timer.Stop()
			}
			timer = fw.clock.AfterFunc(fw.debounce, func() { fw.runAction(ctx) })
		}
	}
}

func (fw *FileWatcher) triggerRun() {
	select {
	case fw.trigger <- struct{}{}:
	default:
	}
}

// runAction serialises action invocations; a run that starts while another is in
// progress waits for it.
func (fw *FileWatcher) runAction(ctx context.Context) {
	fw.runMu.Lock()
	defer fw.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if err := fw.action(ctx); err != nil {
		slog.Error("Watch action failed", logfields.Path(fw.path), logfields.Error(err))
	}
}
