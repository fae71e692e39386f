// Package watch monitors a directory and re-runs parsing or extraction when
// files change. Events are debounced per path so editors and agents that
// write in bursts trigger one callback per save.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory for file writes and invokes onChange with the
// changed path after the debounce window settles. Only paths accepted by the
// match predicate produce callbacks.
type Watcher struct {
	dir      string
	match    func(path string) bool
	onChange func(path string)
	watcher  *fsnotify.Watcher
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	running  bool
	pending  map[string]*time.Timer
	debounce time.Duration
}

// SessionMatcher accepts session transcript files.
func SessionMatcher() func(path string) bool {
	return func(path string) bool {
		return strings.HasSuffix(filepath.Base(path), ".jsonl")
	}
}

// DocMatcher accepts markdown files whose names start with one of the given
// document prefixes.
func DocMatcher(docPrefixes []string) func(path string) bool {
	return func(path string) bool {
		name := filepath.Base(path)
		if !strings.HasSuffix(name, ".md") {
			return false
		}
		for _, prefix := range docPrefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	}
}

// New creates a Watcher over dir.
func New(dir string, match func(path string) bool, onChange func(path string), log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:      dir,
		match:    match,
		onChange: onChange,
		watcher:  fsw,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]*time.Timer),
		debounce: defaultDebounce,
	}, nil
}

// Start begins watching. Safe to call more than once.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.log.Info().Str("dir", w.dir).Msg("watching for changes")
	go w.watchLoop()
	return nil
}

// Stop stops the watcher and cancels pending callbacks.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false

	for _, timer := range w.pending {
		timer.Stop()
	}
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.match(event.Name) {
				continue
			}
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// schedule arms or resets the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		running := w.running
		w.mu.Unlock()

		if !running {
			return
		}
		w.log.Debug().Str("path", path).Msg("file changed")
		w.onChange(path)
	})
}
