// Package watch reports external changes to a project directory.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/reqs/logging"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Event lists the project files that changed during one quiet period.
type Event struct {
	Paths []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore skips directories matching patterns, relative to the root.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) { w.ignore = append(w.ignore, patterns...) }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithSelfWriteWindow sets how long after MarkSelfWrite events are dropped.
func WithSelfWriteWindow(d time.Duration) Option {
	return func(w *Watcher) { w.selfWindow = d }
}

// Watcher watches every document directory below a project root and reports
// changes to YAML files after a debounce period.
type Watcher struct {
	watcher    *fsnotify.Watcher
	root       string
	debounce   time.Duration
	selfWindow time.Duration
	ignore     []string
	matcher    *patternmatcher.PatternMatcher
	logger     *logrus.Entry

	mu        sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
	selfUntil time.Time
}

// New creates a Watcher for root. A debounce of zero or less uses 100ms.
func New(root string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	w := &Watcher{
		root:       root,
		debounce:   debounce,
		selfWindow: time.Second,
		pending:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewLogger("watch")
	}

	matcher, err := patternmatcher.New(w.ignore)
	if err != nil {
		return nil, err
	}
	w.matcher = matcher

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.watcher = fw

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it that is not ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.logger.Debugf("Watching directory: %s", path)
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	skip, err := w.matcher.MatchesOrParentMatches(filepath.ToSlash(rel))
	return err == nil && skip
}

// MarkSelfWrite drops events for the self-write window. Call it right
// after the editor saved the project so its own writes do not trigger a
// reload.
func (w *Watcher) MarkSelfWrite() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfUntil = time.Now().Add(w.selfWindow)
	w.pending = make(map[string]struct{})
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Start delivers change events to onChange until ctx is done. It blocks.
// onChange runs on a timer goroutine.
func (w *Watcher) Start(ctx context.Context, onChange func(Event)) {
	defer w.stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			w.handle(event, onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, onChange func(Event)) {
	if w.ignored(event.Name) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.WithError(err).Warnf("Failed to watch new directory %s", event.Name)
			}
			return
		}
	}

	ext := filepath.Ext(event.Name)
	if ext != ".yml" && ext != ".yaml" {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Now().Before(w.selfUntil) {
		w.logger.Debugf("Ignored own write: %s", filepath.Base(event.Name))
		return
	}

	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(onChange) })
}

func (w *Watcher) flush(onChange func(Event)) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	w.logger.Infof("Project changed on disk: %s", strings.Join(relAll(w.root, paths), ", "))
	onChange(Event{Paths: paths})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relAll(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			out[i] = rel
		} else {
			out[i] = p
		}
	}
	return out
}
