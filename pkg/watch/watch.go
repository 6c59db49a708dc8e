// Package watch provides a portable, debounced, recursive filesystem
// watcher on top of the fsevents stream on macOS and fsnotify everywhere
// else. It trades the raw flag surface of the stream package for a small
// create/write/remove/rename/chmod event model.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/fsevents/errors"
	"github.com/grovetools/fsevents/logging"
	"github.com/grovetools/fsevents/stream"
)

// Op classifies a change.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String renders the operation name.
func (op Op) String() string {
	var names []string
	for _, entry := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op&entry.op != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Event is a single portable change notification. Flags and ID carry the
// native record when the FSEvents backend produced the event; they are zero
// under the fsnotify fallback.
type Event struct {
	Path  string
	Op    Op
	Flags stream.EventFlags
	ID    uint64
}

// Options tunes a Watcher.
type Options struct {
	// Debounce suppresses repeat events for the same path inside the
	// window. Zero disables debouncing.
	Debounce time.Duration

	// Latency is handed to the native stream on macOS; ignored elsewhere.
	Latency time.Duration

	// Ignore holds .gitignore-style patterns; matching paths are dropped.
	Ignore []string
}

// backend is the per-platform event source behind a Watcher.
type backend interface {
	events() <-chan Event
	close()
}

// Watcher delivers filtered, debounced events for a set of watch roots.
// Close it when done; the Events channel is closed after shutdown.
type Watcher struct {
	roots   []string
	out     chan Event
	backend backend
	matcher *patternmatcher.PatternMatcher
	log     *logrus.Entry

	closeOnce sync.Once
	done      chan struct{}
}

// New starts watching the given roots.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPath, "no watch paths given")
	}

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.InvalidPath(p, err)
		}
		roots = append(roots, abs)
	}

	var matcher *patternmatcher.PatternMatcher
	if len(opts.Ignore) > 0 {
		m, err := patternmatcher.New(opts.Ignore)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid ignore pattern")
		}
		matcher = m
	}

	b, err := newBackend(roots, opts)
	if err != nil {
		return nil, err
	}
	return newWatcher(roots, b, matcher, opts.Debounce), nil
}

func newWatcher(roots []string, b backend, matcher *patternmatcher.PatternMatcher, debounce time.Duration) *Watcher {
	w := &Watcher{
		roots:   roots,
		out:     make(chan Event, 256),
		backend: b,
		matcher: matcher,
		log:     logging.NewLogger("watcher"),
		done:    make(chan struct{}),
	}
	go w.pump(debounce)
	return w
}

// Events returns the delivery channel. It is closed once Close has been
// called and buffered events were drained.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Close stops the watcher. Idempotent; returns once the backend has shut
// down.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.backend.close()
		<-w.done
	})
}

// pump filters, debounces, and forwards backend events until the backend
// channel closes.
func (w *Watcher) pump(debounce time.Duration) {
	defer close(w.done)
	defer close(w.out)

	lastSeen := make(map[string]time.Time)
	for ev := range w.backend.events() {
		if w.ignored(ev.Path) {
			continue
		}
		if debounce > 0 {
			now := time.Now()
			if last, ok := lastSeen[ev.Path]; ok && now.Sub(last) < debounce {
				continue
			}
			lastSeen[ev.Path] = now
		}
		select {
		case w.out <- ev:
		default:
			w.log.WithField("path", ev.Path).Warn("watcher channel full, dropping event")
		}
	}
}

// ignored reports whether the path matches an ignore pattern, evaluated
// relative to the closest watch root.
func (w *Watcher) ignored(path string) bool {
	if w.matcher == nil {
		return false
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		matched, err := w.matcher.MatchesOrParentMatches(rel)
		if err != nil {
			w.log.WithError(err).WithField("path", rel).Warn("ignore match failed")
			return false
		}
		if matched {
			return true
		}
	}
	return false
}
