package watch

import (
	"testing"
	"time"

	"github.com/moby/patternmatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/fsevents/errors"
)

type fakeBackend struct {
	ch chan Event
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{ch: make(chan Event, 64)}
}

func (b *fakeBackend) events() <-chan Event { return b.ch }
func (b *fakeBackend) close()               { close(b.ch) }

func collectEvents(t *testing.T, w *Watcher, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatalf("events channel closed after %d of %d events", len(out), n)
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestWatcherForwardsEvents(t *testing.T) {
	b := newFakeBackend()
	w := newWatcher([]string{"/project"}, b, nil, 0)
	defer w.Close()

	b.ch <- Event{Path: "/project/a.go", Op: OpWrite}
	b.ch <- Event{Path: "/project/b.go", Op: OpCreate}

	events := collectEvents(t, w, 2)
	assert.Equal(t, "/project/a.go", events[0].Path)
	assert.Equal(t, OpWrite, events[0].Op)
	assert.Equal(t, "/project/b.go", events[1].Path)
	assert.Equal(t, OpCreate, events[1].Op)
}

func TestWatcherDebounce(t *testing.T) {
	b := newFakeBackend()
	w := newWatcher([]string{"/project"}, b, nil, time.Second)
	defer w.Close()

	for i := 0; i < 5; i++ {
		b.ch <- Event{Path: "/project/a.go", Op: OpWrite}
	}
	b.ch <- Event{Path: "/project/b.go", Op: OpWrite}

	events := collectEvents(t, w, 2)
	assert.Equal(t, "/project/a.go", events[0].Path)
	assert.Equal(t, "/project/b.go", events[1].Path)

	select {
	case ev := <-w.Events():
		t.Fatalf("expected repeats to be debounced, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	matcher, err := patternmatcher.New([]string{"*.log", "vendor/**"})
	require.NoError(t, err)

	b := newFakeBackend()
	w := newWatcher([]string{"/project"}, b, matcher, 0)
	defer w.Close()

	b.ch <- Event{Path: "/project/debug.log", Op: OpWrite}
	b.ch <- Event{Path: "/project/vendor/lib/a.go", Op: OpWrite}
	b.ch <- Event{Path: "/project/main.go", Op: OpWrite}

	events := collectEvents(t, w, 1)
	assert.Equal(t, "/project/main.go", events[0].Path)
}

func TestWatcherClose(t *testing.T) {
	b := newFakeBackend()
	w := newWatcher([]string{"/project"}, b, nil, 0)

	w.Close()
	w.Close()

	for range w.Events() {
	}
}

func TestNewRejectsEmptyPaths(t *testing.T) {
	_, err := New(nil, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestNewRejectsBadIgnorePattern(t *testing.T) {
	_, err := New([]string{t.TempDir()}, Options{Ignore: []string{"!"}})
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "CREATE|WRITE", (OpCreate | OpWrite).String())
	assert.Equal(t, "REMOVE|RENAME|CHMOD", (OpRemove | OpRename | OpChmod).String())
	assert.Equal(t, "UNKNOWN", Op(0).String())
}
