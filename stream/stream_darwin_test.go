//go:build darwin

package stream

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workerCounter counts live run-loop workers, injected via option.
type workerCounter struct {
	running int64
}

func (c *workerCounter) WorkerStarted() { atomic.AddInt64(&c.running, 1) }
func (c *workerCounter) WorkerStopped() { atomic.AddInt64(&c.running, -1) }

func (c *workerCounter) get() int64 { return atomic.LoadInt64(&c.running) }

// Serializes tests that assert on the worker count.
var workerTestMu sync.Mutex

func TestAbortStopsWorker(t *testing.T) {
	workerTestMu.Lock()
	defer workerTestMu.Unlock()

	counter := &workerCounter{}
	s, handle, err := Create([]string{"."}, SinceNow, 0, CreateNone, withWorkerObserver(counter))
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.get())

	done := make(chan struct{})
	go func() {
		handle.Abort()
		close(done)
	}()

	// The stream must reach end-of-stream soon after the abort.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Collect(ctx)
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("abort did not return")
	}
	assert.Equal(t, int64(0), counter.get(), "worker should have unwound")
}

func TestAbortIsIdempotent(t *testing.T) {
	workerTestMu.Lock()
	defer workerTestMu.Unlock()

	counter := &workerCounter{}
	_, handle, err := Create([]string{"."}, SinceNow, 0, CreateNone, withWorkerObserver(counter))
	require.NoError(t, err)

	handle.Abort()
	handle.Abort()
	handle.Abort()
	assert.Equal(t, int64(0), counter.get())
}

func TestCreateRejectsIllegalFlags(t *testing.T) {
	_, _, err := Create([]string{"."}, SinceNow, 0, CreateUseExtendedData)
	require.Error(t, err)
}

func TestReceiveEvents(t *testing.T) {
	cases := []struct {
		name             string
		flags            CreateFlags
		verifyInode      bool
		verifyFileEvents bool
	}{
		{"extended", CreateFileEvents | CreateUseCFTypes | CreateUseExtendedData, true, true},
		{"cftypes-file", CreateFileEvents | CreateUseCFTypes, false, true},
		{"plain-file", CreateFileEvents, false, true},
		{"extended-dir", CreateUseCFTypes | CreateUseExtendedData, false, false},
		{"cftypes-dir", CreateUseCFTypes, false, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			runReceiveEvents(t, tc.flags, tc.verifyInode, tc.verifyFileEvents)
		})
	}
}

func runReceiveEvents(t *testing.T, flags CreateFlags, verifyInode, verifyFileEvents bool) {
	dir := t.TempDir()
	// The FSEvents API reports canonical paths.
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	testFile := filepath.Join(dir, "test_file")

	s, handle, err := Create([]string{dir}, SinceNow, 0, flags|CreateNoDefer, WithFlatten())
	require.NoError(t, err)

	f, err := os.Create(testFile)
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	inode := int64(info.Sys().(*syscall.Stat_t).Ino)
	// Sync so that create and remove are not coalesced into one record.
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	require.NoError(t, os.Remove(testFile))
	syscall.Sync()

	go func() {
		// Give the kernel time to deliver, then shut the stream down.
		time.Sleep(2 * time.Second)
		handle.Abort()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	events := s.Collect(ctx)

	if !verifyFileEvents {
		require.NotEmpty(t, events)
		return
	}

	// A directory creation record may precede the pair.
	require.GreaterOrEqual(t, len(events), 2)
	require.LessOrEqual(t, len(events), 3)

	created := events[len(events)-2]
	assert.Equal(t, testFile, created.Path)
	assert.True(t, created.Flags.Has(FlagItemCreated|FlagItemIsFile),
		"unexpected flags: %s", created.Flags)
	if verifyInode {
		require.NotNil(t, created.Inode)
		assert.Equal(t, inode, *created.Inode)
	} else {
		assert.Nil(t, created.Inode)
	}

	removed := events[len(events)-1]
	assert.Equal(t, testFile, removed.Path)
	assert.True(t, removed.Flags.Has(FlagItemRemoved|FlagItemIsFile),
		"unexpected flags: %s", removed.Flags)
	if verifyInode {
		require.NotNil(t, removed.Inode)
		assert.Equal(t, inode, *removed.Inode)
	}
}

func TestIndependentWatches(t *testing.T) {
	// Streams on disjoint roots must not observe each other's events and
	// must abort independently.
	dirA := t.TempDir()
	dirB := t.TempDir()
	dirA, err := filepath.EvalSymlinks(dirA)
	require.NoError(t, err)
	dirB, err = filepath.EvalSymlinks(dirB)
	require.NoError(t, err)

	sA, hA, err := Create([]string{dirA}, SinceNow, 0,
		CreateFileEvents|CreateUseCFTypes|CreateNoDefer, WithFlatten())
	require.NoError(t, err)
	sB, hB, err := Create([]string{dirB}, SinceNow, 0,
		CreateFileEvents|CreateNoDefer, WithFlatten())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dirA, "only_a"), []byte("a"), 0o644))
	syscall.Sync()
	time.Sleep(2 * time.Second)

	hA.Abort()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	eventsA := sA.Collect(ctx)
	require.NotEmpty(t, eventsA)
	for _, ev := range eventsA {
		assert.Contains(t, ev.Path, dirA)
	}

	// B saw nothing and still aborts cleanly.
	hB.Abort()
	eventsB := sB.Collect(ctx)
	for _, ev := range eventsB {
		assert.NotContains(t, ev.Path, dirA)
	}
}
