//go:build darwin

package stream

import (
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/grovetools/fsevents/internal/cf"
	"github.com/grovetools/fsevents/logging"
)

// Handle is an owned permission to stop an EventStream and terminate its
// backing run loop.
//
// Discarding a Handle without calling Abort detaches the worker thread and
// the native stream with no way to reclaim them. That leak is part of the
// API contract: Abort is the only cleanup path.
type Handle struct {
	mu      sync.Mutex
	aborted bool
	loop    cf.RunLoop
	done    <-chan struct{}
}

// Abort stops the stream and terminates its backing run loop. It returns
// only once the worker thread has fully unwound and the consumer channel is
// closed. Calling Abort again has no further effect.
//
// Abort blocks the calling goroutine on OS-level waits (the run-loop idle
// signal and the thread join); callers on latency-sensitive paths should
// invoke it from a goroutine they can afford to park.
func (h *Handle) Abort() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.aborted {
		return
	}
	h.aborted = true

	// Stopping the loop while a callback invocation is in flight could tear
	// down the native stream underneath it. Wait for the loop to reach its
	// idle state first: the one-shot observer fires on BeforeWaiting.
	obs, fired := cf.NewBeforeWaitingObserver()
	h.loop.AddObserver(obs)
	if !h.loop.IsWaiting() {
		<-fired
	}
	h.loop.RemoveObserver(obs)
	obs.Release()

	h.loop.Stop()
	<-h.done
	h.loop.Release()
}

// Create builds a native FSEvents stream watching the given paths and
// returns the consumer EventStream together with the Handle that stops it.
//
// since is a past event id to replay from, or SinceNow. latency is the
// coalescing window (zero disables coalescing). The call blocks until the
// spawned worker thread has published its run loop, so the returned Handle
// is immediately able to Abort.
//
// Creation errors (invalid path, UseExtendedData without UseCFTypes) are
// returned synchronously. Everything that goes wrong later — undecodable
// records, a saturated channel — is logged and skipped without ending the
// stream.
func Create(paths []string, since uint64, latency time.Duration, flags CreateFlags, opts ...Option) (*EventStream, *Handle, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resolved, err := validateCreate(paths, flags)
	if err != nil {
		return nil, nil, err
	}

	log := logging.NewLogger("stream")
	events := make(chan []Event, ChannelCapacity)

	ctx := &cf.StreamContext{
		Flags:   uint32(flags),
		Deliver: makeDeliver(events, o.flatten, log),
	}
	token := cf.RegisterStream(ctx)

	native, err := cf.NewEventStream(token, resolved, since, latency, uint32(flags))
	if err != nil {
		cf.UnregisterStream(token)
		return nil, nil, err
	}

	// One-shot rendezvous: the worker publishes its run loop before entering
	// the blocking loop, so Create returns a stoppable Handle.
	loopCh := make(chan cf.RunLoop, 1)
	done := make(chan struct{})

	go func() {
		defer close(loopCh)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if o.workerObs != nil {
			o.workerObs.WorkerStarted()
			defer o.workerObs.WorkerStopped()
		}

		loop := cf.CurrentRunLoop()
		native.Schedule(loop)
		if !native.Start() {
			log.WithField("paths", resolved).Error("native stream refused to start")
		}
		loopCh <- loop

		cf.Run()

		native.Stop()
		native.Invalidate()
		native.Release()
		// The callback cannot fire after Invalidate; the token can go now.
		cf.UnregisterStream(token)
		close(events)
		close(done)
	}()

	loop, ok := <-loopCh
	if !ok {
		// The worker died before publishing its run loop. The native binding
		// layer is in an unrecoverable state; there is nothing sensible to
		// return or clean up.
		panic("fsevents: worker thread terminated before publishing its run loop")
	}

	return newEventStream(events), &Handle{loop: loop, done: done}, nil
}

// DeviceForPath returns the device id of the filesystem holding path, for
// correlating watch roots with mounted volumes.
func DeviceForPath(path string) (int32, error) {
	var stat syscall.Stat_t
	if err := syscall.Lstat(path, &stat); err != nil {
		return 0, err
	}
	return stat.Dev, nil
}
