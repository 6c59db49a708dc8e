// Package stream bridges the macOS FSEvents notification API into a
// channel-based sequence of decoded events.
//
// Create spawns a dedicated OS thread that owns the native stream object and
// its run loop, and returns an EventStream/Handle pair: the EventStream is
// the consumer side of a bounded channel fed by the native delivery
// callback, and the Handle carries the only way to tear the worker down.
//
// Handle.Abort is the single cancellation path. Discarding a Handle without
// calling Abort leaks the worker thread and the native stream object; there
// is deliberately no finalizer-based cleanup.
package stream

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grovetools/fsevents/errors"
)

// ChannelCapacity is the fixed capacity of the callback-to-consumer channel.
// When the channel is full the delivery callback drops the batch and logs a
// warning instead of blocking the native notification thread.
const ChannelCapacity = 1024

// ErrClosed is returned by Next once the stream has been aborted and all
// buffered events were consumed.
var ErrClosed = errors.New(errors.ErrCodeStreamClosed, "event stream is closed")

// EventStream is the consumer side of a created stream: a bounded,
// cancellable sequence of event batches.
//
// An EventStream is single-consumer. It keeps delivering buffered events
// after Abort and then reports end-of-stream; polling a cancelled stream
// never hangs.
type EventStream struct {
	events  chan []Event
	pending []Event
}

func newEventStream(events chan []Event) *EventStream {
	return &EventStream{events: events}
}

// Batches exposes the raw batch channel. The channel is closed when the
// stream is aborted. Batches preserve native delivery order.
func (s *EventStream) Batches() <-chan []Event {
	return s.events
}

// Next returns the next single event, drawing from the current batch before
// receiving another one. It returns ErrClosed at end-of-stream and the
// context error if ctx is done first. Not safe for concurrent use.
func (s *EventStream) Next(ctx context.Context) (Event, error) {
	for len(s.pending) == 0 {
		select {
		case batch, ok := <-s.events:
			if !ok {
				return Event{}, ErrClosed
			}
			s.pending = append(s.pending, batch...)
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, nil
}

// Collect drains the stream until end-of-stream or ctx is done, returning
// everything received. Mostly useful in tests and short-lived commands.
func (s *EventStream) Collect(ctx context.Context) []Event {
	var all []Event
	for {
		ev, err := s.Next(ctx)
		if err != nil {
			return all
		}
		all = append(all, ev)
	}
}

// WorkerObserver is notified when the run-loop worker thread starts and
// stops. Injected via an option so tests can count live workers without a
// process-wide atomic.
type WorkerObserver interface {
	WorkerStarted()
	WorkerStopped()
}

type options struct {
	flatten   bool
	workerObs WorkerObserver
}

// Option configures stream creation.
type Option func(*options)

// WithFlatten delivers events one at a time (each batch on the channel holds
// a single event) instead of whole native batches.
func WithFlatten() Option {
	return func(o *options) { o.flatten = true }
}

func withWorkerObserver(obs WorkerObserver) Option {
	return func(o *options) { o.workerObs = obs }
}

// validateCreate checks the creation configuration and resolves the watch
// roots to absolute paths. FSEvents reports absolute canonical paths, so
// resolving up front keeps delivered paths comparable to the inputs.
func validateCreate(paths []string, flags CreateFlags) ([]string, error) {
	if flags.Has(CreateUseExtendedData) && !flags.Has(CreateUseCFTypes) {
		return nil, errors.FlagCombination("UseExtendedData requires UseCFTypes")
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPath, "no watch paths given")
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.InvalidPath(p, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errors.InvalidPath(p, err)
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}
