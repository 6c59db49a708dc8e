// Package cf wraps the Core Foundation run loop and FSEvents stream objects
// used by the stream package.
//
// Native callbacks never receive a Go pointer: every context registered with
// the native layer is an index token into the registry below, and the token
// is removed explicitly after FSEventStreamInvalidate, when the callback can
// no longer fire. Release of each native object happens exactly once.
package cf

import "sync"

// RawEvent is one change record as decoded from the native callback
// payload, before flag validation.
type RawEvent struct {
	Path string

	// Inode is set only when the stream was created with extended data and
	// file-level granularity. InodeErr records that the native numeric
	// object could not be reduced to an int64; such records are dropped by
	// the consumer.
	Inode    *int64
	InodeErr bool

	Flags uint32
	ID    uint64
}

// StreamContext carries everything the delivery callback needs: the
// creation flags that select the payload decode shape, and the consumer's
// delivery function. The shape is fixed at creation time and never
// re-derived from the payload itself.
type StreamContext struct {
	Flags   uint32
	Deliver func(batch []RawEvent)
}

// registry is a token-indexed arena of callback contexts.
type registry struct {
	mu     sync.RWMutex
	next   uintptr
	values map[uintptr]interface{}
}

func newRegistry() *registry {
	return &registry{values: make(map[uintptr]interface{})}
}

func (r *registry) register(v interface{}) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.values[r.next] = v
	return r.next
}

func (r *registry) lookup(token uintptr) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[token]
	return v, ok
}

func (r *registry) unregister(token uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, token)
}

var (
	streams   = newRegistry()
	observers = newRegistry()
)

// RegisterStream adds a stream context to the arena and returns its token.
func RegisterStream(ctx *StreamContext) uintptr {
	return streams.register(ctx)
}

// LookupStream resolves a token delivered through the native info pointer.
func LookupStream(token uintptr) (*StreamContext, bool) {
	v, ok := streams.lookup(token)
	if !ok {
		return nil, false
	}
	return v.(*StreamContext), true
}

// UnregisterStream removes a stream context. Call only after the native
// stream has been invalidated.
func UnregisterStream(token uintptr) {
	streams.unregister(token)
}

// observerContext forwards a run-loop activity to a waiting goroutine.
// The channel is buffered so the callback never blocks the run loop.
type observerContext struct {
	fired chan struct{}
}

func registerObserver(ctx *observerContext) uintptr {
	return observers.register(ctx)
}

func lookupObserver(token uintptr) (*observerContext, bool) {
	v, ok := observers.lookup(token)
	if !ok {
		return nil, false
	}
	return v.(*observerContext), true
}

func unregisterObserver(token uintptr) {
	observers.unregister(token)
}
