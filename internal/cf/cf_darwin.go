//go:build darwin

package cf

/*
#cgo LDFLAGS: -framework CoreFoundation -framework CoreServices

#include <stdint.h>
#include <stdlib.h>
#include <CoreServices/CoreServices.h>

// Trampolines into Go. The info pointer of both native contexts carries a
// registry token, never a Go pointer.
extern void fseventsGoStreamCallback(uintptr_t token, size_t numEvents, void *eventPaths, void *eventFlags, void *eventIds);
extern void fseventsGoObserverCallback(uintptr_t token);

static void fseventsStreamTrampoline(
	ConstFSEventStreamRef stream,
	void *info,
	size_t numEvents,
	void *eventPaths,
	const FSEventStreamEventFlags eventFlags[],
	const FSEventStreamEventId eventIds[]
) {
	fseventsGoStreamCallback((uintptr_t)info, numEvents, eventPaths, (void *)eventFlags, (void *)eventIds);
}

static void fseventsObserverTrampoline(CFRunLoopObserverRef observer, CFRunLoopActivity activity, void *info) {
	fseventsGoObserverCallback((uintptr_t)info);
}

static FSEventStreamRef fseventsStreamCreate(
	CFArrayRef paths,
	FSEventStreamEventId since,
	CFTimeInterval latency,
	FSEventStreamCreateFlags flags,
	uintptr_t token
) {
	FSEventStreamContext ctx = {0, (void *)token, NULL, NULL, NULL};
	return FSEventStreamCreate(kCFAllocatorDefault, fseventsStreamTrampoline, &ctx,
		paths, since, latency, flags);
}

// One-shot observer: repeats=false, so Core Foundation invalidates it after
// the first matching activity.
static CFRunLoopObserverRef fseventsObserverCreate(uintptr_t token) {
	CFRunLoopObserverContext ctx = {0, (void *)token, NULL, NULL, NULL};
	return CFRunLoopObserverCreate(kCFAllocatorDefault, kCFRunLoopBeforeWaiting, false, 0,
		fseventsObserverTrampoline, &ctx);
}

static CFStringRef fseventsExtendedDataPathKey() {
	return CFSTR("path");
}

static CFStringRef fseventsExtendedFileIDKey() {
	return CFSTR("fileID");
}
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/grovetools/fsevents/errors"
)

// Creation-flag bits the decoder dispatches on. Values mirror the native
// FSEventStreamCreateFlags definitions (see stream.CreateFlags).
const (
	createUseCFTypes      = 0x00000001
	createFileEvents      = 0x00000010
	createUseExtendedData = 0x00000040
)

// RunLoop is a handle to a Core Foundation run loop.
//
// Correctness precondition: a CFRunLoopRef obtained on one thread may be
// retained, stopped, and observed from another thread. Apple's thread-safety
// documentation guarantees this for CFRef types; this wrapper is the single
// place in the module that relies on it. Only the worker thread may Run the
// loop.
type RunLoop struct {
	ref C.CFRunLoopRef
}

// CurrentRunLoop returns the calling thread's run loop, retained. The caller
// must Release it when the loop is no longer referenced.
func CurrentRunLoop() RunLoop {
	ref := C.CFRunLoopGetCurrent()
	C.CFRetain(C.CFTypeRef(ref))
	return RunLoop{ref: ref}
}

// Run blocks the calling thread inside its run loop until the loop is
// stopped.
func Run() {
	C.CFRunLoopRun()
}

// Stop wakes and terminates the loop's Run call. Safe to call from another
// thread.
func (l RunLoop) Stop() {
	C.CFRunLoopStop(l.ref)
}

// IsWaiting reports whether the loop is idle, waiting for a source to fire.
func (l RunLoop) IsWaiting() bool {
	return C.CFRunLoopIsWaiting(l.ref) != 0
}

// AddObserver schedules the observer in the default run-loop mode.
func (l RunLoop) AddObserver(o Observer) {
	C.CFRunLoopAddObserver(l.ref, o.ref, C.kCFRunLoopDefaultMode)
}

// RemoveObserver removes the observer from the default run-loop mode.
func (l RunLoop) RemoveObserver(o Observer) {
	C.CFRunLoopRemoveObserver(l.ref, o.ref, C.kCFRunLoopDefaultMode)
}

// Release drops the retained reference. Call exactly once, after the worker
// thread has been joined.
func (l RunLoop) Release() {
	C.CFRelease(C.CFTypeRef(l.ref))
}

// Observer is a one-shot run-loop observer created by
// NewBeforeWaitingObserver.
type Observer struct {
	ref   C.CFRunLoopObserverRef
	token uintptr
}

// NewBeforeWaitingObserver creates an observer that fires once when the run
// loop is about to go to sleep, signalling the returned channel. Used by the
// shutdown handshake to wait until the loop has drained any in-flight
// callback.
func NewBeforeWaitingObserver() (Observer, <-chan struct{}) {
	ctx := &observerContext{fired: make(chan struct{}, 1)}
	token := registerObserver(ctx)
	ref := C.fseventsObserverCreate(C.uintptr_t(token))
	return Observer{ref: ref, token: token}, ctx.fired
}

// Release invalidates the observer and removes its registry token.
func (o Observer) Release() {
	C.CFRunLoopObserverInvalidate(o.ref)
	C.CFRelease(C.CFTypeRef(o.ref))
	unregisterObserver(o.token)
}

// EventStream wraps a native FSEvents stream object. It is exclusively owned
// by the worker thread for its entire lifetime.
type EventStream struct {
	ref      C.FSEventStreamRef
	released bool
}

// NewEventStream creates the native stream. The token is handed back to Go
// on every delivery callback. Paths must be absolute and existing; latency
// zero means no coalescing.
func NewEventStream(token uintptr, paths []string, since uint64, latency time.Duration, flags uint32) (*EventStream, error) {
	cfPaths := C.CFArrayCreateMutable(C.kCFAllocatorDefault, C.CFIndex(len(paths)), &C.kCFTypeArrayCallBacks)
	defer C.CFRelease(C.CFTypeRef(cfPaths))

	for _, p := range paths {
		cs := C.CString(p)
		str := C.CFStringCreateWithCString(C.kCFAllocatorDefault, cs, C.kCFStringEncodingUTF8)
		C.free(unsafe.Pointer(cs))
		if str == nil {
			return nil, errors.InvalidPath(p, nil)
		}
		C.CFArrayAppendValue(cfPaths, unsafe.Pointer(str))
		C.CFRelease(C.CFTypeRef(str))
	}

	ref := C.fseventsStreamCreate(
		C.CFArrayRef(cfPaths),
		C.FSEventStreamEventId(since),
		C.CFTimeInterval(latency.Seconds()),
		C.FSEventStreamCreateFlags(flags),
		C.uintptr_t(token),
	)
	if ref == nil {
		return nil, errors.New(errors.ErrCodeStreamCreate, "FSEventStreamCreate returned NULL")
	}
	return &EventStream{ref: ref}, nil
}

// Schedule registers the stream with the given run loop in the default mode.
func (s *EventStream) Schedule(l RunLoop) {
	C.FSEventStreamScheduleWithRunLoop(s.ref, l.ref, C.kCFRunLoopDefaultMode)
}

// Start begins event delivery. Returns false if the native layer refuses.
func (s *EventStream) Start() bool {
	return C.FSEventStreamStart(s.ref) != 0
}

// Stop halts event delivery. The stream may be started again until it is
// invalidated.
func (s *EventStream) Stop() {
	C.FSEventStreamStop(s.ref)
}

// Invalidate unschedules the stream from its run loop. After this returns
// the delivery callback can no longer fire.
func (s *EventStream) Invalidate() {
	C.FSEventStreamInvalidate(s.ref)
}

// FlushSync delivers any buffered events before returning. Diagnostic use
// only; must be called between Start and Stop on the owning thread.
func (s *EventStream) FlushSync() {
	C.FSEventStreamFlushSync(s.ref)
}

// Show prints the native stream description to stderr.
func (s *EventStream) Show() {
	C.FSEventStreamShow(s.ref)
}

// Release frees the native object. Exactly one Release is ever made; extra
// calls are no-ops.
func (s *EventStream) Release() {
	if s.released {
		return
	}
	s.released = true
	C.FSEventStreamRelease(s.ref)
}

var (
	extendedDataPathKey unsafe.Pointer
	extendedFileIDKey   unsafe.Pointer
)

func init() {
	extendedDataPathKey = unsafe.Pointer(C.fseventsExtendedDataPathKey())
	extendedFileIDKey = unsafe.Pointer(C.fseventsExtendedFileIDKey())
}

// dispatchBatch decodes one native delivery into RawEvents and hands them to
// the stream's Deliver function. The payload shape is selected by the
// creation flags carried in the context, never by inspecting the payload.
func dispatchBatch(ctx *StreamContext, num int, paths, flagsPtr, idsPtr unsafe.Pointer) {
	if num == 0 {
		return
	}
	flagsArr := unsafe.Slice((*uint32)(flagsPtr), num)
	idsArr := unsafe.Slice((*uint64)(idsPtr), num)

	batch := make([]RawEvent, 0, num)
	switch {
	case ctx.Flags&createUseCFTypes != 0 && ctx.Flags&createUseExtendedData != 0:
		arr := C.CFArrayRef(paths)
		wantInode := ctx.Flags&createFileEvents != 0
		for i := 0; i < num; i++ {
			dict := C.CFDictionaryRef(C.CFArrayGetValueAtIndex(arr, C.CFIndex(i)))
			raw := RawEvent{
				Path:  cfStringToGo(C.CFStringRef(C.CFDictionaryGetValue(dict, extendedDataPathKey))),
				Flags: flagsArr[i],
				ID:    idsArr[i],
			}
			if wantInode {
				inode, ok := cfNumberToInt64(C.CFNumberRef(C.CFDictionaryGetValue(dict, extendedFileIDKey)))
				if ok {
					raw.Inode = &inode
				} else {
					raw.InodeErr = true
				}
			}
			batch = append(batch, raw)
		}
	case ctx.Flags&createUseCFTypes != 0:
		arr := C.CFArrayRef(paths)
		for i := 0; i < num; i++ {
			str := C.CFStringRef(C.CFArrayGetValueAtIndex(arr, C.CFIndex(i)))
			batch = append(batch, RawEvent{
				Path:  cfStringToGo(str),
				Flags: flagsArr[i],
				ID:    idsArr[i],
			})
		}
	default:
		cPaths := unsafe.Slice((**C.char)(paths), num)
		for i := 0; i < num; i++ {
			batch = append(batch, RawEvent{
				Path:  C.GoString(cPaths[i]),
				Flags: flagsArr[i],
				ID:    idsArr[i],
			})
		}
	}

	ctx.Deliver(batch)
}

func cfStringToGo(ref C.CFStringRef) string {
	if ref == nil {
		return ""
	}
	if ptr := C.CFStringGetCStringPtr(ref, C.kCFStringEncodingUTF8); ptr != nil {
		return C.GoString(ptr)
	}
	length := C.CFStringGetLength(ref)
	max := C.CFStringGetMaximumSizeForEncoding(length, C.kCFStringEncodingUTF8) + 1
	buf := make([]byte, int(max))
	if C.CFStringGetCString(ref, (*C.char)(unsafe.Pointer(&buf[0])), max, C.kCFStringEncodingUTF8) == 0 {
		return ""
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func cfNumberToInt64(ref C.CFNumberRef) (int64, bool) {
	if ref == nil {
		return 0, false
	}
	var out C.int64_t
	if C.CFNumberGetValue(ref, C.kCFNumberSInt64Type, unsafe.Pointer(&out)) == 0 {
		return 0, false
	}
	return int64(out), true
}
