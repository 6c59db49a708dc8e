//go:build darwin

package cf

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/grovetools/fsevents/logging"
)

var callbackLog = logging.NewLogger("cf")

// fseventsGoStreamCallback runs on the worker thread inside the native
// delivery callback. A panic escaping into native code is undefined
// behavior, so it is caught and logged here; the invocation then delivers
// nothing.
//
//export fseventsGoStreamCallback
func fseventsGoStreamCallback(token C.uintptr_t, numEvents C.size_t, eventPaths, eventFlags, eventIds unsafe.Pointer) {
	defer func() {
		if r := recover(); r != nil {
			callbackLog.WithField("panic", r).Error("panic in stream callback")
		}
	}()

	ctx, ok := LookupStream(uintptr(token))
	if !ok {
		callbackLog.WithField("token", uintptr(token)).Warn("stream callback for unknown token")
		return
	}
	callbackLog.WithField("events", int(numEvents)).Debug("received native batch")
	dispatchBatch(ctx, int(numEvents), eventPaths, eventFlags, eventIds)
}

//export fseventsGoObserverCallback
func fseventsGoObserverCallback(token C.uintptr_t) {
	defer func() {
		if r := recover(); r != nil {
			callbackLog.WithField("panic", r).Error("panic in observer callback")
		}
	}()

	ctx, ok := lookupObserver(uintptr(token))
	if !ok {
		return
	}
	select {
	case ctx.fired <- struct{}{}:
	default:
	}
}
