//go:build !darwin

package stream

import (
	"runtime"
	"time"

	"github.com/grovetools/fsevents/errors"
)

// Handle is an owned permission to stop an EventStream. On platforms
// without the native FSEvents backend it is never issued; see Create.
type Handle struct{}

// Abort is a no-op on platforms without the native backend.
func (h *Handle) Abort() {}

// Create is unavailable off macOS: the FSEvents API is Darwin-only. Use
// pkg/watch for a portable watcher that falls back to fsnotify.
func Create(paths []string, since uint64, latency time.Duration, flags CreateFlags, opts ...Option) (*EventStream, *Handle, error) {
	return nil, nil, errors.WatchUnsupported(runtime.GOOS)
}
