//go:build darwin

package watch

import (
	"github.com/grovetools/fsevents/stream"
)

// fseventsBackend adapts the native stream to the portable event model.
type fseventsBackend struct {
	out    chan Event
	handle *stream.Handle
}

func newBackend(roots []string, opts Options) (backend, error) {
	flags := stream.CreateFileEvents | stream.CreateUseCFTypes | stream.CreateNoDefer
	s, handle, err := stream.Create(roots, stream.SinceNow, opts.Latency, flags, stream.WithFlatten())
	if err != nil {
		return nil, err
	}

	b := &fseventsBackend{
		out:    make(chan Event, 256),
		handle: handle,
	}
	go func() {
		defer close(b.out)
		for batch := range s.Batches() {
			for _, ev := range batch {
				b.out <- Event{
					Path:  ev.Path,
					Op:    opFromFlags(ev.Flags),
					Flags: ev.Flags,
					ID:    ev.ID,
				}
			}
		}
	}()
	return b, nil
}

func (b *fseventsBackend) events() <-chan Event {
	return b.out
}

func (b *fseventsBackend) close() {
	b.handle.Abort()
}

// opFromFlags reduces an FSEvents flag set to a portable operation. A
// record can carry several item flags at once, e.g. created+removed for a
// short-lived file; the portable op keeps the union.
func opFromFlags(flags stream.EventFlags) Op {
	var op Op
	if flags.Has(stream.FlagItemCreated) {
		op |= OpCreate
	}
	if flags.Has(stream.FlagItemRemoved) {
		op |= OpRemove
	}
	if flags.Has(stream.FlagItemRenamed) {
		op |= OpRename
	}
	if flags.Has(stream.FlagItemModified) || flags.Has(stream.FlagInodeMetaMod) {
		op |= OpWrite
	}
	if flags.Has(stream.FlagItemChangeOwner) || flags.Has(stream.FlagItemXattrMod) ||
		flags.Has(stream.FlagFinderInfoMod) {
		op |= OpChmod
	}
	return op
}
