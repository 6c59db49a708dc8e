package stream

import "fmt"

// Event is a single decoded change record.
//
// Inode is only populated when the stream was created with
// CreateUseExtendedData|CreateFileEvents; it is nil otherwise. ID comes from
// the global FSEvents history counter: monotonically increasing, with a
// defined wraparound signalled by FlagIDsWrapped.
type Event struct {
	Path     string
	Inode    *int64
	Flags    EventFlags
	RawFlags uint32
	ID       uint64
}

// String renders the event for diagnostics.
func (e Event) String() string {
	inode := int64(-1)
	if e.Inode != nil {
		inode = *e.Inode
	}
	return fmt.Sprintf("[%d] path: %q(%d), flags: %s (%x)", e.ID, e.Path, inode, e.Flags, e.RawFlags)
}
