package stream

import "strings"

// EventFlags is a bitset over the known FSEvents event flags attached to a
// single change record. The bit values are bit-exact with the native
// FSEventStreamEventFlags definitions and must not be renumbered.
type EventFlags uint32

const (
	FlagNone            EventFlags = 0x00000000
	FlagMustScanSubDirs EventFlags = 0x00000001
	FlagUserDropped     EventFlags = 0x00000002
	FlagKernelDropped   EventFlags = 0x00000004
	FlagIDsWrapped      EventFlags = 0x00000008
	FlagHistoryDone     EventFlags = 0x00000010
	FlagRootChanged     EventFlags = 0x00000020
	FlagMount           EventFlags = 0x00000040
	FlagUnmount         EventFlags = 0x00000080
	FlagItemCreated     EventFlags = 0x00000100
	FlagItemRemoved     EventFlags = 0x00000200
	FlagInodeMetaMod    EventFlags = 0x00000400
	FlagItemRenamed     EventFlags = 0x00000800
	FlagItemModified    EventFlags = 0x00001000
	FlagFinderInfoMod   EventFlags = 0x00002000
	FlagItemChangeOwner EventFlags = 0x00004000
	FlagItemXattrMod    EventFlags = 0x00008000
	FlagItemIsFile      EventFlags = 0x00010000
	FlagItemIsDir       EventFlags = 0x00020000
	FlagItemIsSymlink   EventFlags = 0x00040000
	FlagOwnEvent        EventFlags = 0x00080000
	FlagItemIsHardlink  EventFlags = 0x00100000
	FlagItemIsLastHardlink EventFlags = 0x00200000
	FlagItemCloned      EventFlags = 0x00400000
)

// eventFlagNames lists every known flag in rendering order. String output
// follows this order so diagnostics are deterministic.
var eventFlagNames = []struct {
	flag EventFlags
	name string
}{
	{FlagMustScanSubDirs, "MUST_SCAN_SUBDIRS"},
	{FlagUserDropped, "USER_DROPPED"},
	{FlagKernelDropped, "KERNEL_DROPPED"},
	{FlagIDsWrapped, "IDS_WRAPPED"},
	{FlagHistoryDone, "HISTORY_DONE"},
	{FlagRootChanged, "ROOT_CHANGED"},
	{FlagMount, "MOUNT"},
	{FlagUnmount, "UNMOUNT"},
	{FlagItemCreated, "ITEM_CREATED"},
	{FlagItemRemoved, "ITEM_REMOVED"},
	{FlagInodeMetaMod, "INODE_META_MOD"},
	{FlagItemRenamed, "ITEM_RENAMED"},
	{FlagItemModified, "ITEM_MODIFIED"},
	{FlagFinderInfoMod, "FINDER_INFO_MOD"},
	{FlagItemChangeOwner, "ITEM_CHANGE_OWNER"},
	{FlagItemXattrMod, "ITEM_XATTR_MOD"},
	{FlagItemIsFile, "IS_FILE"},
	{FlagItemIsDir, "IS_DIR"},
	{FlagItemIsSymlink, "IS_SYMLINK"},
	{FlagOwnEvent, "OWN_EVENT"},
	{FlagItemIsHardlink, "IS_HARDLINK"},
	{FlagItemIsLastHardlink, "IS_LAST_HARDLINK"},
	{FlagItemCloned, "ITEM_CLONED"},
}

// knownEventFlags is the union of all defined event flag bits.
var knownEventFlags = func() EventFlags {
	var all EventFlags
	for _, f := range eventFlagNames {
		all |= f.flag
	}
	return all
}()

// ParseEventFlags constructs an EventFlags value from a raw 32-bit pattern
// delivered by the native layer. It reports ok=false when the pattern
// contains bits outside the known set; callers decide whether that is fatal.
// The empty set is valid and means "no flags".
func ParseEventFlags(raw uint32) (EventFlags, bool) {
	flags := EventFlags(raw)
	if flags&^knownEventFlags != 0 {
		return 0, false
	}
	return flags, true
}

// Has reports whether every bit of other is set.
func (f EventFlags) Has(other EventFlags) bool {
	return f&other == other
}

// String renders the set flags as space-separated names, in a fixed order.
// The empty set renders as an empty string.
func (f EventFlags) String() string {
	var names []string
	for _, entry := range eventFlagNames {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, " ")
}

// EventFlagList returns every defined event flag bit in display order.
func EventFlagList() []EventFlags {
	out := make([]EventFlags, len(eventFlagNames))
	for i, entry := range eventFlagNames {
		out[i] = entry.flag
	}
	return out
}

// CreateFlags selects how the native stream is created and which payload
// shape the delivery callback receives. Bit values match the native
// FSEventStreamCreateFlags definitions.
type CreateFlags uint32

const (
	CreateNone CreateFlags = 0x00000000

	// CreateUseCFTypes delivers rich string/dictionary objects to the
	// callback instead of raw C path strings.
	CreateUseCFTypes CreateFlags = 0x00000001

	// CreateNoDefer delivers the first change in a latency window
	// immediately instead of at the end of the window.
	CreateNoDefer CreateFlags = 0x00000002

	// CreateWatchRoot also reports changes to the watch roots themselves.
	CreateWatchRoot CreateFlags = 0x00000004

	// CreateIgnoreSelf suppresses events generated by this process.
	CreateIgnoreSelf CreateFlags = 0x00000008

	// CreateFileEvents requests file-level granularity instead of
	// directory-level.
	CreateFileEvents CreateFlags = 0x00000010

	// CreateMarkSelf marks events generated by this process with OWN_EVENT.
	CreateMarkSelf CreateFlags = 0x00000020

	// CreateUseExtendedData delivers per-item dictionaries carrying the path
	// and, with CreateFileEvents, the item's inode. Requires
	// CreateUseCFTypes; Create rejects the combination otherwise.
	CreateUseExtendedData CreateFlags = 0x00000040
)

// Has reports whether every bit of other is set.
func (f CreateFlags) Has(other CreateFlags) bool {
	return f&other == other
}

// SinceNow is the sentinel event id meaning "only changes after now".
const SinceNow uint64 = 0xFFFFFFFFFFFFFFFF
