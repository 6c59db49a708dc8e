package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventFlags(t *testing.T) {
	// The empty set is a valid "no flags" value, not an error.
	flags, ok := ParseEventFlags(0)
	require.True(t, ok)
	assert.Equal(t, FlagNone, flags)

	flags, ok = ParseEventFlags(uint32(FlagItemCreated | FlagItemIsFile))
	require.True(t, ok)
	assert.True(t, flags.Has(FlagItemCreated))
	assert.True(t, flags.Has(FlagItemIsFile))
	assert.False(t, flags.Has(FlagItemRemoved))

	// Highest known bit.
	flags, ok = ParseEventFlags(uint32(FlagItemCloned))
	require.True(t, ok)
	assert.True(t, flags.Has(FlagItemCloned))
}

func TestParseEventFlagsUnknownBits(t *testing.T) {
	for _, raw := range []uint32{
		0x00800000,                             // first undefined bit
		0x80000000,                             // high bit
		uint32(FlagItemCreated) | 0x01000000,   // known + unknown
	} {
		_, ok := ParseEventFlags(raw)
		assert.False(t, ok, "raw pattern %#x must be rejected", raw)
	}
}

func TestEventFlagsBitValues(t *testing.T) {
	// Bit-exact with the native FSEventStreamEventFlags definitions.
	assert.Equal(t, EventFlags(0x00000001), FlagMustScanSubDirs)
	assert.Equal(t, EventFlags(0x00000010), FlagHistoryDone)
	assert.Equal(t, EventFlags(0x00000100), FlagItemCreated)
	assert.Equal(t, EventFlags(0x00000200), FlagItemRemoved)
	assert.Equal(t, EventFlags(0x00010000), FlagItemIsFile)
	assert.Equal(t, EventFlags(0x00020000), FlagItemIsDir)
	assert.Equal(t, EventFlags(0x00080000), FlagOwnEvent)
	assert.Equal(t, EventFlags(0x00400000), FlagItemCloned)
}

func TestEventFlagsString(t *testing.T) {
	assert.Equal(t, "", FlagNone.String())
	assert.Equal(t, "ITEM_CREATED", FlagItemCreated.String())

	// Rendering follows definition order regardless of bit construction order.
	combined := FlagItemIsFile | FlagItemCreated
	assert.Equal(t, "ITEM_CREATED IS_FILE", combined.String())

	all := FlagMustScanSubDirs | FlagItemCloned
	assert.Equal(t, "MUST_SCAN_SUBDIRS ITEM_CLONED", all.String())
}

func TestCreateFlagsBitValues(t *testing.T) {
	assert.Equal(t, CreateFlags(0x00000001), CreateUseCFTypes)
	assert.Equal(t, CreateFlags(0x00000002), CreateNoDefer)
	assert.Equal(t, CreateFlags(0x00000004), CreateWatchRoot)
	assert.Equal(t, CreateFlags(0x00000008), CreateIgnoreSelf)
	assert.Equal(t, CreateFlags(0x00000010), CreateFileEvents)
	assert.Equal(t, CreateFlags(0x00000020), CreateMarkSelf)
	assert.Equal(t, CreateFlags(0x00000040), CreateUseExtendedData)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), SinceNow)
}
