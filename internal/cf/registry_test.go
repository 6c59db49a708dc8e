package cf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRegistry(t *testing.T) {
	ctx := &StreamContext{Flags: 0x11}
	token := RegisterStream(ctx)
	require.NotZero(t, token)

	got, ok := LookupStream(token)
	require.True(t, ok)
	assert.Same(t, ctx, got)

	UnregisterStream(token)
	_, ok = LookupStream(token)
	assert.False(t, ok, "unregistered token should not resolve")

	// Unregistering twice is harmless.
	UnregisterStream(token)
}

func TestRegistryTokensAreUnique(t *testing.T) {
	seen := make(map[uintptr]bool)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				token := RegisterStream(&StreamContext{})
				mu.Lock()
				require.False(t, seen[token], "token reused while registered")
				seen[token] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestObserverRegistry(t *testing.T) {
	ctx := &observerContext{fired: make(chan struct{}, 1)}
	token := registerObserver(ctx)

	got, ok := lookupObserver(token)
	require.True(t, ok)
	assert.Same(t, ctx, got)

	unregisterObserver(token)
	_, ok = lookupObserver(token)
	assert.False(t, ok)
}
