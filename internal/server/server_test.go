package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/fsevents/pkg/watch"
	"github.com/grovetools/fsevents/stream"
)

func TestHealthEndpoint(t *testing.T) {
	srv := New(NewBus())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEventsWebsocket(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	srv := New(bus)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The subscription is registered during the upgrade, so publishing
	// right away is safe.
	bus.Publish(watch.Event{
		Path:  "/tmp/project/main.go",
		Op:    watch.OpWrite,
		Flags: stream.FlagItemModified,
		ID:    42,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var payload eventPayload
	require.NoError(t, conn.ReadJSON(&payload))
	assert.Equal(t, "/tmp/project/main.go", payload.Path)
	assert.Equal(t, "WRITE", payload.Op)
	assert.Equal(t, uint64(42), payload.ID)
	assert.Contains(t, payload.Flags, "ITEM_MODIFIED")
	assert.False(t, payload.Timestamp.IsZero())
}

func TestEventsWebsocketClosesWithBus(t *testing.T) {
	bus := NewBus()
	srv := New(bus)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	bus.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
