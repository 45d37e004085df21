package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
)

func newSnapshot(t *testing.T, ticks int) *simulation.WorldSnapshot {
	t.Helper()
	f, err := flocking.NewFlock(6, flocking.Arena{Width: 200, Height: 100}, flocking.WithLayout(flocking.LayoutGrid))
	require.NoError(t, err)
	for range ticks {
		require.NoError(t, f.Step(context.Background(), 0.05))
	}
	return simulation.NewWorldSnapshot(f)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) stateMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg stateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	snap := newSnapshot(t, 3)
	require.NoError(t, hub.Broadcast(snap))

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readState(t, conn)
		assert.Equal(t, "state", msg.Type)
		require.NotNil(t, msg.Snapshot)
		assert.Equal(t, uint64(3), msg.Snapshot.Tick)
		assert.Equal(t, snap.Agents, msg.Snapshot.Agents)
	}
}

func TestHub_LateViewerGetsLastSnapshot(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	require.NoError(t, hub.Broadcast(newSnapshot(t, 7)))

	conn := dial(t, srv)
	msg := readState(t, conn)
	assert.Equal(t, uint64(7), msg.Snapshot.Tick)
}

func TestHub_DisconnectRemovesViewer(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_Run(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	snapshots := make(chan *simulation.WorldSnapshot, 2)
	done := make(chan struct{})
	go func() {
		hub.Run(context.Background(), snapshots)
		close(done)
	}()

	snapshots <- newSnapshot(t, 1)
	snapshots <- newSnapshot(t, 2)
	assert.Equal(t, uint64(1), readState(t, conn).Snapshot.Tick)
	assert.Equal(t, uint64(2), readState(t, conn).Snapshot.Tick)

	close(snapshots)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	hub.Close()
	assert.Zero(t, hub.Len())
}
