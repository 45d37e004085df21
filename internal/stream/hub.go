// Package stream fans world snapshots out to websocket viewers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/simulation"
)

const writeWait = 2 * time.Second

type stateMessage struct {
	Type       string                    `json:"type"`
	ServerTime int64                     `json:"serverTime"`
	Snapshot   *simulation.WorldSnapshot `json:"snapshot"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub is an http.Handler that upgrades every request to a websocket and then
// pushes each broadcast snapshot to it. Viewers are read-only: anything they
// send is discarded.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	last        []byte

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Run broadcasts snapshots until ctx is done or the channel is closed.
func (h *Hub) Run(ctx context.Context, snapshots <-chan *simulation.WorldSnapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := h.Broadcast(snap); err != nil {
				h.logger.Warn("failed to broadcast snapshot", zap.Uint64("tick", snap.Tick), zap.Error(err))
			}
		}
	}
}

// Broadcast sends snap to every viewer and keeps it for viewers that join later.
func (h *Hub) Broadcast(snap *simulation.WorldSnapshot) error {
	data, err := json.Marshal(stateMessage{Type: "state", ServerTime: time.Now().UnixMilli(), Snapshot: snap})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last = data
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.write(data); err != nil {
			h.logger.Debug("viewer write failed", zap.String("viewer", id), zap.Error(err))
			h.disconnect(id)
		}
	}
	return nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	id := uuid.NewString()
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	h.subscribers[id] = sub
	last := h.last
	h.mu.Unlock()
	h.logger.Info("viewer connected", zap.String("viewer", id), zap.String("remote", r.RemoteAddr))

	if last != nil {
		if err := sub.write(last); err != nil {
			h.disconnect(id)
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.disconnect(id)
			return
		}
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.disconnect(id)
	}
}

func (h *Hub) disconnect(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
		h.logger.Info("viewer disconnected", zap.String("viewer", id))
	}
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
