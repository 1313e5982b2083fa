package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const DefaultWriteTimeout = 3 * time.Second

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

var ErrClientGone = errors.New("client left before its hello was sent")

// client holds broadcasts for a connection that has not had its hello yet.
type client struct {
	ready bool
	queue [][]byte
}

type Hub struct {
	mu           sync.Mutex
	clients      map[Conn]*client
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:      make(map[Conn]*client),
		writeTimeout: DefaultWriteTimeout,
		logger:       logger.With("component", "ws_hub"),
	}
}

// Add registers a client that receives every later broadcast.
func (h *Hub) Add(conn Conn) {
	h.mu.Lock()
	h.clients[conn] = &client{ready: true}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", "clients", n)
}

// AddWithHello registers conn and sends it the message built by hello before
// anything else. Broadcasts made while hello runs are held back and written
// right after it, so the client sees nothing older than its hello first and
// misses nothing newer. On error the client is unregistered.
func (h *Hub) AddWithHello(ctx context.Context, conn Conn, hello func() (any, error)) error {
	h.mu.Lock()
	h.clients[conn] = &client{}
	h.mu.Unlock()

	v, err := hello()
	if err != nil {
		h.Remove(conn)
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.Remove(conn)
		return fmt.Errorf("failed to marshal hello: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[conn]
	if !ok {
		return ErrClientGone
	}
	for _, msg := range append([][]byte{data}, c.queue...) {
		if err := h.write(ctx, conn, msg); err != nil {
			delete(h.clients, conn)
			return err
		}
	}
	c.ready = true
	c.queue = nil
	n := len(h.clients)
	h.logger.Debug("client connected", "clients", n)
	return nil
}

func (h *Hub) write(ctx context.Context, conn Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func (h *Hub) Remove(conn Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", "clients", n)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast writes message to every client. Clients still waiting for their
// hello get it queued instead. Clients whose write fails or times out are
// closed and dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		if !c.ready {
			c.queue = append(c.queue, message)
			continue
		}
		if err := h.write(context.Background(), conn, message); err != nil {
			h.logger.Warn("dropping client", "error", err)
			_ = conn.Close(websocket.StatusNormalClosure, "")
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}
	h.Broadcast(data)
	return nil
}

// Send writes a single JSON message to one client.
func (h *Hub) Send(ctx context.Context, conn Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return h.write(ctx, conn, data)
}
