package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	fail   bool
	got    [][]byte
	closed bool
}

func (c *fakeConn) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.got = append(c.got, append([]byte(nil), p...))
	return nil
}

func (c *fakeConn) Close(websocket.StatusCode, string) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func quietHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_BroadcastDropsDeadClients(t *testing.T) {
	h := quietHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	h.Add(good)
	h.Add(bad)
	require.Equal(t, 2, h.Count())

	require.NoError(t, h.BroadcastJSON(map[string]int{"seq": 1}))

	assert.Equal(t, 1, h.Count())
	assert.True(t, bad.closed)
	require.Len(t, good.got, 1)
	assert.JSONEq(t, `{"seq":1}`, string(good.got[0]))

	h.Remove(good)
	assert.Zero(t, h.Count())
	assert.Error(t, h.BroadcastJSON(func() {}), "functions cannot be marshalled")
}

func TestHub_RealConnection(t *testing.T) {
	h := quietHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		h.Add(conn)
		defer h.Remove(conn)
		_ = h.Send(r.Context(), conn, map[string]string{"type": "hello"})
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, _, err := websocket.Dial(ctx, srv.URL, nil)
	require.NoError(t, err)
	defer client.CloseNow()

	_, data, err := client.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hello"}`, string(data))

	h.Broadcast([]byte(`{"type":"patch"}`))
	_, data, err = client.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"patch"}`, string(data))
}

func TestHub_AddWithHelloHoldsBroadcastsUntilHello(t *testing.T) {
	h := quietHub()
	old := &fakeConn{}
	h.Add(old)
	joining := &fakeConn{}

	err := h.AddWithHello(context.Background(), joining, func() (any, error) {
		// a broadcast racing with the snapshot
		h.Broadcast([]byte(`{"type":"patch","seq":1}`))
		return map[string]any{"type": "hello", "seq": 0}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Count())

	require.Len(t, joining.got, 2)
	assert.JSONEq(t, `{"type":"hello","seq":0}`, string(joining.got[0]))
	assert.JSONEq(t, `{"type":"patch","seq":1}`, string(joining.got[1]))
	require.Len(t, old.got, 1, "ready clients get broadcasts straight away")

	h.Broadcast([]byte(`{"type":"patch","seq":2}`))
	require.Len(t, joining.got, 3)
	assert.JSONEq(t, `{"type":"patch","seq":2}`, string(joining.got[2]))
}

func TestHub_AddWithHelloFailures(t *testing.T) {
	h := quietHub()

	conn := &fakeConn{}
	err := h.AddWithHello(context.Background(), conn, func() (any, error) {
		return nil, errors.New("no dungeon")
	})
	assert.EqualError(t, err, "no dungeon")
	assert.Zero(t, h.Count())
	assert.Empty(t, conn.got)

	broken := &fakeConn{fail: true}
	err = h.AddWithHello(context.Background(), broken, func() (any, error) {
		return "hello", nil
	})
	assert.Error(t, err)
	assert.Zero(t, h.Count())

	gone := &fakeConn{}
	err = h.AddWithHello(context.Background(), gone, func() (any, error) {
		h.Remove(gone)
		return "hello", nil
	})
	assert.ErrorIs(t, err, ErrClientGone)
	assert.Empty(t, gone.got)
}
