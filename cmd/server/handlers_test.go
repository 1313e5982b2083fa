package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/events"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/logging"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

// MockBroadcaster records broadcast events
type MockBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (m *MockBroadcaster) BroadcastEvent(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev.Type())
	m.mu.Unlock()
}

func (m *MockBroadcaster) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	lvl, err := level.DevLevel().WithGraph("linear")
	require.NoError(t, err)
	return NewServer([]*level.DungeonLevel{lvl}, dungeon.DefaultSettings(), logging.Discard())
}

func seed(v int64) *int64 { return &v }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) protocol.DungeonSnapshot {
	t.Helper()
	var snap protocol.DungeonSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap), rec.Body.String())
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestHandlers_NoDungeonYet(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Routes(), http.MethodGet, "/api/dungeon", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NO_DUNGEON", decodeError(t, rec).Code)
}

func TestHandlers_GenerateAndQuery(t *testing.T) {
	s := newTestServer(t)
	mock := &MockBroadcaster{}
	s.broadcaster = mock
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/generate", `{"seed": 5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, int64(5), snap.Seed)
	assert.Equal(t, "linear", snap.Graph)
	assert.Len(t, snap.Rooms, 7)
	require.NotNil(t, snap.Game)
	assert.Equal(t, "playingLevel", snap.Game.State)
	assert.Equal(t, "entrance", snap.Game.CurrentRoom)
	assert.Contains(t, mock.Events(), "dungeonGenerated")

	rec = do(t, h, http.MethodGet, "/api/dungeon", "")
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeSnapshot(t, rec)
	assert.Equal(t, snap.ASCII, again.ASCII)
	assert.Equal(t, uint64(0), again.LastSequence, "mock broadcaster issues no sequence numbers")

	rec = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Cellars")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandlers_GenerateErrors(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/generate", `{"graph": "spiral"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_GRAPH", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/generate", `{seed`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/generate", "")
	assert.Equal(t, http.StatusCreated, rec.Code, "empty body picks a fresh seed")
}

func TestHandlers_RoomActions(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(3)}))
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/rooms/boss/enter", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ROOM_LOCKED", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/rooms/vault/enter", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/rooms/small/clear", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ROOM_NOT_ENTERED", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/rooms/boss/clear", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "boss room stays locked until the boss stage")

	rec = do(t, h, http.MethodPost, "/api/rooms/small/enter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "engagingEnemies", decodeSnapshot(t, rec).Game.State)

	rec = do(t, h, http.MethodPost, "/api/rooms/medium/enter", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/rooms/small/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "playingLevel", snap.Game.State)
	for _, r := range snap.Rooms {
		if r.ID == "small" {
			assert.True(t, r.Cleared)
			assert.True(t, r.Visited)
		}
	}

	rec = do(t, h, http.MethodPost, "/api/level/next", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/restart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playingLevel", decodeSnapshot(t, rec).Game.State)
}

func TestStream_HelloThenPatches(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(8)}))
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, ts.URL+"/stream", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() map[string]json.RawMessage {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	hello := read()
	assert.JSONEq(t, `"hello"`, string(hello["type"]))
	var payload protocol.Hello
	require.NoError(t, json.Unmarshal(hello["payload"], &payload))
	assert.Equal(t, int64(8), payload.Snapshot.Seed)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"enterRoom","payload":{"roomId":"c1"}}`)))
	patch := read()
	assert.JSONEq(t, `"roomChanged"`, string(patch["type"]))
	assert.JSONEq(t, `{"roomId":"c1","previousRoomId":"entrance"}`, string(patch["payload"]))

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"teleport"}`)))
	errMsg := read()
	assert.JSONEq(t, `"error"`, string(errMsg["type"]))
}

func TestHandlers_PlayerActions(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(3)}))
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/points", `{"points": 5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), decodeSnapshot(t, rec).Game.Score)

	rec = do(t, h, http.MethodPost, "/api/multiplier", `{"increase": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeSnapshot(t, rec).Game.Multiplier)

	rec = do(t, h, http.MethodPost, "/api/points", `{"points": 5}`)
	assert.Equal(t, int64(15), decodeSnapshot(t, rec).Game.Score)

	rec = do(t, h, http.MethodPost, "/api/points", `{"points": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/player/damage", `{"damage"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/player/damage", `{"damage": 30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	game := decodeSnapshot(t, rec).Game
	assert.Equal(t, 70, game.Health)
	assert.InDelta(t, 0.7, game.HealthPct, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/player/fire", "")
	require.Equal(t, http.StatusOK, rec.Code)
	weapon := decodeSnapshot(t, rec).Game.Weapon
	assert.Equal(t, 11, weapon.ClipRemaining)
	assert.Equal(t, 95, weapon.RemainingAmmo)

	rec = do(t, h, http.MethodPost, "/api/player/fire", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "WEAPON_NOT_READY", decodeError(t, rec).Code, "no tick has run the cooldown down")

	rec = do(t, h, http.MethodPost, "/api/player/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeSnapshot(t, rec).Game.Weapon.Reloading)

	rec = do(t, h, http.MethodPost, "/api/pause", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gamePaused", decodeSnapshot(t, rec).Game.State)

	rec = do(t, h, http.MethodPost, "/api/player/fire", "")
	assert.Equal(t, "INVALID_STATE", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playingLevel", decodeSnapshot(t, rec).Game.State)

	rec = do(t, h, http.MethodPost, "/api/player/destroy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gameLost", decodeSnapshot(t, rec).Game.State)
}

func TestHandlers_ActiveRooms(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := do(t, h, http.MethodGet, "/api/rooms/active", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(3)}))

	var resp protocol.ActiveRoomsResponse
	rec = do(t, h, http.MethodGet, "/api/rooms/active?width=1&height=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"entrance"}, resp.Rooms)

	rec = do(t, h, http.MethodGet, "/api/rooms/active?width=1000&height=1000", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Rooms, 7)

	rec = do(t, h, http.MethodGet, "/api/rooms/active?width=wide", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_SnapshotCarriesGameDetail(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(3)}))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Game)
	assert.Equal(t, 1, snap.Game.Level)
	assert.Equal(t, "pistol", snap.Game.Weapon.Name)
	assert.Equal(t, []string{"locked"}, snap.Game.Doors["boss"])

	for _, r := range snap.Rooms {
		if r.ID == "entrance" {
			assert.True(t, r.Bounds.Contains(snap.Game.Position), "player starts inside the entrance")
		}
	}
}

// Clients connecting while events are being published must always see
// their hello first.
func TestStream_HelloFirstUnderLoad(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Generate(context.Background(), protocol.GenerateRequest{Seed: seed(8)}))
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = s.AddPoints(1)
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()

	for i := 0; i < 20; i++ {
		conn, _, err := websocket.Dial(ctx, ts.URL+"/stream", nil)
		require.NoError(t, err)

		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var first protocol.PatchEnvelope
		require.NoError(t, json.Unmarshal(data, &first))
		assert.Equal(t, protocol.TypeHello, first.Type, "client %d", i)

		_, data, err = conn.Read(ctx)
		require.NoError(t, err)
		var next protocol.PatchEnvelope
		require.NoError(t, json.Unmarshal(data, &next))
		assert.Contains(t, []string{"pointsScored", "scoreChanged"}, next.Type, "client %d", i)

		conn.CloseNow()
	}

	close(done)
	wg.Wait()
}
