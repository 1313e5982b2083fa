package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Ko-stant/dungeon-builder/internal/protocol"
	"github.com/Ko-stant/dungeon-builder/internal/web/views"
)

const maxRequestBody = 1 << 16

// Routes wires every endpoint onto a new mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/dungeon", s.handleDungeon)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/rooms/{id}/enter", s.handleEnterRoom)
	mux.HandleFunc("POST /api/rooms/{id}/clear", s.handleClearRoom)
	mux.HandleFunc("POST /api/level/next", s.handleNextLevel)
	mux.HandleFunc("POST /api/restart", s.handleRestart)
	mux.HandleFunc("GET /api/rooms/active", s.handleActiveRooms)
	mux.HandleFunc("POST /api/points", s.handlePoints)
	mux.HandleFunc("POST /api/multiplier", s.handleMultiplier)
	mux.HandleFunc("POST /api/player/damage", s.handleDamage)
	mux.HandleFunc("POST /api/player/destroy", s.action(s.PlayerDestroyed))
	mux.HandleFunc("POST /api/player/fire", s.action(s.FireWeapon))
	mux.HandleFunc("POST /api/player/reload", s.action(s.ReloadWeapon))
	mux.HandleFunc("POST /api/pause", s.action(s.Pause))
	mux.HandleFunc("POST /api/resume", s.action(s.Resume))
	mux.HandleFunc("GET /stream", s.handleStream)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.IndexPage(snap).Render(r.Context(), w); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleDungeon(w http.ResponseWriter, r *http.Request) {
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req protocol.GenerateRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, errBadRequestf(err))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, errBadRequestf(fmt.Errorf("invalid generate request: %w", err)))
			return
		}
	}

	if err := s.Generate(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusCreated)
}

func (s *Server) handleEnterRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.EnterRoom(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleClearRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.ClearRoom(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleNextLevel(w http.ResponseWriter, r *http.Request) {
	if err := s.NextLevel(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.Restart(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

// Default view size for the active rooms query, in grid cells.
const (
	defaultViewWidth  = 24
	defaultViewHeight = 16
)

func (s *Server) handleActiveRooms(w http.ResponseWriter, r *http.Request) {
	width, err := queryInt(r, "width", defaultViewWidth)
	if err != nil {
		writeError(w, err)
		return
	}
	height, err := queryInt(r, "height", defaultViewHeight)
	if err != nil {
		writeError(w, err)
		return
	}
	rooms, err := s.ActiveRooms(width, height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.ActiveRoomsResponse{Rooms: rooms})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var req protocol.PointsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Points <= 0 {
		writeError(w, errBadRequestf(errors.New("points must be positive")))
		return
	}
	if err := s.AddPoints(req.Points); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleMultiplier(w http.ResponseWriter, r *http.Request) {
	var req protocol.MultiplierRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.AdjustMultiplier(req.Increase); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

func (s *Server) handleDamage(w http.ResponseWriter, r *http.Request) {
	var req protocol.DamageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Damage <= 0 {
		writeError(w, errBadRequestf(errors.New("damage must be positive")))
		return
	}
	if err := s.DamagePlayer(req.Damage); err != nil {
		writeError(w, err)
		return
	}
	s.respondWithSnapshot(w, http.StatusOK)
}

// action adapts a bodiless game action into a handler answering with the
// new snapshot.
func (s *Server) action(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			writeError(w, err)
			return
		}
		s.respondWithSnapshot(w, http.StatusOK)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v); err != nil {
		return errBadRequestf(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errBadRequestf(fmt.Errorf("%s must be a positive integer, got %q", key, raw))
	}
	return v, nil
}

func (s *Server) respondWithSnapshot(w http.ResponseWriter, status int) {
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, snap)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes the websocket upgrade through to the real connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func logRequests(logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
