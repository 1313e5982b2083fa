package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/events"
	"github.com/Ko-stant/dungeon-builder/internal/game"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
	"github.com/Ko-stant/dungeon-builder/internal/ws"
)

// Server owns the current game and forwards its events to stream clients.
type Server struct {
	mu       sync.RWMutex
	manager  *game.Manager
	levels   []*level.DungeonLevel
	settings dungeon.Settings

	bus         *events.Bus
	hub         *ws.Hub
	sequence    SequenceGenerator
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewServer(levels []*level.DungeonLevel, settings dungeon.Settings, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)
	seq := &protocol.Sequencer{}
	s := &Server{
		levels:      levels,
		settings:    settings,
		bus:         events.NewBus(),
		hub:         hub,
		sequence:    seq,
		broadcaster: NewBroadcaster(hub, seq, logger),
		logger:      logger,
	}
	s.bus.Subscribe(func(ev events.Event) {
		s.broadcaster.BroadcastEvent(ev)
	})
	return s
}

// Generate replaces the current game with a fresh one. The new game's
// events, including dungeonGenerated, reach clients before Generate
// returns; readers block until the swap is done.
func (s *Server) Generate(ctx context.Context, req protocol.GenerateRequest) error {
	levels := s.levels
	if req.Graph != "" {
		levels = make([]*level.DungeonLevel, 0, len(s.levels))
		for _, lvl := range s.levels {
			only, err := lvl.WithGraph(req.Graph)
			if err != nil {
				return err
			}
			levels = append(levels, only)
		}
	}

	seed := dungeon.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := game.NewManager(levels, game.Options{
		Settings: s.settings,
		Seed:     seed,
		Bus:      s.bus,
		Logger:   s.logger,
	})
	if err != nil {
		return err
	}
	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	s.manager = m
	st := m.Status()
	s.logger.Info("new game", "seed", seed, "levels", len(levels), "state", st.State.String(), "room", st.CurrentRoom)
	return nil
}

func (s *Server) current() (*game.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.manager == nil {
		return nil, &game.GameError{Code: game.CodeNoDungeon, Message: "no dungeon has been generated"}
	}
	return s.manager, nil
}

// Snapshot describes the current dungeon and game status. The dungeon and
// status are read under one lock so they always agree.
func (s *Server) Snapshot() (protocol.DungeonSnapshot, error) {
	// read before the state so every later patch is newer than the snapshot
	last := s.sequence.Last()
	m, err := s.current()
	if err != nil {
		return protocol.DungeonSnapshot{}, err
	}

	var snap protocol.DungeonSnapshot
	if err := m.View(func(d *dungeon.Dungeon, st game.Status) {
		snap = protocol.NewDungeonSnapshot(d)
		snap.Game = &protocol.GameStatus{
			State:       st.State.String(),
			Level:       st.Level,
			CurrentRoom: st.CurrentRoom,
			Score:       st.Score,
			Multiplier:  st.Multiplier,
			Health:      st.Health,
			HealthPct:   st.HealthPercent,
			Position:    st.Position,
			Weapon: protocol.WeaponLite{
				Name:          st.Weapon.Name,
				ClipRemaining: st.Weapon.ClipRemaining,
				RemainingAmmo: st.Weapon.RemainingAmmo,
				Reloading:     st.Weapon.Reloading,
			},
			Doors: st.Doors,
		}
	}); err != nil {
		return protocol.DungeonSnapshot{}, err
	}
	snap.LastSequence = last
	return snap, nil
}

func (s *Server) EnterRoom(id string) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.EnterRoom(id)
}

func (s *Server) ClearRoom(id string) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.RoomCleared(id)
}

func (s *Server) NextLevel(ctx context.Context) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.NextLevel(ctx)
}

func (s *Server) Restart(ctx context.Context) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.Restart(ctx)
}

func (s *Server) AddPoints(points int) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	m.AddPoints(points)
	return nil
}

func (s *Server) AdjustMultiplier(up bool) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	m.AdjustMultiplier(up)
	return nil
}

func (s *Server) DamagePlayer(amount int) error {
	m, err := s.current()
	if err != nil {
		return err
	}
	m.DamagePlayer(amount)
	return nil
}

func (s *Server) PlayerDestroyed() error {
	m, err := s.current()
	if err != nil {
		return err
	}
	m.PlayerDestroyed()
	return nil
}

func (s *Server) FireWeapon() error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.FireWeapon()
}

func (s *Server) ReloadWeapon() error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.ReloadWeapon()
}

func (s *Server) Pause() error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.Pause()
}

func (s *Server) Resume() error {
	m, err := s.current()
	if err != nil {
		return err
	}
	return m.Resume()
}

func (s *Server) ActiveRooms(width, height int) ([]string, error) {
	m, err := s.current()
	if err != nil {
		return nil, err
	}
	return m.ActiveRooms(width, height)
}

// Run advances the current game's timers every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if m, err := s.current(); err == nil {
				m.Tick(dt)
			}
		}
	}
}
