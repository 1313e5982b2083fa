package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/events"
	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/level"
)

const (
	minMultiplier = 1
	maxMultiplier = 30

	DefaultPlayerHealth = 100
	projectilePoolSize  = 20
)

// DefaultWeapon is the player's weapon when Options.Weapon is nil.
var DefaultWeapon = WeaponDetails{
	Name:         "pistol",
	Damage:       10,
	FireRate:     0.25,
	ReloadTime:   1,
	ClipCapacity: 12,
	AmmoCapacity: 96,
}

type Options struct {
	Settings     dungeon.Settings
	Seed         int64
	PlayerHealth int
	Weapon       *WeaponDetails
	Bus          *events.Bus
	Logger       *slog.Logger
}

type WeaponStatus struct {
	Name          string
	ClipRemaining int
	RemainingAmmo int
	Reloading     bool
}

// Status is a consistent copy of the game's progress.
type Status struct {
	State         State
	Level         int
	CurrentRoom   string
	Score         int64
	Multiplier    int
	Health        int
	HealthPercent float64
	Position      geometry.Vec2
	Weapon        WeaponStatus
	// Doors maps room ids to the state name of each of their doors.
	Doors map[string][]string
}

// Manager runs a game over a list of dungeon levels. Level i is generated
// with seed Seed+i. All methods are safe for concurrent use; events are
// published after the manager's lock is released.
type Manager struct {
	mu sync.Mutex

	levels     []*level.DungeonLevel
	levelIndex int
	settings   dungeon.Settings
	seed       int64
	bus        *events.Bus
	logger     *slog.Logger
	buildLog   *slog.Logger

	state        State
	previous     State
	resumeState  State
	dungeon      *dungeon.Dungeon
	doors        map[string][]*Door
	currentRoom  *dungeon.Room
	previousRoom *dungeon.Room
	score        int64
	multiplier   int
	player       *Health
	position     geometry.Vec2
	weapon       *Weapon
	projectiles  *Pool[*Projectile]

	pending []events.Event
}

func NewManager(levels []*level.DungeonLevel, opts Options) (*Manager, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PlayerHealth <= 0 {
		opts.PlayerHealth = DefaultPlayerHealth
	}
	if opts.Weapon == nil {
		details := DefaultWeapon
		opts.Weapon = &details
	}
	projectiles, err := NewProjectilePool(opts.Weapon.Name, projectilePoolSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		levels:     levels,
		settings:   opts.Settings,
		seed:       opts.Seed,
		bus:        opts.Bus,
		logger:     opts.Logger.With("component", "game_manager"),
		buildLog:   opts.Logger,
		state:      GameStarted,
		previous:   GameStarted,
		multiplier: minMultiplier,

		projectiles: projectiles,
		weapon:      NewWeapon(*opts.Weapon, projectiles),
	}
	m.player = NewHealth("player", opts.PlayerHealth)
	m.player.OnChange = func(ev events.HealthChanged) { m.emit(ev) }
	return m, nil
}

func (m *Manager) Bus() *events.Bus { return m.bus }

// Start generates the first level and places the player in its entrance.
func (m *Manager) Start(ctx context.Context) error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != GameStarted && m.state != RestartGame {
		return invalidState("start", m.state)
	}
	return m.playLevel(ctx, m.levelIndex)
}

// NextLevel advances to the next level once the current one is completed.
func (m *Manager) NextLevel(ctx context.Context) error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != LevelCompleted {
		return invalidState("advance level", m.state)
	}
	return m.playLevel(ctx, m.levelIndex+1)
}

// Restart resets score and progress and starts again from the first level.
func (m *Manager) Restart(ctx context.Context) error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setState(RestartGame, "")
	m.levelIndex = 0
	m.score = 0
	m.multiplier = minMultiplier
	m.player.SetStarting(m.player.Starting())
	m.player.Damageable = true
	m.weapon = NewWeapon(m.weapon.Details, m.projectiles)
	m.emit(events.ScoreChanged{Score: m.score, Multiplier: m.multiplier})
	return m.playLevel(ctx, 0)
}

func (m *Manager) playLevel(ctx context.Context, index int) error {
	lvl := m.levels[index]
	seed := m.seed + int64(index)
	d, err := dungeon.NewBuilder(m.settings, seed, m.buildLog).Generate(ctx, lvl)
	if err != nil {
		return fmt.Errorf("failed to build level %d (%s): %w", index+1, lvl.Name, err)
	}

	m.levelIndex = index
	m.dungeon = d
	m.doors = BuildDoors(d)
	m.previousRoom = nil
	m.currentRoom = d.Entrance()
	m.currentRoom.PreviouslyVisited = true
	m.position = m.currentRoom.NearestSpawnPosition(m.currentRoom.Bounds.Center())

	m.logger.Info("level started",
		"level", index+1,
		"name", lvl.Name,
		"graph", d.GraphName,
		"rooms", d.Len(),
	)
	m.emit(events.DungeonGenerated{
		Level:     lvl.Name,
		GraphName: d.GraphName,
		Seed:      d.Seed,
		Rooms:     d.Len(),
		Attempts:  d.Attempts,
	})
	m.emit(events.RoomChanged{RoomID: m.currentRoom.ID})
	m.setState(PlayingLevel, fmt.Sprintf("level %d: %s", index+1, lvl.Name))

	// the entrance has no enemies; a level with only a boss room goes
	// straight to the boss stage
	m.evaluate()
	return nil
}

// EnterRoom moves the player into a room. Entering a room that
// still has enemies locks its doors until RoomCleared.
func (m *Manager) EnterRoom(id string) error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() {
		return invalidState("enter a room", m.state)
	}
	room, err := m.room(id)
	if err != nil {
		return err
	}
	if room == m.currentRoom {
		return nil
	}
	if room.Type.BossRoom && m.state != BossStage {
		return &GameError{Code: CodeRoomLocked, Message: fmt.Sprintf("boss room %s is locked until the level is cleared", id)}
	}

	m.previousRoom = m.currentRoom
	m.currentRoom = room
	room.PreviouslyVisited = true
	m.position = room.NearestSpawnPosition(m.position)
	m.emit(events.RoomChanged{RoomID: room.ID, PreviousRoomID: m.previousRoom.ID})

	for _, door := range m.doors[room.ID] {
		if door.Open() {
			m.emitDoor(door)
		}
	}

	if room.ClearOfEnemies {
		return nil
	}
	for _, door := range m.doors[room.ID] {
		door.Lock()
		m.emitDoor(door)
	}
	m.resumeState = m.state
	if room.Type.BossRoom {
		m.setState(EngagingBoss, "")
	} else {
		m.setState(EngagingEnemies, "")
	}
	return nil
}

// RoomCleared marks a room as free of enemies, unlocks its doors and
// re-evaluates level progress. Only rooms the player has entered can be
// cleared, and the boss room only during the boss stage.
func (m *Manager) RoomCleared(id string) error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() && !m.state.engaging() {
		return invalidState("clear a room", m.state)
	}
	room, err := m.room(id)
	if err != nil {
		return err
	}
	if room.Type.BossRoom && m.state != BossStage && m.state != EngagingBoss {
		return &GameError{Code: CodeRoomLocked, Message: fmt.Sprintf("boss room %s is locked until the level is cleared", id)}
	}
	if room != m.currentRoom && !room.PreviouslyVisited {
		return &GameError{Code: CodeNotEntered, Message: fmt.Sprintf("room %s has not been entered", id)}
	}
	if room.ClearOfEnemies {
		return nil
	}

	room.ClearOfEnemies = true
	for _, door := range m.doors[room.ID] {
		if door.IsLocked() {
			door.Unlock()
			m.emitDoor(door)
		}
	}
	m.emit(events.RoomEnemiesDefeated{RoomID: room.ID})

	if m.state.engaging() && room == m.currentRoom {
		m.setState(m.resumeState, "")
	}
	m.evaluate()
	return nil
}

// evaluate applies the level progress rules: with every regular room
// cleared the level is complete if there is no boss or the boss is
// cleared, otherwise the boss stage begins.
func (m *Manager) evaluate() {
	if m.state.engaging() {
		return
	}

	regularCleared := true
	var boss *dungeon.Room
	for _, r := range m.dungeon.Rooms() {
		if r.Type.BossRoom {
			boss = r
			continue
		}
		if !r.ClearOfEnemies {
			regularCleared = false
			break
		}
	}

	switch {
	case regularCleared && (boss == nil || boss.ClearOfEnemies):
		if m.levelIndex < len(m.levels)-1 {
			m.setState(LevelCompleted, "level cleared")
		} else {
			m.setState(GameWon, fmt.Sprintf("dungeon defeated with a score of %d", m.score))
		}
	case regularCleared && m.state != BossStage:
		for _, door := range m.doors[boss.ID] {
			door.Unlock()
			m.emitDoor(door)
		}
		m.setState(BossStage, "find and defeat the boss")
	}
}

// PlayerDestroyed ends the game.
func (m *Manager) PlayerDestroyed() {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == GameLost {
		return
	}
	m.player.Damageable = false
	m.setState(GameLost, fmt.Sprintf("succumbed to the dungeon with a score of %d", m.score))
}

// DamagePlayer applies damage to the player and ends the game when health
// runs out.
func (m *Manager) DamagePlayer(amount int) {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Over() {
		return
	}
	m.player.TakeDamage(amount)
	if m.player.Dead() {
		m.player.Damageable = false
		m.setState(GameLost, fmt.Sprintf("succumbed to the dungeon with a score of %d", m.score))
	}
}

func (m *Manager) AddPoints(points int) {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.score += int64(points) * int64(m.multiplier)
	m.emit(events.PointsScored{Points: points})
	m.emit(events.ScoreChanged{Score: m.score, Multiplier: m.multiplier})
}

// AdjustMultiplier moves the score multiplier up or down by one, clamped
// to 1..30.
func (m *Manager) AdjustMultiplier(up bool) {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if up {
		m.multiplier++
	} else {
		m.multiplier--
	}
	m.multiplier = max(minMultiplier, min(maxMultiplier, m.multiplier))
	m.emit(events.MultiplierChanged{Multiplier: m.multiplier, Increased: up})
	m.emit(events.ScoreChanged{Score: m.score, Multiplier: m.multiplier})
}

func (m *Manager) Pause() error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() && !m.state.engaging() {
		return invalidState("pause", m.state)
	}
	m.setState(GamePaused, "")
	return nil
}

func (m *Manager) Resume() error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != GamePaused {
		return invalidState("resume", m.state)
	}
	m.setState(m.previous, "")
	return nil
}

// FireWeapon fires the player's weapon from the player's position.
func (m *Manager) FireWeapon() error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() && !m.state.engaging() {
		return invalidState("fire", m.state)
	}
	p, ok := m.weapon.Fire(m.position)
	if !ok {
		return &GameError{Code: CodeWeaponBusy, Message: fmt.Sprintf("%s is not ready to fire", m.weapon.Details.Name)}
	}
	m.emit(events.WeaponFired{
		Weapon:        m.weapon.Details.Name,
		Origin:        p.Origin,
		Damage:        p.Damage,
		ClipRemaining: m.weapon.ClipRemaining,
		RemainingAmmo: m.weapon.RemainingAmmo,
	})
	return nil
}

// ReloadWeapon starts reloading the player's weapon. Tick finishes it.
func (m *Manager) ReloadWeapon() error {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() && !m.state.engaging() {
		return invalidState("reload", m.state)
	}
	if !m.weapon.Reload() {
		return &GameError{Code: CodeWeaponBusy, Message: fmt.Sprintf("%s cannot be reloaded now", m.weapon.Details.Name)}
	}
	m.emitReload()
	return nil
}

// Tick advances game timers by dt seconds. Nothing moves while the game is
// paused or over.
func (m *Manager) Tick(dt float64) {
	defer m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.exploring() && !m.state.engaging() {
		return
	}
	reloading := m.weapon.Reloading()
	m.weapon.Tick(dt)
	if reloading && !m.weapon.Reloading() {
		m.emitReload()
	}
}

// ActiveRooms returns the rooms inside a width x height view centred on the
// player.
func (m *Manager) ActiveRooms(width, height int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dungeon == nil {
		return nil, &GameError{Code: CodeNoDungeon, Message: "no dungeon has been generated"}
	}
	lower := m.position.Sub(geometry.Vec2{X: width / 2, Y: height / 2})
	view := geometry.Bounds{Lower: lower, Upper: lower.Add(geometry.Vec2{X: width - 1, Y: height - 1})}
	return ActiveRooms(m.dungeon, view), nil
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status()
}

func (m *Manager) status() Status {
	st := Status{
		State:         m.state,
		Level:         m.levelIndex + 1,
		Score:         m.score,
		Multiplier:    m.multiplier,
		Health:        m.player.Current(),
		HealthPercent: m.player.Percent(),
		Position:      m.position,
		Weapon: WeaponStatus{
			Name:          m.weapon.Details.Name,
			ClipRemaining: m.weapon.ClipRemaining,
			RemainingAmmo: m.weapon.RemainingAmmo,
			Reloading:     m.weapon.Reloading(),
		},
	}
	if m.currentRoom != nil {
		st.CurrentRoom = m.currentRoom.ID
	}
	st.Doors = make(map[string][]string, len(m.doors))
	for id, doors := range m.doors {
		for _, door := range doors {
			st.Doors[id] = append(st.Doors[id], door.StateName())
		}
	}
	return st
}

// View calls fn with the current dungeon and a status taken under the same
// lock. fn must not call back into the manager.
func (m *Manager) View(fn func(d *dungeon.Dungeon, st Status)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dungeon == nil {
		return &GameError{Code: CodeNoDungeon, Message: "no dungeon has been generated"}
	}
	fn(m.dungeon, m.status())
	return nil
}

func (m *Manager) room(id string) (*dungeon.Room, error) {
	if m.dungeon == nil {
		return nil, &GameError{Code: CodeNoDungeon, Message: "no dungeon has been generated"}
	}
	r, ok := m.dungeon.Room(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, id)
	}
	return r, nil
}

func (m *Manager) setState(s State, message string) {
	if s == m.state {
		return
	}
	m.previous = m.state
	m.state = s
	m.logger.Debug("game state changed", "from", m.previous.String(), "to", s.String())
	m.emit(events.GameStateChanged{
		State:    s.String(),
		Previous: m.previous.String(),
		Level:    m.levelIndex + 1,
		Message:  message,
	})
}

func (m *Manager) emitReload() {
	m.emit(events.WeaponReloaded{
		Weapon:        m.weapon.Details.Name,
		Finished:      !m.weapon.Reloading(),
		ClipRemaining: m.weapon.ClipRemaining,
		RemainingAmmo: m.weapon.RemainingAmmo,
	})
}

func (m *Manager) emitDoor(d *Door) {
	m.emit(events.DoorStateChanged{RoomID: d.RoomID, Door: d.Doorway, State: d.StateName()})
}

// emit queues an event; callers hold m.mu.
func (m *Manager) emit(ev events.Event) {
	m.pending = append(m.pending, ev)
}

func (m *Manager) flush() {
	m.mu.Lock()
	evs := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, ev := range evs {
		m.bus.Publish(ev)
	}
}
