package events

import (
	"sync"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

// Event is anything published on a Bus. Type is the wire name used when the
// event is forwarded to clients.
type Event interface {
	Type() string
}

type RoomChanged struct {
	RoomID         string `json:"roomId"`
	PreviousRoomID string `json:"previousRoomId,omitempty"`
}

type RoomEnemiesDefeated struct {
	RoomID string `json:"roomId"`
}

type PointsScored struct {
	Points int `json:"points"`
}

type ScoreChanged struct {
	Score      int64 `json:"score"`
	Multiplier int   `json:"multiplier"`
}

type MultiplierChanged struct {
	Multiplier int  `json:"multiplier"`
	Increased  bool `json:"increased"`
}

type GameStateChanged struct {
	State    string `json:"state"`
	Previous string `json:"previous"`
	Level    int    `json:"level"`
	Message  string `json:"message,omitempty"`
}

type DungeonGenerated struct {
	Level     string `json:"level"`
	GraphName string `json:"graph"`
	Seed      int64  `json:"seed"`
	Rooms     int    `json:"rooms"`
	Attempts  int    `json:"attempts"`
}

type DoorStateChanged struct {
	RoomID string `json:"roomId"`
	Door   int    `json:"door"`
	State  string `json:"state"`
}

type HealthChanged struct {
	Owner   string  `json:"owner"`
	Current int     `json:"current"`
	Percent float64 `json:"percent"`
	Damage  int     `json:"damage"`
}

type WeaponFired struct {
	Weapon        string        `json:"weapon"`
	Origin        geometry.Vec2 `json:"origin"`
	Damage        int           `json:"damage"`
	ClipRemaining int           `json:"clipRemaining"`
	RemainingAmmo int           `json:"remainingAmmo"`
}

// WeaponReloaded is published when a reload starts (Finished false) and
// again when it completes.
type WeaponReloaded struct {
	Weapon        string `json:"weapon"`
	Finished      bool   `json:"finished"`
	ClipRemaining int    `json:"clipRemaining"`
	RemainingAmmo int    `json:"remainingAmmo"`
}

func (RoomChanged) Type() string         { return "roomChanged" }
func (RoomEnemiesDefeated) Type() string { return "roomEnemiesDefeated" }
func (PointsScored) Type() string        { return "pointsScored" }
func (ScoreChanged) Type() string        { return "scoreChanged" }
func (MultiplierChanged) Type() string   { return "multiplierChanged" }
func (GameStateChanged) Type() string    { return "gameStateChanged" }
func (DungeonGenerated) Type() string    { return "dungeonGenerated" }
func (DoorStateChanged) Type() string    { return "doorStateChanged" }
func (HealthChanged) Type() string       { return "healthChanged" }
func (WeaponFired) Type() string         { return "weaponFired" }
func (WeaponReloaded) Type() string      { return "weaponReloaded" }

// Handler receives published events on the publisher's goroutine.
type Handler func(Event)

// Bus is a synchronous publish/subscribe hub. Handlers may publish further
// events but must not block.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Publish calls every handler in subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}
