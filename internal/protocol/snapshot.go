package protocol

import (
	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

const ProtocolVersion = "v1"

type DoorwayLite struct {
	Position    geometry.Vec2 `json:"position"`
	Orientation string        `json:"orientation"`
	Connected   bool          `json:"connected"`
}

// UnusedDoorwayLite is a doorway left unconnected, with the block of tiles
// that walls it off when the template defines one.
type UnusedDoorwayLite struct {
	Position    geometry.Vec2    `json:"position"`
	Orientation string           `json:"orientation"`
	Block       *geometry.Bounds `json:"block,omitempty"`
}

type RoomLite struct {
	ID         string          `json:"id"`
	TemplateID string          `json:"templateId"`
	Type       string          `json:"type"`
	Bounds     geometry.Bounds `json:"bounds"`
	ParentID   string          `json:"parentId,omitempty"`
	Children   []string        `json:"children,omitempty"`
	Visited    bool            `json:"visited"`
	Cleared    bool            `json:"cleared"`
	Doorways   []DoorwayLite   `json:"doorways"`

	UnusedDoorways []UnusedDoorwayLite `json:"unusedDoorways,omitempty"`
}

type WeaponLite struct {
	Name          string `json:"name"`
	ClipRemaining int    `json:"clipRemaining"`
	RemainingAmmo int    `json:"remainingAmmo"`
	Reloading     bool   `json:"reloading"`
}

// GameStatus is the game manager's view attached to a snapshot.
type GameStatus struct {
	State       string              `json:"state"`
	Level       int                 `json:"level"`
	CurrentRoom string              `json:"currentRoom"`
	Score       int64               `json:"score"`
	Multiplier  int                 `json:"multiplier"`
	Health      int                 `json:"health"`
	HealthPct   float64             `json:"healthPercent"`
	Position    geometry.Vec2       `json:"position"`
	Weapon      WeaponLite          `json:"weapon"`
	Doors       map[string][]string `json:"doors,omitempty"`
}

type DungeonSnapshot struct {
	Level           string          `json:"level"`
	Graph           string          `json:"graph"`
	Seed            int64           `json:"seed"`
	Attempts        int             `json:"attempts"`
	Bounds          geometry.Bounds `json:"bounds"`
	Rooms           []RoomLite      `json:"rooms"`
	ASCII           string          `json:"ascii"`
	Game            *GameStatus     `json:"game,omitempty"`
	LastSequence    uint64          `json:"lastSeq"`
	ProtocolVersion string          `json:"protocolVersion"`
}

// NewDungeonSnapshot copies everything a client needs to draw d. Rooms are
// listed in placement order.
func NewDungeonSnapshot(d *dungeon.Dungeon) DungeonSnapshot {
	s := DungeonSnapshot{
		Level:           d.Level,
		Graph:           d.GraphName,
		Seed:            d.Seed,
		Attempts:        d.Attempts,
		Bounds:          d.Bounds(),
		Rooms:           make([]RoomLite, 0, d.Len()),
		ASCII:           dungeon.ASCII(d),
		ProtocolVersion: ProtocolVersion,
	}
	unused := make(map[string][]UnusedDoorwayLite)
	for _, bd := range d.UnusedDoorways() {
		u := UnusedDoorwayLite{Position: bd.Position, Orientation: string(bd.Orientation)}
		if bd.HasBlock {
			block := bd.Block
			u.Block = &block
		}
		unused[bd.RoomID] = append(unused[bd.RoomID], u)
	}
	for _, r := range d.Rooms() {
		rl := newRoomLite(r)
		rl.UnusedDoorways = unused[r.ID]
		s.Rooms = append(s.Rooms, rl)
	}
	return s
}

func newRoomLite(r *dungeon.Room) RoomLite {
	rl := RoomLite{
		ID:         r.ID,
		TemplateID: r.TemplateID,
		Type:       r.Type.Name,
		Bounds:     r.Bounds,
		ParentID:   r.ParentID,
		Children:   append([]string(nil), r.ChildIDs...),
		Visited:    r.PreviouslyVisited,
		Cleared:    r.ClearOfEnemies,
		Doorways:   make([]DoorwayLite, 0, len(r.Doorways)),
	}
	for i, dw := range r.Doorways {
		rl.Doorways = append(rl.Doorways, DoorwayLite{
			Position:    r.DoorwayPosition(i),
			Orientation: string(dw.Orientation),
			Connected:   dw.Connected,
		})
	}
	return rl
}
