package game

import (
	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

// Door sits on a connected doorway of a non-corridor room.
type Door struct {
	RoomID       string
	Doorway      int
	Position     geometry.Vec2
	Orientation  geometry.Orientation
	BossRoomDoor bool

	open             bool
	locked           bool
	previouslyOpened bool
}

// Open opens an unlocked door. It reports whether the door changed.
func (d *Door) Open() bool {
	if d.open || d.locked {
		return false
	}
	d.open = true
	d.previouslyOpened = true
	return true
}

// Lock closes the door and keeps it closed until Unlock.
func (d *Door) Lock() {
	d.open = false
	d.locked = true
}

// Unlock releases the lock. A door that was opened before it was locked
// opens again.
func (d *Door) Unlock() {
	d.locked = false
	if d.previouslyOpened {
		d.open = false
		d.Open()
	}
}

func (d *Door) IsOpen() bool   { return d.open }
func (d *Door) IsLocked() bool { return d.locked }

// StateName is the door state as sent to clients.
func (d *Door) StateName() string {
	switch {
	case d.locked:
		return "locked"
	case d.open:
		return "open"
	default:
		return "closed"
	}
}

// BuildDoors creates a door for every connected doorway of every
// non-corridor room, keyed by room id. Boss room doors start locked.
func BuildDoors(d *dungeon.Dungeon) map[string][]*Door {
	doors := make(map[string][]*Door)
	for _, r := range d.Rooms() {
		if r.Type.IsAnyCorridor() {
			continue
		}
		for i, dw := range r.Doorways {
			if !dw.Connected {
				continue
			}
			door := &Door{
				RoomID:       r.ID,
				Doorway:      i,
				Position:     r.DoorwayPosition(i),
				Orientation:  dw.Orientation,
				BossRoomDoor: r.Type.BossRoom,
			}
			if door.BossRoomDoor {
				door.Lock()
			}
			doors[r.ID] = append(doors[r.ID], door)
		}
	}
	return doors
}
