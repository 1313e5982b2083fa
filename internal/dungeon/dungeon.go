package dungeon

import (
	"errors"
	"fmt"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

// Dungeon is a completed layout: every room of the chosen graph positioned
// with no two rooms sharing a cell.
type Dungeon struct {
	Level     string
	GraphName string
	Seed      int64
	Attempts  int

	rooms map[string]*Room
	order []string
}

// NewDungeon assembles a dungeon from already positioned rooms, keeping the
// given order. It is meant for restoring snapshots and for tests.
func NewDungeon(levelName, graphName string, seed int64, rooms ...*Room) *Dungeon {
	d := &Dungeon{Level: levelName, GraphName: graphName, Seed: seed, rooms: make(map[string]*Room, len(rooms))}
	for _, r := range rooms {
		d.rooms[r.ID] = r
		d.order = append(d.order, r.ID)
	}
	return d
}

// Rooms returns rooms in placement order (breadth first from the entrance).
func (d *Dungeon) Rooms() []*Room {
	out := make([]*Room, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.rooms[id])
	}
	return out
}

func (d *Dungeon) Len() int { return len(d.order) }

func (d *Dungeon) Room(id string) (*Room, bool) {
	r, ok := d.rooms[id]
	return r, ok
}

func (d *Dungeon) Entrance() *Room {
	for _, id := range d.order {
		if r := d.rooms[id]; r.Type.Entrance {
			return r
		}
	}
	return nil
}

// BossRoom returns nil for graphs without a boss.
func (d *Dungeon) BossRoom() *Room {
	for _, id := range d.order {
		if r := d.rooms[id]; r.Type.BossRoom {
			return r
		}
	}
	return nil
}

// RoomAt returns the room covering p, or nil.
func (d *Dungeon) RoomAt(p geometry.Vec2) *Room {
	for _, id := range d.order {
		if r := d.rooms[id]; r.Bounds.Contains(p) {
			return r
		}
	}
	return nil
}

// Bounds is the smallest box containing every room.
func (d *Dungeon) Bounds() geometry.Bounds {
	var b geometry.Bounds
	for i, id := range d.order {
		if i == 0 {
			b = d.rooms[id].Bounds
			continue
		}
		b = b.Union(d.rooms[id].Bounds)
	}
	return b
}

// RegionMap rasterises the layout. Region i+1 is the i-th room in placement
// order; the returned slice maps region ids back to room ids.
func (d *Dungeon) RegionMap() (geometry.RegionMap, []string, error) {
	regions := make([]geometry.Region, len(d.order))
	ids := make([]string, len(d.order)+1)
	for i, id := range d.order {
		regions[i] = geometry.Region{ID: i + 1, Bounds: d.rooms[id].Bounds}
		ids[i+1] = id
	}
	rm, err := geometry.BuildRegionMap(regions)
	return rm, ids, err
}

// BlockedDoorway is a doorway left unconnected after generation, with the
// world-space tile block used to wall it off.
type BlockedDoorway struct {
	RoomID      string
	Position    geometry.Vec2
	Orientation geometry.Orientation
	Block       geometry.Bounds
	HasBlock    bool
}

// UnusedDoorways lists every unconnected doorway in placement order.
func (d *Dungeon) UnusedDoorways() []BlockedDoorway {
	var out []BlockedDoorway
	for _, r := range d.Rooms() {
		for i, dw := range r.Doorways {
			if dw.Connected {
				continue
			}
			bd := BlockedDoorway{
				RoomID:      r.ID,
				Position:    r.DoorwayPosition(i),
				Orientation: dw.Orientation,
			}
			if block, ok := dw.CopyBounds(); ok {
				bd.Block = geometry.Bounds{Lower: r.ToWorld(block.Lower), Upper: r.ToWorld(block.Upper)}
				bd.HasBlock = true
			}
			out = append(out, bd)
		}
	}
	return out
}

// ConnectedDoorways returns, for room r, the indices of connected doorways
// whose outside cell is the connected, facing doorway of other.
func (d *Dungeon) ConnectedDoorways(r, other *Room) []int {
	var out []int
	for i, dw := range r.Doorways {
		if !dw.Connected {
			continue
		}
		outside := r.DoorwayPosition(i).Add(dw.Orientation.Step())
		for j, odw := range other.Doorways {
			if odw.Connected && odw.Orientation == dw.Orientation.Opposite() && other.DoorwayPosition(j) == outside {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Verify checks the layout invariants: no grid cell belongs to two rooms,
// exactly one entrance, and every other room is joined to its parent by
// exactly one connected doorway pair.
func (d *Dungeon) Verify() error {
	var errs []error

	if _, _, err := d.RegionMap(); err != nil {
		errs = append(errs, err)
	}

	entrances := 0
	for _, r := range d.Rooms() {
		if !r.Positioned {
			errs = append(errs, fmt.Errorf("room %s is not positioned", r.ID))
		}
		if r.Type.Entrance {
			entrances++
			continue
		}
		parent, ok := d.rooms[r.ParentID]
		if !ok {
			errs = append(errs, fmt.Errorf("room %s: parent %q missing", r.ID, r.ParentID))
			continue
		}
		if n := len(d.ConnectedDoorways(r, parent)); n != 1 {
			errs = append(errs, fmt.Errorf("room %s has %d doorway connections to parent %s, want 1", r.ID, n, parent.ID))
		}
	}
	if entrances != 1 {
		errs = append(errs, fmt.Errorf("layout has %d entrances, want 1", entrances))
	}

	return errors.Join(errs...)
}
