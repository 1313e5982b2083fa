package dungeon

import (
	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/nodegraph"
)

// Room is a room node realised from a template and placed on the grid.
// ID is the id of the room node it was built for.
type Room struct {
	ID             string
	TemplateID     string
	Type           *nodegraph.RoomNodeType
	Bounds         geometry.Bounds
	TemplateBounds geometry.Bounds
	ParentID       string
	ChildIDs       []string
	Doorways       []level.Doorway
	SpawnPositions []geometry.Vec2

	Positioned        bool
	PreviouslyVisited bool
	ClearOfEnemies    bool
}

func newRoom(tmpl *level.RoomTemplate, node *nodegraph.RoomNode) *Room {
	r := &Room{
		ID:             node.ID,
		TemplateID:     tmpl.ID,
		Type:           tmpl.Type,
		Bounds:         tmpl.Bounds,
		TemplateBounds: tmpl.Bounds,
		ChildIDs:       append([]string(nil), node.ChildIDs...),
		Doorways:       tmpl.CopyDoorways(),
		SpawnPositions: append([]geometry.Vec2(nil), tmpl.SpawnPositions...),
	}
	if len(node.ParentIDs) == 0 {
		r.PreviouslyVisited = true
	} else {
		r.ParentID = node.ParentIDs[0]
	}
	// nothing to fight in the entrance or corridors
	r.ClearOfEnemies = r.Type.Entrance || r.Type.IsAnyCorridor()
	return r
}

// ToWorld maps a template-space cell onto the grid.
func (r *Room) ToWorld(p geometry.Vec2) geometry.Vec2 {
	return r.Bounds.Lower.Add(p).Sub(r.TemplateBounds.Lower)
}

// DoorwayPosition returns the world cell of doorway i.
func (r *Room) DoorwayPosition(i int) geometry.Vec2 {
	return r.ToWorld(r.Doorways[i].Position)
}

// WorldSpawnPositions returns the template spawn points on the grid.
func (r *Room) WorldSpawnPositions() []geometry.Vec2 {
	out := make([]geometry.Vec2, len(r.SpawnPositions))
	for i, p := range r.SpawnPositions {
		out[i] = r.ToWorld(p)
	}
	return out
}

// NearestSpawnPosition returns the spawn point closest to p (Manhattan
// distance), or the room centre when the template defines none.
func (r *Room) NearestSpawnPosition(p geometry.Vec2) geometry.Vec2 {
	best := r.Bounds.Center()
	bestDist := -1
	for _, sp := range r.WorldSpawnPositions() {
		d := abs(sp.X-p.X) + abs(sp.Y-p.Y)
		if bestDist < 0 || d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best
}

func (r *Room) availableDoorways() []int {
	var idx []int
	for i, d := range r.Doorways {
		if !d.Connected && !d.Unavailable {
			idx = append(idx, i)
		}
	}
	return idx
}

// oppositeDoorway returns the index of the first doorway facing o's
// opposite, or -1.
func (r *Room) oppositeDoorway(o geometry.Orientation) int {
	want := o.Opposite()
	if want == geometry.None {
		return -1
	}
	for i, d := range r.Doorways {
		if d.Orientation == want {
			return i
		}
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
