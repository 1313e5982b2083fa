package level

import (
	"errors"
	"fmt"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/nodegraph"
)

// Doorway is a connection point on a room template. Position is in
// template space.
type Doorway struct {
	Position    geometry.Vec2        `json:"position"`
	Orientation geometry.Orientation `json:"orientation"`
	Connected   bool                 `json:"connected"`
	Unavailable bool                 `json:"unavailable"`

	// Tile block copied over the doorway when it is left unused.
	CopyStart  geometry.Vec2 `json:"copyStart"`
	CopyWidth  int           `json:"copyWidth"`
	CopyHeight int           `json:"copyHeight"`
}

// CopyBounds returns the wall-off block in template space, or false when
// the doorway has no block configured.
func (d Doorway) CopyBounds() (geometry.Bounds, bool) {
	if d.CopyWidth <= 0 || d.CopyHeight <= 0 {
		return geometry.Bounds{}, false
	}
	return geometry.Bounds{
		Lower: d.CopyStart,
		Upper: d.CopyStart.Add(geometry.Vec2{X: d.CopyWidth - 1, Y: d.CopyHeight - 1}),
	}, true
}

// RoomTemplate is a concrete room layout with fixed bounds and doorways,
// tagged with the room node type it can stand in for.
type RoomTemplate struct {
	ID             string
	Name           string
	Type           *nodegraph.RoomNodeType
	Bounds         geometry.Bounds
	Doorways       []Doorway
	SpawnPositions []geometry.Vec2
}

// CopyDoorways returns a deep copy so placement can flag doorways without
// touching the template.
func (t *RoomTemplate) CopyDoorways() []Doorway {
	out := make([]Doorway, len(t.Doorways))
	copy(out, t.Doorways)
	return out
}

// DungeonLevel bundles the templates and candidate graphs for one level.
type DungeonLevel struct {
	Name      string
	Types     *nodegraph.TypeList
	Templates []*RoomTemplate
	Graphs    []*nodegraph.Graph
}

// Template looks a template up by id.
func (l *DungeonLevel) Template(id string) (*RoomTemplate, bool) {
	for _, t := range l.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TemplatesOfType returns templates tagged with t in declaration order.
func (l *DungeonLevel) TemplatesOfType(t *nodegraph.RoomNodeType) []*RoomTemplate {
	var out []*RoomTemplate
	for _, tmpl := range l.Templates {
		if tmpl.Type == t {
			out = append(out, tmpl)
		}
	}
	return out
}

// Graph looks a graph up by name.
func (l *DungeonLevel) Graph(name string) (*nodegraph.Graph, bool) {
	for _, g := range l.Graphs {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

var ErrUnknownGraph = errors.New("unknown room node graph")

// WithGraph returns a copy of the level that offers only the named graph.
// Templates and types are shared with l.
func (l *DungeonLevel) WithGraph(name string) (*DungeonLevel, error) {
	g, ok := l.Graph(name)
	if !ok {
		return nil, fmt.Errorf("%w %q in level %q", ErrUnknownGraph, name, l.Name)
	}
	out := *l
	out.Graphs = []*nodegraph.Graph{g}
	return &out, nil
}
