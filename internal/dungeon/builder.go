package dungeon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/nodegraph"
)

var (
	// ErrBuildFailed is returned when no graph could be laid out within the
	// configured attempts.
	ErrBuildFailed = errors.New("couldn't build dungeon from specified rooms and node graphs")
	ErrNoGraphs    = errors.New("level has no room node graphs")
	ErrNoEntrance  = errors.New("room node graph has no entrance node")
)

// Builder maps room node graphs onto non-overlapping room placements.
// A Builder is not safe for concurrent use; create one per generation.
type Builder struct {
	settings Settings
	logger   *slog.Logger
	seed     int64
	rng      *rand.Rand

	level     *level.DungeonLevel
	templates map[string]*level.RoomTemplate
	byType    map[*nodegraph.RoomNodeType][]*level.RoomTemplate
	rooms     map[string]*Room
	order     []string
}

// NewBuilder returns a builder whose random choices are fully determined
// by seed.
func NewBuilder(settings Settings, seed int64, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		settings: settings.withDefaults(),
		logger:   logger.With("component", "dungeon_builder", "seed", seed),
		seed:     seed,
		rng:      seededRNG(seed),
		rooms:    make(map[string]*Room),
	}
}

// Seed returns the seed the builder was created with.
func (b *Builder) Seed() int64 { return b.seed }

// Generate lays out one of the level's graphs. On failure no rooms are
// retained and ErrBuildFailed (or the context error) is returned.
func (b *Builder) Generate(ctx context.Context, lvl *level.DungeonLevel) (*Dungeon, error) {
	if len(lvl.Graphs) == 0 {
		return nil, ErrNoGraphs
	}
	if lvl.Types == nil {
		return nil, errors.New("level has no room node type list")
	}
	b.level = lvl
	b.loadTemplates(lvl.Templates)

	totalAttempts := 0
	for buildAttempt := 0; buildAttempt < b.settings.MaxBuildAttempts; buildAttempt++ {
		graph := lvl.Graphs[b.rng.IntN(len(lvl.Graphs))]

		for rebuild := 0; rebuild < b.settings.MaxRebuildAttemptsPerGraph; rebuild++ {
			if err := ctx.Err(); err != nil {
				b.clear()
				return nil, err
			}
			b.clear()
			totalAttempts++

			ok, err := b.attemptBuild(graph)
			if err != nil {
				// structural problem; retrying the same graph can't help
				b.logger.Warn("graph cannot be built", "graph", graph.Name, "error", err)
				break
			}
			if ok {
				b.logger.Info("dungeon built",
					"level", lvl.Name,
					"graph", graph.Name,
					"rooms", len(b.rooms),
					"attempts", totalAttempts)
				return b.takeDungeon(graph, totalAttempts), nil
			}
		}
		b.logger.Debug("giving up on graph", "graph", graph.Name, "build_attempt", buildAttempt+1)
	}

	b.clear()
	b.logger.Error("dungeon build failed", "level", lvl.Name, "attempts", totalAttempts)
	return nil, fmt.Errorf("%w: level %q after %d attempts", ErrBuildFailed, lvl.Name, totalAttempts)
}

func (b *Builder) loadTemplates(templates []*level.RoomTemplate) {
	b.templates = make(map[string]*level.RoomTemplate, len(templates))
	b.byType = make(map[*nodegraph.RoomNodeType][]*level.RoomTemplate)
	for _, t := range templates {
		if _, ok := b.templates[t.ID]; ok {
			b.logger.Warn("duplicate room template key", "template", t.ID)
			continue
		}
		b.templates[t.ID] = t
		b.byType[t.Type] = append(b.byType[t.Type], t)
	}
}

func (b *Builder) clear() {
	clear(b.rooms)
	b.order = b.order[:0]
}

func (b *Builder) takeDungeon(graph *nodegraph.Graph, attempts int) *Dungeon {
	d := &Dungeon{
		Level:     b.level.Name,
		GraphName: graph.Name,
		Seed:      b.seed,
		Attempts:  attempts,
		rooms:     make(map[string]*Room, len(b.rooms)),
		order:     append([]string(nil), b.order...),
	}
	for id, r := range b.rooms {
		d.rooms[id] = r
	}
	b.rooms = make(map[string]*Room)
	b.order = nil
	return d
}

func (b *Builder) addRoom(r *Room) {
	b.rooms[r.ID] = r
	b.order = append(b.order, r.ID)
}

// attemptBuild walks the graph breadth first from its entrance, placing
// every node against its parent. It reports false when some room could not
// be placed; an error means the graph itself is unusable.
func (b *Builder) attemptBuild(graph *nodegraph.Graph) (bool, error) {
	entrance := graph.NodeOfType(b.level.Types.Entrance())
	if entrance == nil {
		return false, ErrNoEntrance
	}

	queue := []*nodegraph.RoomNode{entrance}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		queue = append(queue, graph.Children(node)...)

		if node.IsEntrance() {
			tmpl := b.randomTemplate(node.Type)
			if tmpl == nil {
				return false, fmt.Errorf("no room template for entrance type %q", node.Type.Name)
			}
			room := newRoom(tmpl, node)
			room.Positioned = true
			b.addRoom(room)
			continue
		}

		if len(node.ParentIDs) == 0 {
			return false, fmt.Errorf("room node %s has no parent", node.ID)
		}
		parent, ok := b.rooms[node.ParentIDs[0]]
		if !ok {
			return false, fmt.Errorf("parent %s of room node %s was not placed first", node.ParentIDs[0], node.ID)
		}
		if !b.placeWithoutOverlap(node, parent) {
			return false, nil
		}
	}
	return true, nil
}

// placeWithoutOverlap tries the parent's free doorways in random order until
// the node fits. Every failed doorway is marked unavailable.
func (b *Builder) placeWithoutOverlap(node *nodegraph.RoomNode, parent *Room) bool {
	for {
		free := parent.availableDoorways()
		if len(free) == 0 {
			return false
		}
		parentDoorway := free[b.rng.IntN(len(free))]

		tmpl := b.templateForParent(node, parent.Doorways[parentDoorway].Orientation)
		if tmpl == nil {
			parent.Doorways[parentDoorway].Unavailable = true
			continue
		}

		room := newRoom(tmpl, node)
		if b.placeRoom(parent, parentDoorway, room) {
			room.Positioned = true
			b.addRoom(room)
			return true
		}
	}
}

// placeRoom aligns room against the parent doorway so its own opposite
// doorway sits on the next cell out. It reports whether the result is free
// of overlaps; on failure only the parent doorway is touched.
func (b *Builder) placeRoom(parent *Room, parentDoorway int, room *Room) bool {
	pd := &parent.Doorways[parentDoorway]
	childDoorway := room.oppositeDoorway(pd.Orientation)
	if childDoorway < 0 {
		pd.Unavailable = true
		return false
	}
	cd := &room.Doorways[childDoorway]

	target := parent.DoorwayPosition(parentDoorway).Add(pd.Orientation.Step())
	room.Bounds = room.TemplateBounds.Translate(target.Sub(cd.Position))

	if b.overlappingRoom(room) != nil {
		pd.Unavailable = true
		return false
	}

	pd.Connected, pd.Unavailable = true, true
	cd.Connected, cd.Unavailable = true, true
	return true
}

func (b *Builder) overlappingRoom(candidate *Room) *Room {
	for _, id := range b.order {
		r := b.rooms[id]
		if r.ID == candidate.ID || !r.Positioned {
			continue
		}
		if candidate.Bounds.Overlaps(r.Bounds) {
			return r
		}
	}
	return nil
}

// templateForParent picks a corridor template matching the axis of the
// parent doorway for corridor nodes, otherwise a template of the node type.
func (b *Builder) templateForParent(node *nodegraph.RoomNode, parentOrientation geometry.Orientation) *level.RoomTemplate {
	if !node.Type.Corridor {
		return b.randomTemplate(node.Type)
	}
	switch {
	case parentOrientation.IsNorthSouth():
		return b.randomTemplate(b.level.Types.CorridorNS())
	case parentOrientation.IsEastWest():
		return b.randomTemplate(b.level.Types.CorridorEW())
	}
	return nil
}

func (b *Builder) randomTemplate(t *nodegraph.RoomNodeType) *level.RoomTemplate {
	if t == nil {
		return nil
	}
	matching := b.byType[t]
	if len(matching) == 0 {
		return nil
	}
	return matching[b.rng.IntN(len(matching))]
}
