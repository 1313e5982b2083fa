package nodegraph

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

var (
	ErrUnknownNode       = errors.New("unknown room node")
	ErrDuplicateNode     = errors.New("duplicate room node id")
	ErrSelfLink          = errors.New("room node cannot link to itself")
	ErrAlreadyLinked     = errors.New("room nodes already linked")
	ErrHasParent         = errors.New("room node already has a parent")
	ErrCycle             = errors.New("link would create a cycle")
	ErrEntranceAsChild   = errors.New("entrance cannot be a child")
	ErrCorridorToCorr    = errors.New("corridors must alternate with rooms")
	ErrNoneLinked        = errors.New("unassigned room node cannot be linked")
	ErrBossHasChildren   = errors.New("boss room cannot have children")
	ErrTooManyCorridors  = errors.New("too many child corridors")
	ErrCorridorHasChild  = errors.New("corridor already leads to a room")
	ErrNoEntrance        = errors.New("room node graph has no entrance")
	ErrMultipleEntrances = errors.New("room node graph has more than one entrance")
)

// Graph is an authored room node graph: abstract room types and their
// parent/child relations, rooted at a single entrance.
type Graph struct {
	Name  string
	nodes []*RoomNode
	byID  map[string]*RoomNode
}

func NewGraph(name string) *Graph {
	return &Graph{Name: name, byID: make(map[string]*RoomNode)}
}

// AddNode adds an unlinked node.
func (g *Graph) AddNode(id string, t *RoomNodeType) (*RoomNode, error) {
	if _, ok := g.byID[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	if t == nil {
		return nil, fmt.Errorf("room node %s has no type", id)
	}
	n := &RoomNode{ID: id, Type: t}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	return n, nil
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []*RoomNode { return g.nodes }

func (g *Graph) Len() int { return len(g.nodes) }

// Node returns nil when id is unknown.
func (g *Graph) Node(id string) *RoomNode {
	return g.byID[id]
}

// NodeOfType returns the first node with the given type.
func (g *Graph) NodeOfType(t *RoomNodeType) *RoomNode {
	for _, n := range g.nodes {
		if n.Type == t {
			return n
		}
	}
	return nil
}

// Entrance returns the first node whose type is flagged as an entrance.
func (g *Graph) Entrance() *RoomNode {
	for _, n := range g.nodes {
		if n.IsEntrance() {
			return n
		}
	}
	return nil
}

// Children resolves a node's child ids in link order, skipping dangling ids.
func (g *Graph) Children(n *RoomNode) []*RoomNode {
	out := make([]*RoomNode, 0, len(n.ChildIDs))
	for _, id := range n.ChildIDs {
		if c := g.byID[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Connect links parent -> child after checking the authoring rules.
func (g *Graph) Connect(parentID, childID string) error {
	parent, child := g.byID[parentID], g.byID[childID]
	if parent == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, parentID)
	}
	if child == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, childID)
	}
	if err := g.checkLink(parent, child); err != nil {
		return fmt.Errorf("cannot link %s -> %s: %w", parentID, childID, err)
	}
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	child.ParentIDs = append(child.ParentIDs, parent.ID)
	return nil
}

func (g *Graph) checkLink(parent, child *RoomNode) error {
	switch {
	case parent == child:
		return ErrSelfLink
	case contains(parent.ChildIDs, child.ID):
		return ErrAlreadyLinked
	case parent.Type.None || child.Type.None:
		return ErrNoneLinked
	case child.IsEntrance():
		return ErrEntranceAsChild
	case len(child.ParentIDs) > 0:
		return ErrHasParent
	case parent.Type.BossRoom:
		return ErrBossHasChildren
	case parent.Type.IsAnyCorridor() == child.Type.IsAnyCorridor():
		return ErrCorridorToCorr
	case parent.Type.IsAnyCorridor() && len(parent.ChildIDs) > 0:
		// a corridor joins exactly two rooms
		return ErrCorridorHasChild
	case child.Type.IsAnyCorridor() && g.countCorridorChildren(parent) >= MaxChildCorridors:
		return ErrTooManyCorridors
	case g.isAncestor(child, parent):
		return ErrCycle
	}
	return nil
}

func (g *Graph) countCorridorChildren(n *RoomNode) int {
	count := 0
	for _, c := range g.Children(n) {
		if c.Type.IsAnyCorridor() {
			count++
		}
	}
	return count
}

// isAncestor reports whether a is reachable from b by walking parent links.
func (g *Graph) isAncestor(a, b *RoomNode) bool {
	visited := mapset.New[string]()
	stack := []*RoomNode{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == a {
			return true
		}
		if visited.Has(cur.ID) {
			continue
		}
		visited.Put(cur.ID)
		for _, pid := range cur.ParentIDs {
			if p := g.byID[pid]; p != nil {
				stack = append(stack, p)
			}
		}
	}
	return false
}

// Validate checks whole-graph structure. All problems are returned joined.
func (g *Graph) Validate() error {
	var errs []error

	entrances := 0
	bosses := 0
	for _, n := range g.nodes {
		if n.IsEntrance() {
			entrances++
		}
		if n.Type.BossRoom {
			bosses++
		}
		for _, id := range append(append([]string(nil), n.ParentIDs...), n.ChildIDs...) {
			if g.byID[id] == nil {
				errs = append(errs, fmt.Errorf("node %s: %w: %s", n.ID, ErrUnknownNode, id))
			}
		}
		if n.Type.None {
			continue
		}
		if !n.IsEntrance() && len(n.ParentIDs) != 1 {
			errs = append(errs, fmt.Errorf("node %s (%s) has %d parents, want 1", n.ID, n.Type.Name, len(n.ParentIDs)))
		}
	}
	switch {
	case entrances == 0:
		errs = append(errs, ErrNoEntrance)
	case entrances > 1:
		errs = append(errs, ErrMultipleEntrances)
	}
	if bosses > 1 {
		errs = append(errs, fmt.Errorf("room node graph has %d boss rooms, want at most 1", bosses))
	}

	if entrance := g.Entrance(); entrance != nil {
		reached := g.reachableFrom(entrance)
		for _, n := range g.nodes {
			if !n.Type.None && !reached.Has(n.ID) {
				errs = append(errs, fmt.Errorf("node %s (%s) is not reachable from the entrance", n.ID, n.Type.Name))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("graph %q: %w", g.Name, errors.Join(errs...))
}

func (g *Graph) reachableFrom(start *RoomNode) mapset.Set[string] {
	reached := mapset.New[string]()
	queue := []*RoomNode{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if reached.Has(cur.ID) {
			continue
		}
		reached.Put(cur.ID)
		queue = append(queue, g.Children(cur)...)
	}
	return reached
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
