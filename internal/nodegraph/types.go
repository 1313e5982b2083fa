package nodegraph

import "strings"

// MaxChildCorridors bounds how many corridors may lead out of a single room.
// Three is allowed but makes layouts fail to fit far more often.
const MaxChildCorridors = 3

// RoomNodeType describes an abstract kind of room. Exactly one type in a
// TypeList should carry each of the Entrance, Corridor, CorridorNS,
// CorridorEW, BossRoom and None flags.
type RoomNodeType struct {
	Name            string `json:"name" yaml:"name"`
	DisplayInEditor bool   `json:"displayInEditor" yaml:"displayInEditor"`
	Corridor        bool   `json:"corridor,omitempty" yaml:"corridor,omitempty"`
	CorridorNS      bool   `json:"corridorNS,omitempty" yaml:"corridorNS,omitempty"`
	CorridorEW      bool   `json:"corridorEW,omitempty" yaml:"corridorEW,omitempty"`
	Entrance        bool   `json:"entrance,omitempty" yaml:"entrance,omitempty"`
	BossRoom        bool   `json:"bossRoom,omitempty" yaml:"bossRoom,omitempty"`
	None            bool   `json:"none,omitempty" yaml:"none,omitempty"`
}

// IsAnyCorridor is true for the abstract corridor and both oriented variants.
func (t *RoomNodeType) IsAnyCorridor() bool {
	return t.Corridor || t.CorridorNS || t.CorridorEW
}

// TypeList is the registry of room node types, used in place of an enum.
type TypeList struct {
	types  []*RoomNodeType
	byName map[string]*RoomNodeType
}

// NewTypeList indexes types by lower-cased name. Later duplicates replace
// earlier ones in the index but both stay in the ordered list.
func NewTypeList(types ...*RoomNodeType) *TypeList {
	tl := &TypeList{byName: make(map[string]*RoomNodeType, len(types))}
	for _, t := range types {
		tl.types = append(tl.types, t)
		tl.byName[strings.ToLower(t.Name)] = t
	}
	return tl
}

// DefaultTypeList returns the standard set of room types.
func DefaultTypeList() *TypeList {
	return NewTypeList(
		&RoomNodeType{Name: "None", None: true},
		&RoomNodeType{Name: "Entrance", DisplayInEditor: true, Entrance: true},
		&RoomNodeType{Name: "Corridor", DisplayInEditor: true, Corridor: true},
		&RoomNodeType{Name: "CorridorNS", CorridorNS: true},
		&RoomNodeType{Name: "CorridorEW", CorridorEW: true},
		&RoomNodeType{Name: "Small Room", DisplayInEditor: true},
		&RoomNodeType{Name: "Medium Room", DisplayInEditor: true},
		&RoomNodeType{Name: "Large Room", DisplayInEditor: true},
		&RoomNodeType{Name: "Chest Room", DisplayInEditor: true},
		&RoomNodeType{Name: "Boss Room", DisplayInEditor: true, BossRoom: true},
	)
}

func (tl *TypeList) All() []*RoomNodeType { return tl.types }

// Names lists type names in registry order.
func (tl *TypeList) Names() []string {
	names := make([]string, len(tl.types))
	for i, t := range tl.types {
		names[i] = t.Name
	}
	return names
}

// Lookup is case-insensitive.
func (tl *TypeList) Lookup(name string) (*RoomNodeType, bool) {
	t, ok := tl.byName[strings.ToLower(name)]
	return t, ok
}

// Find returns the first type matching pred, or nil.
func (tl *TypeList) Find(pred func(*RoomNodeType) bool) *RoomNodeType {
	for _, t := range tl.types {
		if pred(t) {
			return t
		}
	}
	return nil
}

func (tl *TypeList) Entrance() *RoomNodeType {
	return tl.Find(func(t *RoomNodeType) bool { return t.Entrance })
}

func (tl *TypeList) CorridorNS() *RoomNodeType {
	return tl.Find(func(t *RoomNodeType) bool { return t.CorridorNS })
}

func (tl *TypeList) CorridorEW() *RoomNodeType {
	return tl.Find(func(t *RoomNodeType) bool { return t.CorridorEW })
}

// RoomNode is one vertex of a room node graph.
type RoomNode struct {
	ID        string
	Type      *RoomNodeType
	ParentIDs []string
	ChildIDs  []string
}

// IsEntrance reports whether the node is the graph's root.
func (n *RoomNode) IsEntrance() bool {
	return n.Type != nil && n.Type.Entrance
}
