package level

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/nodegraph"
)

// Format selects the level file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// LevelDocument is the on-disk representation of a dungeon level.
type LevelDocument struct {
	Name      string                    `json:"name" yaml:"name"`
	Types     []*nodegraph.RoomNodeType `json:"types,omitempty" yaml:"types,omitempty"`
	Templates []TemplateDocument        `json:"templates" yaml:"templates"`
	Graphs    []GraphDocument           `json:"graphs" yaml:"graphs"`
}

// TemplateDocument describes a room template. Type is a room node type name.
type TemplateDocument struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Type           string            `json:"type" yaml:"type"`
	Lower          geometry.Vec2     `json:"lower" yaml:"lower"`
	Upper          geometry.Vec2     `json:"upper" yaml:"upper"`
	Doorways       []DoorwayDocument `json:"doorways" yaml:"doorways"`
	SpawnPositions []geometry.Vec2   `json:"spawnPositions,omitempty" yaml:"spawnPositions,omitempty"`
}

type DoorwayDocument struct {
	Position    geometry.Vec2 `json:"position" yaml:"position"`
	Orientation string        `json:"orientation" yaml:"orientation"`
	CopyStart   geometry.Vec2 `json:"copyStart" yaml:"copyStart"`
	CopyWidth   int           `json:"copyWidth" yaml:"copyWidth"`
	CopyHeight  int           `json:"copyHeight" yaml:"copyHeight"`
}

type GraphDocument struct {
	Name  string         `json:"name" yaml:"name"`
	Nodes []NodeDocument `json:"nodes" yaml:"nodes"`
}

type NodeDocument struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported level file extension %q", filepath.Ext(path))
}

// LoadLevelFile loads a level definition from a YAML or JSON file.
func LoadLevelFile(path string) (*DungeonLevel, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	lvl, err := ParseLevel(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes and resolves a level document.
func ParseLevel(data []byte, format Format) (*DungeonLevel, error) {
	var doc LevelDocument
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse level YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse level JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported level format %q", format)
	}
	return doc.Resolve()
}

// Resolve turns names into type pointers and links graph nodes.
func (doc *LevelDocument) Resolve() (*DungeonLevel, error) {
	types := nodegraph.DefaultTypeList()
	if len(doc.Types) > 0 {
		types = nodegraph.NewTypeList(doc.Types...)
	}

	lvl := &DungeonLevel{Name: doc.Name, Types: types}

	for i, td := range doc.Templates {
		rt, err := lookupType(types, td.Type)
		if err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i, td.ID, err)
		}
		tmpl := &RoomTemplate{
			ID:             td.ID,
			Name:           td.Name,
			Type:           rt,
			Bounds:         geometry.Bounds{Lower: td.Lower, Upper: td.Upper},
			SpawnPositions: td.SpawnPositions,
		}
		for j, dd := range td.Doorways {
			o, err := geometry.ParseOrientation(dd.Orientation)
			if err != nil {
				return nil, fmt.Errorf("template %s doorway %d: %w", td.ID, j, err)
			}
			tmpl.Doorways = append(tmpl.Doorways, Doorway{
				Position:    dd.Position,
				Orientation: o,
				CopyStart:   dd.CopyStart,
				CopyWidth:   dd.CopyWidth,
				CopyHeight:  dd.CopyHeight,
			})
		}
		lvl.Templates = append(lvl.Templates, tmpl)
	}

	for _, gd := range doc.Graphs {
		g, err := gd.build(types)
		if err != nil {
			return nil, err
		}
		lvl.Graphs = append(lvl.Graphs, g)
	}

	return lvl, nil
}

func (gd GraphDocument) build(types *nodegraph.TypeList) (*nodegraph.Graph, error) {
	g := nodegraph.NewGraph(gd.Name)
	for _, nd := range gd.Nodes {
		rt, err := lookupType(types, nd.Type)
		if err != nil {
			return nil, fmt.Errorf("graph %q node %s: %w", gd.Name, nd.ID, err)
		}
		if _, err := g.AddNode(nd.ID, rt); err != nil {
			return nil, fmt.Errorf("graph %q: %w", gd.Name, err)
		}
	}
	for _, nd := range gd.Nodes {
		for _, child := range nd.Children {
			if err := g.Connect(nd.ID, child); err != nil {
				return nil, fmt.Errorf("graph %q: %w", gd.Name, err)
			}
		}
	}
	return g, nil
}

func lookupType(types *nodegraph.TypeList, name string) (*nodegraph.RoomNodeType, error) {
	if rt, ok := types.Lookup(name); ok {
		return rt, nil
	}
	if s := suggestType(types, name); s != "" {
		return nil, fmt.Errorf("unknown room node type %q (did you mean %q?)", name, s)
	}
	return nil, fmt.Errorf("unknown room node type %q", name)
}

// suggestType returns the closest known type name within an edit distance
// proportional to its length, or "".
func suggestType(types *nodegraph.TypeList, name string) string {
	type candidate struct {
		name string
		dist int
	}
	in := strings.ToLower(strings.TrimSpace(name))
	if in == "" {
		return ""
	}
	var cands []candidate
	for _, known := range types.Names() {
		dist := levenshtein.ComputeDistance(in, strings.ToLower(known))
		if dist > suggestionLimit(len(known)) {
			continue
		}
		cands = append(cands, candidate{name: known, dist: dist})
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].name < cands[j].name
		}
		return cands[i].dist < cands[j].dist
	})
	return cands[0].name
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
