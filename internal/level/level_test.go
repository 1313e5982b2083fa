package level

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

const sampleYAML = `
name: Test Level
templates:
  - id: entrance
    name: Entrance
    type: Entrance
    lower: {x: 0, y: 0}
    upper: {x: 4, y: 4}
    doorways:
      - position: {x: 2, y: 4}
        orientation: north
        copyStart: {x: 1, y: 4}
        copyWidth: 3
        copyHeight: 1
  - id: ns
    type: CorridorNS
    lower: {x: 0, y: 0}
    upper: {x: 2, y: 3}
    doorways:
      - {position: {x: 1, y: 3}, orientation: north}
      - {position: {x: 1, y: 0}, orientation: south}
  - id: ew
    type: CorridorEW
    lower: {x: 0, y: 0}
    upper: {x: 3, y: 2}
    doorways:
      - {position: {x: 3, y: 1}, orientation: east}
      - {position: {x: 0, y: 1}, orientation: west}
  - id: boss
    type: boss room
    lower: {x: 0, y: 0}
    upper: {x: 6, y: 6}
    doorways:
      - {position: {x: 3, y: 0}, orientation: south}
graphs:
  - name: tiny
    nodes:
      - {id: e, type: Entrance, children: [c]}
      - {id: c, type: Corridor, children: [b]}
      - {id: b, type: Boss Room}
`

func TestParseLevel_YAML(t *testing.T) {
	lvl, err := ParseLevel([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Test Level", lvl.Name)
	require.Len(t, lvl.Templates, 4)
	require.Len(t, lvl.Graphs, 1)

	entrance, ok := lvl.Template("entrance")
	require.True(t, ok)
	assert.True(t, entrance.Type.Entrance)
	require.Len(t, entrance.Doorways, 1)
	assert.Equal(t, geometry.North, entrance.Doorways[0].Orientation)

	block, ok := entrance.Doorways[0].CopyBounds()
	require.True(t, ok)
	assert.Equal(t, geometry.Vec2{X: 3, Y: 4}, block.Upper)

	boss, ok := lvl.Template("boss")
	require.True(t, ok)
	assert.True(t, boss.Type.BossRoom, "type names are case-insensitive")

	g, ok := lvl.Graph("tiny")
	require.True(t, ok)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"c"}, g.Node("b").ParentIDs)

	require.NoError(t, lvl.Validate())
}

func TestParseLevel_JSONDevDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "json level",
		"templates": [{"id": "e", "type": "Entrance", "lower": {"x": 0, "y": 0}, "upper": {"x": 2, "y": 2}}],
		"graphs": [{"name": "g", "nodes": [{"id": "e", "type": "Entrance"}]}]
	}`), 0o644))

	lvl, err := LoadLevelFile(path)
	require.NoError(t, err)
	assert.Equal(t, "json level", lvl.Name)

	err = lvl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no E/W corridor")
	assert.Contains(t, err.Error(), "no N/S corridor")
}

func TestLoadLevelFile_Errors(t *testing.T) {
	_, err := LoadLevelFile("level.toml")
	assert.Error(t, err)

	_, err = LoadLevelFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read level file")
}

func TestParseLevel_SuggestsTypeNames(t *testing.T) {
	doc := `
name: typo
templates:
  - {id: e, type: Entrence, lower: {x: 0, y: 0}, upper: {x: 1, y: 1}}
`
	_, err := ParseLevel([]byte(doc), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Entrance"`)

	doc = `
name: typo
templates:
  - {id: e, type: Dragon Lair, lower: {x: 0, y: 0}, upper: {x: 1, y: 1}}
`
	_, err = ParseLevel([]byte(doc), FormatYAML)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestParseLevel_RejectsBadLinks(t *testing.T) {
	doc := `
name: bad
graphs:
  - name: g
    nodes:
      - {id: e, type: Entrance, children: [r]}
      - {id: r, type: Small Room}
`
	_, err := ParseLevel([]byte(doc), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corridors must alternate")
}

func TestDevLevel_Validates(t *testing.T) {
	lvl := DevLevel()
	require.NoError(t, lvl.Validate())
	assert.Len(t, lvl.Graphs, 2)
	assert.Len(t, lvl.TemplatesOfType(lvl.Types.Entrance()), 1)
}

func TestValidate_MissingTemplateForRoomType(t *testing.T) {
	lvl := DevLevel()
	var kept []*RoomTemplate
	for _, tmpl := range lvl.Templates {
		if tmpl.Type.Name != "Chest Room" {
			kept = append(kept, tmpl)
		}
	}
	lvl.Templates = kept

	err := lvl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no room template of type "Chest Room"`)
}

func TestValidate_DoorwayOutsideTemplate(t *testing.T) {
	lvl := DevLevel()
	lvl.Templates[0].Doorways[0].Position = geometry.Vec2{X: 99, Y: 99}
	assert.ErrorContains(t, lvl.Validate(), "lies outside the template")
}

func TestWithGraph(t *testing.T) {
	lvl := DevLevel()
	only, err := lvl.WithGraph("branching")
	require.NoError(t, err)
	require.Len(t, only.Graphs, 1)
	assert.Equal(t, "branching", only.Graphs[0].Name)
	assert.Len(t, lvl.Graphs, 2, "source level untouched")

	_, err = lvl.WithGraph("spiral")
	assert.ErrorIs(t, err, ErrUnknownGraph)
}

func TestShippedLevelFiles(t *testing.T) {
	paths, err := filepath.Glob("../../content/levels/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			lvl, err := LoadLevelFile(p)
			require.NoError(t, err)
			assert.NoError(t, lvl.Validate())
		})
	}
}

func TestParseLevel_OrientationCaseInsensitive(t *testing.T) {
	doc := strings.ReplaceAll(sampleYAML, "orientation: north", "orientation: North")
	lvl, err := ParseLevel([]byte(doc), FormatYAML)
	require.NoError(t, err)
	tmpl, ok := lvl.Template("entrance")
	require.True(t, ok)
	assert.Equal(t, geometry.North, tmpl.Doorways[0].Orientation)
}
