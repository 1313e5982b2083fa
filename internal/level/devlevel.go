package level

import "github.com/Ko-stant/dungeon-builder/internal/geometry"

func v(x, y int) geometry.Vec2 { return geometry.Vec2{X: x, Y: y} }

// squareDoorways puts one doorway in the middle of each side of a room
// spanning (0,0)-(w-1,h-1), each walled off by a three tile block.
func squareDoorways(w, h int) []DoorwayDocument {
	mx, my := (w-1)/2, (h-1)/2
	return []DoorwayDocument{
		{Position: v(mx, h-1), Orientation: "north", CopyStart: v(mx-1, h-1), CopyWidth: 3, CopyHeight: 1},
		{Position: v(w-1, my), Orientation: "east", CopyStart: v(w-1, my-1), CopyWidth: 1, CopyHeight: 3},
		{Position: v(mx, 0), Orientation: "south", CopyStart: v(mx-1, 0), CopyWidth: 3, CopyHeight: 1},
		{Position: v(0, my), Orientation: "west", CopyStart: v(0, my-1), CopyWidth: 1, CopyHeight: 3},
	}
}

func squareTemplate(id, name, typ string, w, h int) TemplateDocument {
	return TemplateDocument{
		ID:             id,
		Name:           name,
		Type:           typ,
		Lower:          v(0, 0),
		Upper:          v(w-1, h-1),
		Doorways:       squareDoorways(w, h),
		SpawnPositions: []geometry.Vec2{v((w-1)/2, (h-1)/2), v(1, 1), v(w-2, h-2)},
	}
}

// DevLevelDocument is a small self-contained level used when no level file
// is configured, and by tests.
func DevLevelDocument() LevelDocument {
	return LevelDocument{
		Name: "The Cellars",
		Templates: []TemplateDocument{
			squareTemplate("entrance-1", "Entrance Hall", "Entrance", 10, 10),
			{
				ID: "corridor-ns-1", Name: "Corridor N/S", Type: "CorridorNS",
				Lower: v(0, 0), Upper: v(2, 5),
				Doorways: []DoorwayDocument{
					{Position: v(1, 5), Orientation: "north"},
					{Position: v(1, 0), Orientation: "south"},
				},
			},
			{
				ID: "corridor-ew-1", Name: "Corridor E/W", Type: "CorridorEW",
				Lower: v(0, 0), Upper: v(5, 2),
				Doorways: []DoorwayDocument{
					{Position: v(5, 1), Orientation: "east"},
					{Position: v(0, 1), Orientation: "west"},
				},
			},
			squareTemplate("small-room-1", "Guard Post", "Small Room", 8, 8),
			squareTemplate("small-room-2", "Storeroom", "Small Room", 7, 9),
			squareTemplate("medium-room-1", "Barracks", "Medium Room", 12, 10),
			squareTemplate("large-room-1", "Great Hall", "Large Room", 16, 14),
			squareTemplate("chest-room-1", "Treasury", "Chest Room", 6, 6),
			squareTemplate("boss-room-1", "Throne Room", "Boss Room", 14, 14),
		},
		Graphs: []GraphDocument{
			{
				Name: "linear",
				Nodes: []NodeDocument{
					{ID: "entrance", Type: "Entrance", Children: []string{"c1"}},
					{ID: "c1", Type: "Corridor", Children: []string{"small"}},
					{ID: "small", Type: "Small Room", Children: []string{"c2"}},
					{ID: "c2", Type: "Corridor", Children: []string{"medium"}},
					{ID: "medium", Type: "Medium Room", Children: []string{"c3"}},
					{ID: "c3", Type: "Corridor", Children: []string{"boss"}},
					{ID: "boss", Type: "Boss Room"},
				},
			},
			{
				Name: "branching",
				Nodes: []NodeDocument{
					{ID: "entrance", Type: "Entrance", Children: []string{"c1", "c2"}},
					{ID: "c1", Type: "Corridor", Children: []string{"small"}},
					{ID: "c2", Type: "Corridor", Children: []string{"medium"}},
					{ID: "small", Type: "Small Room", Children: []string{"c3"}},
					{ID: "c3", Type: "Corridor", Children: []string{"chest"}},
					{ID: "chest", Type: "Chest Room"},
					{ID: "medium", Type: "Medium Room", Children: []string{"c4"}},
					{ID: "c4", Type: "Corridor", Children: []string{"large"}},
					{ID: "large", Type: "Large Room", Children: []string{"c5"}},
					{ID: "c5", Type: "Corridor", Children: []string{"boss"}},
					{ID: "boss", Type: "Boss Room"},
				},
			},
		},
	}
}

// DevLevel resolves DevLevelDocument. It panics only if the built-in
// document itself is malformed.
func DevLevel() *DungeonLevel {
	doc := DevLevelDocument()
	lvl, err := doc.Resolve()
	if err != nil {
		panic("dev level: " + err.Error())
	}
	return lvl
}
