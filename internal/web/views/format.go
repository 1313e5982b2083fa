package views

import (
	"strings"

	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

func roomStatus(r protocol.RoomLite) string {
	var parts []string
	if r.Cleared {
		parts = append(parts, "cleared")
	}
	if r.Visited {
		parts = append(parts, "visited")
	}
	return strings.Join(parts, " ")
}

// roomDoors lists the state of each door of room id, empty before a game
// has started.
func roomDoors(s protocol.DungeonSnapshot, id string) string {
	if s.Game == nil {
		return ""
	}
	return strings.Join(s.Game.Doors[id], ", ")
}
