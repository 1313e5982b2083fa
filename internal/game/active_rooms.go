package game

import (
	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

// ActiveRooms returns the ids of rooms that intersect view, in placement
// order. Rooms outside the view can be put to sleep by the caller.
func ActiveRooms(d *dungeon.Dungeon, view geometry.Bounds) []string {
	if d == nil {
		return nil
	}
	var ids []string
	for _, r := range d.Rooms() {
		if r.Bounds.Overlaps(view) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
