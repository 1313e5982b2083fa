package geometry

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Region labels a box on the grid. ID 0 is reserved for empty cells.
type Region struct {
	ID     int
	Bounds Bounds
}

// RegionMap stores the owning region of every cell inside Area.
type RegionMap struct {
	Area          Bounds
	TileRegionIDs []int
	RegionsCount  int
}

// OverlapError reports the first cell claimed by two regions.
type OverlapError struct {
	Cell   Vec2
	First  int
	Second int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("cell %s claimed by regions %d and %d", e.Cell, e.First, e.Second)
}

// BuildRegionMap rasterises regions into a grid covering all of them.
// Region IDs must be positive and unique.
func BuildRegionMap(regions []Region) (RegionMap, error) {
	if len(regions) == 0 {
		return RegionMap{}, nil
	}

	area := regions[0].Bounds
	seen := mapset.New[int]()
	for _, r := range regions {
		if r.ID <= 0 {
			return RegionMap{}, fmt.Errorf("region id %d must be positive", r.ID)
		}
		if seen.Has(r.ID) {
			return RegionMap{}, fmt.Errorf("duplicate region id %d", r.ID)
		}
		if !r.Bounds.Valid() {
			return RegionMap{}, fmt.Errorf("region %d has inverted bounds", r.ID)
		}
		seen.Put(r.ID)
		area = area.Union(r.Bounds)
	}

	w, h := area.Width(), area.Height()
	tileRegionIDs := make([]int, w*h)

	for _, r := range regions {
		for y := r.Bounds.Lower.Y; y <= r.Bounds.Upper.Y; y++ {
			for x := r.Bounds.Lower.X; x <= r.Bounds.Upper.X; x++ {
				idx := (y-area.Lower.Y)*w + (x - area.Lower.X)
				if prev := tileRegionIDs[idx]; prev != 0 {
					return RegionMap{}, &OverlapError{Cell: Vec2{X: x, Y: y}, First: prev, Second: r.ID}
				}
				tileRegionIDs[idx] = r.ID
			}
		}
	}

	return RegionMap{Area: area, TileRegionIDs: tileRegionIDs, RegionsCount: seen.Size()}, nil
}

// RegionAt returns the region owning p, or 0 when p is empty or outside Area.
func (rm RegionMap) RegionAt(p Vec2) int {
	if len(rm.TileRegionIDs) == 0 || !rm.Area.Contains(p) {
		return 0
	}
	return rm.TileRegionIDs[(p.Y-rm.Area.Lower.Y)*rm.Area.Width()+(p.X-rm.Area.Lower.X)]
}

// RegionsAcross returns the regions on either side of the doorway cell p
// facing o.
func (rm RegionMap) RegionsAcross(p Vec2, o Orientation) (int, int) {
	return rm.RegionAt(p), rm.RegionAt(p.Add(o.Step()))
}
