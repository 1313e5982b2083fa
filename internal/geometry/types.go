package geometry

import (
	"fmt"
	"strings"
)

// Orientation is the side of a room a doorway faces.
type Orientation string

const (
	North Orientation = "north"
	East  Orientation = "east"
	South Orientation = "south"
	West  Orientation = "west"
	None  Orientation = "none"
)

// ParseOrientation accepts the orientation names used in level files in any
// case. An empty string maps to None.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case North, East, South, West, None:
		return o, nil
	case "":
		return None, nil
	}
	return None, fmt.Errorf("unknown orientation %q", s)
}

// Opposite returns the orientation a connecting doorway must face.
func (o Orientation) Opposite() Orientation {
	switch o {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return None
}

// IsNorthSouth reports whether the orientation lies on the vertical axis.
func (o Orientation) IsNorthSouth() bool {
	return o == North || o == South
}

// IsEastWest reports whether the orientation lies on the horizontal axis.
func (o Orientation) IsEastWest() bool {
	return o == East || o == West
}

// Step is the unit offset from a doorway cell to the cell just outside it.
func (o Orientation) Step() Vec2 {
	switch o {
	case North:
		return Vec2{X: 0, Y: 1}
	case East:
		return Vec2{X: 1, Y: 0}
	case South:
		return Vec2{X: 0, Y: -1}
	case West:
		return Vec2{X: -1, Y: 0}
	}
	return Vec2{}
}

// Vec2 is an integer grid coordinate. Y grows northwards.
type Vec2 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Bounds is an axis-aligned box whose Lower and Upper corners are both
// inside the box.
type Bounds struct {
	Lower Vec2 `json:"lower" yaml:"lower"`
	Upper Vec2 `json:"upper" yaml:"upper"`
}

func (b Bounds) Width() int  { return b.Upper.X - b.Lower.X + 1 }
func (b Bounds) Height() int { return b.Upper.Y - b.Lower.Y + 1 }

// Valid reports whether Lower is not above or right of Upper.
func (b Bounds) Valid() bool {
	return b.Lower.X <= b.Upper.X && b.Lower.Y <= b.Upper.Y
}

func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.Lower.X && p.X <= b.Upper.X && p.Y >= b.Lower.Y && p.Y <= b.Upper.Y
}

// Overlaps uses inclusive intervals on both axes, so boxes sharing an edge
// row or column overlap.
func (b Bounds) Overlaps(o Bounds) bool {
	return intervalsOverlap(b.Lower.X, b.Upper.X, o.Lower.X, o.Upper.X) &&
		intervalsOverlap(b.Lower.Y, b.Upper.Y, o.Lower.Y, o.Upper.Y)
}

func (b Bounds) Translate(d Vec2) Bounds {
	return Bounds{Lower: b.Lower.Add(d), Upper: b.Upper.Add(d)}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Lower: Vec2{X: min(b.Lower.X, o.Lower.X), Y: min(b.Lower.Y, o.Lower.Y)},
		Upper: Vec2{X: max(b.Upper.X, o.Upper.X), Y: max(b.Upper.Y, o.Upper.Y)},
	}
}

// Center rounds towards Lower.
func (b Bounds) Center() Vec2 {
	return Vec2{X: (b.Lower.X + b.Upper.X) / 2, Y: (b.Lower.Y + b.Upper.Y) / 2}
}

func intervalsOverlap(min1, max1, min2, max2 int) bool {
	return max(min1, min2) <= min(max1, max2)
}
