package dungeon

import (
	"strings"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
)

const (
	glyphEmpty    = ' '
	glyphWall     = '#'
	glyphFloor    = '.'
	glyphDoorway  = 'D'
	glyphEntrance = 'E'
	glyphBoss     = 'B'
	glyphRoom     = 'R'
)

// ASCII draws the layout one character per cell, north at the top. Room
// edges are walls, connected doorways are 'D', and room centres are
// labelled E (entrance), B (boss) or R.
func ASCII(d *Dungeon) string {
	if d == nil || d.Len() == 0 {
		return ""
	}
	area := d.Bounds()
	w, h := area.Width(), area.Height()
	grid := make([][]byte, h)
	for row := range grid {
		grid[row] = []byte(strings.Repeat(string(glyphEmpty), w))
	}
	set := func(p geometry.Vec2, c byte) {
		row := area.Upper.Y - p.Y
		col := p.X - area.Lower.X
		grid[row][col] = c
	}

	for _, r := range d.Rooms() {
		b := r.Bounds
		for y := b.Lower.Y; y <= b.Upper.Y; y++ {
			for x := b.Lower.X; x <= b.Upper.X; x++ {
				c := byte(glyphFloor)
				if x == b.Lower.X || x == b.Upper.X || y == b.Lower.Y || y == b.Upper.Y {
					c = glyphWall
				}
				set(geometry.Vec2{X: x, Y: y}, c)
			}
		}
		for i, dw := range r.Doorways {
			if dw.Connected {
				set(r.DoorwayPosition(i), glyphDoorway)
			}
		}
		switch {
		case r.Type.Entrance:
			set(b.Center(), glyphEntrance)
		case r.Type.BossRoom:
			set(b.Center(), glyphBoss)
		case !r.Type.IsAnyCorridor():
			set(b.Center(), glyphRoom)
		}
	}

	var sb strings.Builder
	sb.Grow((w + 1) * h)
	for _, row := range grid {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
