package geometry

import (
	"errors"
	"testing"
)

func TestBuildRegionMap_LabelsCellsPerRegion(t *testing.T) {
	rm, err := BuildRegionMap([]Region{
		{ID: 1, Bounds: Bounds{Lower: Vec2{X: 0, Y: 0}, Upper: Vec2{X: 2, Y: 2}}},
		{ID: 2, Bounds: Bounds{Lower: Vec2{X: 3, Y: 1}, Upper: Vec2{X: 5, Y: 1}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.RegionsCount != 2 {
		t.Fatalf("expected 2 regions, got %d", rm.RegionsCount)
	}
	if rm.Area.Width() != 6 || rm.Area.Height() != 3 {
		t.Fatalf("unexpected area %+v", rm.Area)
	}
	if got := rm.RegionAt(Vec2{X: 1, Y: 1}); got != 1 {
		t.Errorf("expected region 1 at (1,1), got %d", got)
	}
	if got := rm.RegionAt(Vec2{X: 4, Y: 1}); got != 2 {
		t.Errorf("expected region 2 at (4,1), got %d", got)
	}
	if got := rm.RegionAt(Vec2{X: 4, Y: 2}); got != 0 {
		t.Errorf("expected empty cell at (4,2), got %d", got)
	}
	if got := rm.RegionAt(Vec2{X: 40, Y: 2}); got != 0 {
		t.Errorf("expected 0 outside area, got %d", got)
	}

	a, b := rm.RegionsAcross(Vec2{X: 2, Y: 1}, East)
	if a != 1 || b != 2 {
		t.Errorf("expected regions 1|2 across east doorway, got %d|%d", a, b)
	}
}

func TestBuildRegionMap_DetectsOverlap(t *testing.T) {
	_, err := BuildRegionMap([]Region{
		{ID: 1, Bounds: Bounds{Lower: Vec2{X: 0, Y: 0}, Upper: Vec2{X: 2, Y: 2}}},
		{ID: 2, Bounds: Bounds{Lower: Vec2{X: 2, Y: 2}, Upper: Vec2{X: 4, Y: 4}}},
	})
	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if overlap.Cell != (Vec2{X: 2, Y: 2}) {
		t.Errorf("expected overlap at (2,2), got %s", overlap.Cell)
	}
}

func TestBuildRegionMap_RejectsDuplicateIDs(t *testing.T) {
	b := Bounds{Lower: Vec2{X: 0, Y: 0}, Upper: Vec2{X: 1, Y: 1}}
	if _, err := BuildRegionMap([]Region{{ID: 1, Bounds: b}, {ID: 1, Bounds: b.Translate(Vec2{X: 5})}}); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestBounds_Overlaps(t *testing.T) {
	base := Bounds{Lower: Vec2{X: 0, Y: 0}, Upper: Vec2{X: 4, Y: 4}}
	cases := []struct {
		name  string
		other Bounds
		want  bool
	}{
		{"inside", Bounds{Lower: Vec2{X: 1, Y: 1}, Upper: Vec2{X: 2, Y: 2}}, true},
		{"shared edge column", Bounds{Lower: Vec2{X: 4, Y: 0}, Upper: Vec2{X: 8, Y: 4}}, true},
		{"adjacent column", Bounds{Lower: Vec2{X: 5, Y: 0}, Upper: Vec2{X: 8, Y: 4}}, false},
		{"x overlap only", Bounds{Lower: Vec2{X: 1, Y: 6}, Upper: Vec2{X: 2, Y: 8}}, false},
		{"corner touch", Bounds{Lower: Vec2{X: 4, Y: 4}, Upper: Vec2{X: 6, Y: 6}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrientation_OppositeAndStep(t *testing.T) {
	for _, o := range []Orientation{North, East, South, West} {
		if o.Opposite().Opposite() != o {
			t.Errorf("opposite of opposite of %s should be itself", o)
		}
		if s := o.Step().Add(o.Opposite().Step()); s != (Vec2{}) {
			t.Errorf("steps of %s and its opposite should cancel, got %s", o, s)
		}
	}
	if None.Opposite() != None {
		t.Errorf("none should have no opposite")
	}
	if _, err := ParseOrientation("up"); err == nil {
		t.Errorf("expected error for unknown orientation")
	}
}

func TestParseOrientation_IgnoresCase(t *testing.T) {
	for in, want := range map[string]Orientation{"North": North, "EAST": East, " south ": South, "West": West, "": None} {
		got, err := ParseOrientation(in)
		if err != nil {
			t.Fatalf("ParseOrientation(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseOrientation(%q) = %s, want %s", in, got, want)
		}
	}
}
