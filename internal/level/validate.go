package level

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Validate checks that the level can be built: it has templates and
// graphs, corridor and entrance templates exist, and every concrete room
// type used by a graph has at least one template. All problems are joined.
func (l *DungeonLevel) Validate() error {
	var errs []error

	if l.Name == "" {
		errs = append(errs, errors.New("level name is empty"))
	}
	if len(l.Templates) == 0 {
		errs = append(errs, errors.New("level has no room templates"))
	}
	if len(l.Graphs) == 0 {
		errs = append(errs, errors.New("level has no room node graphs"))
	}

	ids := mapset.New[string]()
	var hasEW, hasNS, hasEntrance bool
	for _, t := range l.Templates {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("template %q has no id", t.Name))
		} else if ids.Has(t.ID) {
			errs = append(errs, fmt.Errorf("duplicate room template id %q", t.ID))
		}
		ids.Put(t.ID)

		if !t.Bounds.Valid() {
			errs = append(errs, fmt.Errorf("template %s has inverted bounds", t.ID))
		}
		for i, d := range t.Doorways {
			if !t.Bounds.Contains(d.Position) {
				errs = append(errs, fmt.Errorf("template %s doorway %d at %s lies outside the template", t.ID, i, d.Position))
			}
		}

		hasEW = hasEW || t.Type.CorridorEW
		hasNS = hasNS || t.Type.CorridorNS
		hasEntrance = hasEntrance || t.Type.Entrance
	}
	if !hasEW {
		errs = append(errs, fmt.Errorf("level %q: no E/W corridor room template", l.Name))
	}
	if !hasNS {
		errs = append(errs, fmt.Errorf("level %q: no N/S corridor room template", l.Name))
	}
	if !hasEntrance {
		errs = append(errs, fmt.Errorf("level %q: no entrance room template", l.Name))
	}

	for _, g := range l.Graphs {
		if err := g.Validate(); err != nil {
			errs = append(errs, err)
		}
		for _, n := range g.Nodes() {
			rt := n.Type
			// corridors and entrance are covered above
			if rt.Entrance || rt.IsAnyCorridor() || rt.None {
				continue
			}
			if len(l.TemplatesOfType(rt)) == 0 {
				errs = append(errs, fmt.Errorf("level %q: no room template of type %q for graph %q", l.Name, rt.Name, g.Name))
			}
		}
	}

	return errors.Join(errs...)
}
