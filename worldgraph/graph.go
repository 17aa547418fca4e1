// Package worldgraph loads a root map and every world reachable from it
// through doors, and links the doors into bidirectional pairs.
package worldgraph

import (
	"fmt"
	"sort"

	"github.com/milk9111/tileworlds/atlas"
	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/tile"
)

// Graph is the result of one load pass. Worlds live in an arena indexed by
// WorldID.
type Graph struct {
	Root common.WorldID

	worlds    []*World
	byName    map[string]common.WorldID
	buildings map[common.BuildingID]*Building
	doors     map[common.DoorID]*Door
}

func newGraph() *Graph {
	return &Graph{
		byName:    make(map[string]common.WorldID),
		buildings: make(map[common.BuildingID]*Building),
		doors:     make(map[common.DoorID]*Door),
	}
}

// World returns the world with id, or nil.
func (g *Graph) World(id common.WorldID) *World {
	if id <= 0 || int(id) > len(g.worlds) {
		return nil
	}
	return g.worlds[id-1]
}

func (g *Graph) WorldByName(name string) *World {
	id, ok := g.byName[name]
	if !ok {
		return nil
	}
	return g.World(id)
}

// Worlds returns every world in ID order.
func (g *Graph) Worlds() []*World {
	return g.worlds
}

func (g *Graph) Building(id common.BuildingID) *Building {
	return g.buildings[id]
}

// Buildings returns every building in ID order.
func (g *Graph) Buildings() []*Building {
	out := make([]*Building, 0, len(g.buildings))
	for _, b := range g.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Graph) Door(id common.DoorID) *Door {
	return g.doors[id]
}

// Doors returns every door in ID order.
func (g *Graph) Doors() []*Door {
	out := make([]*Door, 0, len(g.doors))
	for _, d := range g.doors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DoorPairs counts doors that are each other's partner.
func (g *Graph) DoorPairs() int {
	n := 0
	for _, d := range g.doors {
		p := g.doors[d.Partner]
		if p != nil && p.Partner == d.ID && d.ID < p.ID {
			n++
		}
	}
	return n
}

// FlipKeys collects the flipped tiles of every world so one atlas can serve
// them all.
func (g *Graph) FlipKeys() []tile.FlipKey {
	seen := make(map[tile.FlipKey]struct{})
	var out []tile.FlipKey
	for _, w := range g.worlds {
		if w.Terrain == nil {
			continue
		}
		for _, k := range w.Terrain.FlipKeys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildGeometry lays out render geometry for every world against a.
func (g *Graph) BuildGeometry(a *atlas.Atlas) {
	for _, w := range g.worlds {
		if w.Terrain != nil {
			w.Terrain.BuildGeometry(a)
		}
	}
}

// Arrival returns where an entity walking through door id ends up, in
// tiles. It lands on the partner door's centre, one tile further south when
// the destination is outside so it steps out in front of the building. The
// step south is skipped when that cell is off the map or blocked.
func (g *Graph) Arrival(id common.DoorID) (common.WorldID, float64, float64, error) {
	d := g.doors[id]
	if d == nil {
		return 0, 0, 0, fmt.Errorf("worldgraph: unknown door %d", id)
	}
	dest := g.World(d.Destination)
	if dest == nil {
		return 0, 0, 0, fmt.Errorf("%w: door %d", ErrUnresolvedDoor, id)
	}

	cell := dest.Spawn
	if p := g.doors[d.Partner]; p != nil {
		cell = p.Cell
	}
	if dest.Outside && dest.Terrain != nil && !collision.Blocked(dest.Terrain, cell.X, cell.Y+1) {
		cell.Y++
	}
	x, y := cell.Centre()
	return dest.ID, x, y, nil
}
