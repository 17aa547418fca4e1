package collision

import (
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/terrain"
	"github.com/milk9111/tileworlds/tile"
	"github.com/milk9111/tileworlds/tmx"
)

// 4x3 map. Under: grass with a water pond; terrain: a bridge over the pond,
// two rocks and a sliding door; collisions: one barrier cell.
const yard = `<map width="4" height="3" tilewidth="32" tileheight="32">
 <layer name="under" width="4" height="3"><data encoding="csv">
2,5,5,2,
2,5,5,2,
2,2,2,2
</data></layer>
 <layer name="terrain" width="4" height="3"><data encoding="csv">
0,21,0,8,
0,0,0,8,
0,16,0,0
</data></layer>
 <layer name="collisions" width="4" height="3" visible="0"><data encoding="csv">
0,0,0,0,
0,0,0,0,
2,0,0,0
</data></layer>
 <objectgroup name="objects">
  <object id="1" gid="6" x="64" y="96" width="32" height="32" rotation="30"/>
  <object id="2" gid="2" x="0" y="32" width="32" height="32"/>
 </objectgroup>
</map>`

func yardModel(t *testing.T) *terrain.Model {
	t.Helper()
	m, err := tmx.Parse(strings.NewReader(yard), "yard")
	require.NoError(t, err)
	model, err := terrain.New(m)
	require.NoError(t, err)
	return model
}

func TestCandidates(t *testing.T) {
	got := Candidates(yardModel(t))

	byCell := map[common.TilePoint]Rect{}
	var objects []Rect
	for _, r := range got {
		if r.Rotation != 0 {
			objects = append(objects, r)
			continue
		}
		byCell[common.TilePoint{X: int(r.Bounds.X), Y: int(r.Bounds.Y)}] = r
	}

	// Bridge (1,0) covers water; (2,0) and (1,1),(2,1) stay water.
	_, bridged := byCell[common.TilePoint{X: 1, Y: 0}]
	assert.False(t, bridged)
	assert.Equal(t, tile.Water, byCell[common.TilePoint{X: 2, Y: 0}].Block)
	assert.Equal(t, tile.Water, byCell[common.TilePoint{X: 1, Y: 1}].Block)
	assert.Equal(t, tile.Rock, byCell[common.TilePoint{X: 3, Y: 0}].Block)
	assert.Equal(t, tile.Rock, byCell[common.TilePoint{X: 3, Y: 1}].Block)
	assert.Equal(t, tile.Grass, byCell[common.TilePoint{X: 0, Y: 2}].Block, "collisions layer blocks whatever it holds")

	door := byCell[common.TilePoint{X: 1, Y: 2}]
	assert.Equal(t, tile.SlidingDoor, door.Block)
	assert.True(t, door.Interactable)

	// 7 grid cells; the grass object is not collidable, the tree is.
	assert.Len(t, byCell, 7)
	require.Len(t, objects, 1)
	assert.Equal(t, tile.Tree, objects[0].Block)
	assert.Equal(t, 30.0, objects[0].Rotation)
}

func TestCandidatesLookThroughDecoration(t *testing.T) {
	const src = `<map width="3" height="1" tilewidth="32" tileheight="32">
 <layer name="under" width="3" height="1"><data encoding="csv">13,13,5</data></layer>
 <layer name="terrain" width="3" height="1"><data encoding="csv">20,0,21</data></layer>
</map>`
	m, err := tmx.Parse(strings.NewReader(src), "porch")
	require.NoError(t, err)
	model, err := terrain.New(m)
	require.NoError(t, err)

	got := Candidates(model)

	require.Len(t, got, 2, "flowers keep the wall; the bridge hides the water")
	for i, r := range got {
		assert.Equal(t, tile.BuildingWall, r.Block)
		assert.Equal(t, common.Rect{X: float64(i), Y: 0, Width: 1, Height: 1}, r.Bounds)
	}
}

func TestExtract(t *testing.T) {
	got := Extract(yardModel(t), 1)

	// barrier cell, water row band, water cell, rock column; then the door
	// and tree singletons; then four borders.
	require.Len(t, got, 10)
	assert.Equal(t, common.Rect{X: 0, Y: 2, Width: 1, Height: 1}, got[0].Bounds)
	assert.Equal(t, common.Rect{X: 1, Y: 1, Width: 2, Height: 1}, got[1].Bounds)
	assert.Equal(t, tile.Water, got[1].Block)
	assert.Equal(t, common.Rect{X: 3, Y: 0, Width: 1, Height: 2}, got[3].Bounds)
	assert.Equal(t, tile.SlidingDoor, got[4].Block)
	assert.Equal(t, tile.Tree, got[5].Block)
	assert.Equal(t, tile.Barrier, got[9].Block)
}

func TestRegisterBuildsSideTable(t *testing.T) {
	m := NewMap("yard", Options{Scale: 10})
	rects := Extract(yardModel(t), 1)

	link := DoorLink{Building: 1, Door: 3}
	m.Register(rects, func(cell common.TilePoint) (DoorLink, bool) {
		if cell == (common.TilePoint{X: 1, Y: 2}) {
			return link, true
		}
		return DoorLink{}, false
	})

	assert.Equal(t, len(rects), m.Fixtures())
	assert.Equal(t, 1, m.Sensors())
	assert.Equal(t, 0, m.Degraded())
	assert.False(t, m.Active())

	var doors, blocks int
	m.Space().EachShape(func(s *cp.Shape) {
		d, ok := m.Lookup(s)
		require.True(t, ok)
		if d.IsDoor() {
			doors++
			assert.Equal(t, link, *d.Door)
			assert.True(t, s.Sensor())
			bb := s.BB()
			assert.InDelta(t, 10, bb.L, 1e-9)
			assert.InDelta(t, 20, bb.B, 1e-9)
			return
		}
		blocks++
	})
	assert.Equal(t, 1, doors)
	assert.Equal(t, len(rects)-1, blocks)
}

func TestRegisterDegradesUnresolvedDoor(t *testing.T) {
	m := NewMap("yard", Options{})
	door := Rect{Bounds: common.Rect{X: 2, Y: 2, Width: 1, Height: 1}, Block: tile.SlidingDoor, Interactable: true}

	m.Register([]Rect{door}, nil)

	assert.Equal(t, 1, m.Degraded())
	assert.Equal(t, 1, m.Fixtures())
	m.Space().EachShape(func(s *cp.Shape) {
		d, ok := m.Lookup(s)
		require.True(t, ok)
		assert.False(t, d.IsDoor())
		assert.Equal(t, tile.SlidingDoor, d.Block)
		assert.False(t, s.Sensor())
	})
	assert.Zero(t, m.Sensors())
}

func TestBlocked(t *testing.T) {
	model := yardModel(t)

	assert.True(t, Blocked(model, 2, 0), "water")
	assert.False(t, Blocked(model, 1, 0), "bridge")
	assert.False(t, Blocked(model, 2, 2), "grass")
	assert.True(t, Blocked(model, 1, 2), "door tile")
	assert.True(t, Blocked(model, 0, 3), "below the map")
	assert.True(t, Blocked(model, -1, 0), "left of the map")
}

func TestDoorContact(t *testing.T) {
	m := NewMap("yard", Options{Scale: 32})
	link := DoorLink{Building: 2, Door: 5}
	m.AddDoorSensor(common.Rect{X: 1, Y: 1, Width: 1, Height: 1}, link)

	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)

	var touched []DoorLink
	m.OnDoorContact(func(got ecs.Entity, door DoorLink) {
		assert.Equal(t, e, got)
		touched = append(touched, door)
	})

	assert.False(t, m.Step(1.0/60), "empty worlds are not stepped")

	body := cp.NewBody(1, cp.MomentForBox(1, 16, 16))
	body.SetPosition(cp.Vector{X: 48, Y: 48})
	shape := cp.NewBox(body, 16, 16, 0)
	m.AttachEntity(e, body, shape)
	require.True(t, m.Active())
	require.True(t, m.Contains(body))

	assert.True(t, m.Step(1.0/60))
	assert.Equal(t, []DoorLink{link}, touched)

	d, ok := m.Lookup(shape)
	require.True(t, ok)
	assert.Equal(t, BodyEntity, d.Kind)

	m.DetachEntity(body, shape)
	assert.False(t, m.Active())
	assert.False(t, m.Contains(body))
	_, ok = m.Lookup(shape)
	assert.False(t, ok)
}
