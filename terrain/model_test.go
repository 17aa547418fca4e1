package terrain

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tileworlds/atlas"
	"github.com/milk9111/tileworlds/tile"
	"github.com/milk9111/tileworlds/tmx"
)

// 2x2 map. Terrain holds grass, an H-flipped tree, a diagonal tree and dirt.
const layered = `<map width="2" height="2" tilewidth="32" tileheight="32">
 <layer name="Under1" width="2" height="2"><data encoding="csv">2,2,2,2</data></layer>
 <layer name="clouds" width="2" height="2"><data encoding="csv">0,0,0,0</data></layer>
 <layer name="terrain" width="2" height="2"><data encoding="csv">2,2147483654,536870918,3</data></layer>
 <layer name="roof" width="2" height="2" visible="0">
  <properties><property name="type" value="over"/></properties>
  <data encoding="csv">0,0,0,0</data>
 </layer>
 <layer name="over" width="2" height="2"><data encoding="csv">0,14,0,0</data></layer>
 <objectgroup name="buildings" visible="0">
  <object id="7" x="32" y="0" width="32" height="64">
   <properties><property name="building-world" value="house"/></properties>
  </object>
 </objectgroup>
 <objectgroup name="objects">
  <object id="9" gid="1073741830" x="16" y="64" width="32" height="32" rotation="90"/>
 </objectgroup>
</map>`

func load(t *testing.T, doc string) *Model {
	t.Helper()
	m, err := tmx.Parse(strings.NewReader(doc), "test")
	require.NoError(t, err)
	model, err := New(m)
	require.NoError(t, err)
	return model
}

func TestLayerDepthsAreContiguous(t *testing.T) {
	m := load(t, layered)

	var names []string
	for i, ly := range m.Layers() {
		assert.Equal(t, i, ly.Depth)
		names = append(names, ly.Name)
	}
	assert.Equal(t, []string{"Under1", "terrain", "over", "buildings", "objects"}, names)

	assert.Equal(t, KindUnderTerrain, m.Layer(0).Kind)
	assert.Equal(t, KindBuildings, m.Layer(3).Kind)
	assert.False(t, m.Layer(3).Visible)
	assert.Nil(t, m.Layer(5))

	require.Len(t, m.Over(), 1)
	assert.Equal(t, "over", m.Over()[0].Name)
	require.Len(t, m.Under(), 3)
	assert.Equal(t, "objects", m.Under()[2].Name)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		props tmx.Properties
		want  LayerKind
	}{
		{"terrain", tmx.Properties{}, KindTerrain},
		{"Terrain2", tmx.Properties{}, KindTerrain},
		{"under-terrain", tmx.Properties{}, KindUnderTerrain},
		{"Collisions", tmx.Properties{}, KindCollisions},
		{"roof", tmx.Properties{List: []tmx.Property{{Name: "type", Value: "overterrain"}}}, KindOverTerrain},
		{"terrain", tmx.Properties{List: []tmx.Property{{Name: "type", Value: "bogus"}}}, KindTerrain},
		{"sky", tmx.Properties{}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.name, tt.props))
		})
	}
}

func TestBlockAt(t *testing.T) {
	m := load(t, layered)

	assert.Equal(t, tile.Grass, m.BlockAt(1, 0, 0))
	assert.Equal(t, tile.Tree, m.BlockAt(1, 1, 0))
	assert.Equal(t, tile.Dirt, m.BlockAt(1, 1, 1))
	assert.Equal(t, tile.Roof, m.BlockAt(2, 1, 0))
	assert.Equal(t, tile.Blank, m.BlockAt(1, 2, 0))
	assert.Equal(t, tile.Blank, m.BlockAt(4, 0, 0), "object layers have no grid")
	assert.Equal(t, tile.Blank, m.BlockAt(9, 0, 0))
}

func TestObjectsAndShapes(t *testing.T) {
	m := load(t, layered)

	b := m.LayersOf(KindBuildings)
	require.Len(t, b, 1)
	require.Len(t, b[0].Shapes, 1)
	s := b[0].Shapes[0]
	assert.Equal(t, 1.0, s.Bounds.X)
	assert.Equal(t, 2.0, s.Bounds.Height)
	assert.Equal(t, 1, s.Cell().X)
	assert.Equal(t, 1, s.Cell().Y)

	objs := m.LayersOf(KindObjects)[0].Objects
	require.Len(t, objs, 1)
	o := objs[0]
	assert.Equal(t, tile.Tree, o.Tile.Block)
	assert.Equal(t, 0.5, o.Bounds.X)
	assert.Equal(t, 1.0, o.Bounds.Y, "bottom-left origin moves to top-left")
	assert.Equal(t, 90.0, o.Rotation)
}

func TestFlipKeys(t *testing.T) {
	m := load(t, layered)

	assert.Equal(t, []tile.FlipKey{
		tile.MakeFlipKey(tile.Tree, tile.FlagVertical),
		tile.MakeFlipKey(tile.Tree, tile.FlagHorizontal),
	}, m.FlipKeys())
}

func TestBuildGeometry(t *testing.T) {
	m := load(t, layered)

	// 16 tiles of 32px over 4 columns covers every block the map uses.
	b, err := atlas.NewBuilder(image.NewRGBA(image.Rect(0, 0, 128, 128)), 32)
	require.NoError(t, err)
	a, err := b.Convert(m.FlipKeys())
	require.NoError(t, err)
	m.BuildGeometry(a)

	assert.Len(t, m.Layer(0).Vertices, 4*VerticesPerQuad)
	assert.Len(t, m.Layer(1).Vertices, 4*VerticesPerQuad)
	assert.Len(t, m.Layer(2).Vertices, 1*VerticesPerQuad)
	assert.Empty(t, m.Layer(3).Vertices)
	assert.Len(t, m.Layer(4).Vertices, 1*VerticesPerQuad)

	// Terrain quad 1 is the H-flipped tree and samples the synthesized tile.
	idx, ok := a.Index(tile.MakeFlipKey(tile.Tree, tile.FlagHorizontal))
	require.True(t, ok)
	r := a.TileRect(idx)
	v := m.Layer(1).Vertices[VerticesPerQuad]
	assert.Equal(t, float32(32), v.DstX)
	assert.Equal(t, float32(0), v.DstY)
	assert.Equal(t, float32(r.Min.X), v.SrcX)
	assert.Equal(t, float32(r.Min.Y), v.SrcY)

	// Quad 2 is rotated -90: its top-left corner samples the top-right of
	// the source tile.
	idx, _ = a.Index(tile.MakeFlipKey(tile.Tree, tile.FlagHorizontal))
	r = a.TileRect(idx)
	v = m.Layer(1).Vertices[2*VerticesPerQuad]
	assert.Equal(t, float32(0), v.DstX)
	assert.Equal(t, float32(32), v.DstY)
	assert.Equal(t, float32(r.Max.X), v.SrcX)
	assert.Equal(t, float32(r.Min.Y), v.SrcY)

	// Rebuilding does not duplicate geometry.
	m.BuildGeometry(a)
	assert.Len(t, m.Layer(0).Vertices, 4*VerticesPerQuad)
}

func TestHiddenLayerPropertyOverride(t *testing.T) {
	doc := `<map width="1" height="1" tilewidth="16" tileheight="16">
 <layer name="terrain" width="1" height="1">
  <properties><property name="visible" type="bool" value="false"/></properties>
  <data encoding="csv">2</data>
 </layer>
 <layer name="collisions" width="1" height="1" visible="0"><data encoding="csv">2</data></layer>
</map>`
	m := load(t, doc)
	require.Len(t, m.Layers(), 1)
	assert.Equal(t, KindCollisions, m.Layer(0).Kind)
	assert.Equal(t, 16, m.TileSize)
}
