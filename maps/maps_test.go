package maps

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/tile"
	"github.com/milk9111/tileworlds/worldgraph"
)

func TestSampleWorlds(t *testing.T) {
	g, err := worldgraph.NewLoader(worldgraph.Options{FS: Embedded(), Physics: collision.Options{Scale: 32}}).Load("outside")
	require.NoError(t, err)

	require.Len(t, g.Worlds(), 3)
	assert.NotNil(t, g.WorldByName("house"))
	cave := g.WorldByName("cave")
	require.NotNil(t, cave)
	assert.False(t, cave.Outside, "the cave mouth is a building")
	assert.Len(t, g.Buildings(), 2)
	assert.Len(t, g.Doors(), 4)
	assert.Equal(t, 2, g.DoorPairs())

	b := g.Buildings()[0]
	assert.Len(t, b.Windows, 2)
	assert.True(t, b.Windows[1].Lit)

	outside := g.World(g.Root)
	assert.Equal(t, 3, outside.Spawn.X)
	assert.Equal(t, 6, outside.Spawn.Y)
	assert.Zero(t, outside.Collision.Degraded())
	assert.Equal(t, 2, outside.Collision.Sensors())

	keys := g.FlipKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, tile.Tree, keys[0].Block())
	assert.True(t, keys[0].Horizontal())
}

func TestOverlayPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "house.tmx"), []byte("<map/>"), 0o644))

	fsys := FS(dir)
	data, err := fs.ReadFile(fsys, "house.tmx")
	require.NoError(t, err)
	assert.Equal(t, "<map/>", string(data))

	data, err = fs.ReadFile(fsys, "cave.tmx")
	require.NoError(t, err)
	assert.Contains(t, string(data), "tunnel")

	_, err = fs.ReadFile(fsys, "nowhere.tmx")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, ok := ModTime(dir, "house.tmx")
	assert.True(t, ok)
	_, ok = ModTime("", "house.tmx")
	assert.False(t, ok)
}

func TestWatcherReportsMapEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "field.tmx"), []byte("<map/>"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, "field.tmx", filepath.Base(name))
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for field.tmx")
	}
}

func TestIsMapFile(t *testing.T) {
	assert.True(t, isMapFile("maps/outside.tmx"))
	assert.True(t, isMapFile("TILES.TSX"))
	assert.False(t, isMapFile("config.yaml"))
}
