package tile

import "fmt"

// BlockType is the 0-based index of a tile in the base tileset.
type BlockType uint16

const (
	Blank BlockType = iota
	Grass
	Dirt
	Sand
	Water
	Tree
	Bush
	Rock
	Fence
	Path
	Floor
	Carpet
	BuildingWall
	Roof
	Window
	SlidingDoor
	Table
	Counter
	Bed
	Flowers
	Bridge
	Stairs
	Lamp
	Barrier

	BlockCount
)

var blockNames = [BlockCount]string{
	Blank:        "blank",
	Grass:        "grass",
	Dirt:         "dirt",
	Sand:         "sand",
	Water:        "water",
	Tree:         "tree",
	Bush:         "bush",
	Rock:         "rock",
	Fence:        "fence",
	Path:         "path",
	Floor:        "floor",
	Carpet:       "carpet",
	BuildingWall: "building_wall",
	Roof:         "roof",
	Window:       "window",
	SlidingDoor:  "sliding_door",
	Table:        "table",
	Counter:      "counter",
	Bed:          "bed",
	Flowers:      "flowers",
	Bridge:       "bridge",
	Stairs:       "stairs",
	Lamp:         "lamp",
	Barrier:      "barrier",
}

func (b BlockType) String() string {
	if b < BlockCount {
		return blockNames[b]
	}
	return fmt.Sprintf("block(%d)", uint16(b))
}

func (b BlockType) Valid() bool {
	return b < BlockCount
}

var collidable = map[BlockType]struct{}{
	Water:        {},
	Tree:         {},
	Rock:         {},
	Fence:        {},
	BuildingWall: {},
	Window:       {},
	Table:        {},
	Counter:      {},
	Bed:          {},
	Lamp:         {},
	Barrier:      {},
}

var interactable = map[BlockType]struct{}{
	SlidingDoor: {},
}

// IsCollidable reports whether tiles of this type block movement.
func IsCollidable(b BlockType) bool {
	_, ok := collidable[b]
	return ok
}

// IsInteractable reports whether tiles of this type need their own fixture
// so contacts with them can be detected. Interactable blocks never collide.
func IsInteractable(b BlockType) bool {
	_, ok := interactable[b]
	return ok
}
