package collision

import (
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/tile"
)

// BodyKind tags what a fixture belongs to.
type BodyKind int

const (
	BodyBlock BodyKind = iota
	BodyEntity
)

// DoorLink names the door a sensor fixture stands for.
type DoorLink struct {
	Building common.BuildingID
	Door     common.DoorID
}

// BodyData is the side-table value stored per fixture. Entity is set for
// BodyEntity; Block and Door for BodyBlock, with Door nil unless the fixture
// is a resolved door.
type BodyData struct {
	Kind   BodyKind
	Entity ecs.Entity
	Block  tile.BlockType
	Door   *DoorLink
}

func (d BodyData) IsDoor() bool {
	return d.Kind == BodyBlock && d.Door != nil
}

// DoorResolver maps the cell of an interactable rectangle to the door that
// owns it.
type DoorResolver func(cell common.TilePoint) (DoorLink, bool)
