package worldgraph

import (
	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/terrain"
)

// State tracks a world through the load pass.
type State int

const (
	Unvisited State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// World is one map with its own terrain and physics space.
//
// Outside worlds list the buildings whose footprints they contain. An
// interior points back at the single building it belongs to.
type World struct {
	ID      common.WorldID
	Name    string
	Outside bool
	State   State

	Terrain   *terrain.Model
	Collision *collision.Map

	// Spawn is the default arrival tile.
	Spawn common.TilePoint

	Buildings []common.BuildingID
	Building  common.BuildingID
	Doors     []common.DoorID
}

type Window struct {
	ID   common.WindowID
	Cell common.TilePoint
	Lit  bool
}

// Building is a footprint in an outside world plus the interior it leads to.
type Building struct {
	ID             common.BuildingID
	Bounds         common.Rect
	InsideWorldID  common.WorldID
	OutsideWorldID common.WorldID
	Windows        map[common.WindowID]Window
	Doors          map[common.DoorID]*Door
}

// TagKind says how a door names its destination.
type TagKind int

const (
	// TagNone doors resolve through the building they belong to.
	TagNone TagKind = iota
	TagExplicit
	TagNamed
	TagShare
)

func (k TagKind) String() string {
	switch k {
	case TagExplicit:
		return "explicit"
	case TagNamed:
		return "named"
	case TagShare:
		return "share"
	default:
		return "none"
	}
}

// Door is one half of a connection. Index is the authored door number;
// partners share it.
type Door struct {
	ID       common.DoorID
	Index    int
	WorldID  common.WorldID
	Cell     common.TilePoint
	Bounds   common.Rect
	Building common.BuildingID

	Tag         TagKind
	DestID      common.WorldID
	DestName    string
	ShareKey    string
	ShareSource string

	// Destination and Partner are zero until resolved.
	Destination common.WorldID
	Partner     common.DoorID
}

func (d *Door) Resolved() bool {
	return d.Destination != 0
}
