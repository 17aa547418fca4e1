package component

import "github.com/milk9111/tileworlds/common"

// Camera follows Target (an ecs.Entity) inside WorldID. The centre is in
// tiles.
type Camera struct {
	Target  uint64
	WorldID common.WorldID
	CentreX float64
	CentreY float64
	Zoom    float64
}

var CameraComponent = NewComponent[Camera]()
