package component

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/tileworlds/common"
)

// PhysicsBody binds an entity to its body in exactly one world's space.
// Width and Height are in physics units.
type PhysicsBody struct {
	Body     *cp.Body
	Shape    *cp.Shape
	Space    *cp.Space
	WorldID  common.WorldID
	Width    float64
	Height   float64
	Mass     float64
	Friction float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
