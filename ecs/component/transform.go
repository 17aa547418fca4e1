package component

// Transform is the entity centre in physics units, mirrored from its body
// after each step.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
