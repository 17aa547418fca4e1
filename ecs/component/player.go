package component

type Player struct {
	// MoveSpeed is in tiles per second.
	MoveSpeed float64
}

var PlayerComponent = NewComponent[Player]()
