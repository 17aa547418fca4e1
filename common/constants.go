package common

const (
	// TileSize is the default edge length of a square tile in pixels.
	TileSize = 32

	// DefaultSolverIterations matches the iteration count every physics
	// space is created with.
	DefaultSolverIterations = 20

	// DefaultTimeStep is the fixed simulation delta in seconds.
	DefaultTimeStep = 1.0 / 60.0
)
