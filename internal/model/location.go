package model

// Position represents a player's coordinates and orientation in the world.
// Value type, passed by value (immutable).
type Position struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// NewPosition creates a Position at the given coordinates and orientation.
func NewPosition(x, y, z float64, yaw, pitch float32) Position {
	return Position{X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}
}

// WithOrientation returns a new Position with updated yaw/pitch (immutable pattern).
func (p Position) WithOrientation(yaw, pitch float32) Position {
	p.Yaw = yaw
	p.Pitch = pitch
	return p
}

// WithCoordinates returns a new Position with updated coordinates (immutable pattern).
func (p Position) WithCoordinates(x, y, z float64) Position {
	p.X = x
	p.Y = y
	p.Z = z
	return p
}

// DistanceSquared returns the squared distance to another point (no sqrt, for
// comparisons where the exact distance isn't needed).
func (p Position) DistanceSquared(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}
