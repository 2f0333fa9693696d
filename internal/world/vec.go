// Package world provides 2D continuous-space primitives: positions and a
// spatial hash for neighbor queries.
package world

import "math"

// Vec2 is a position in continuous 2D playground space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another position.
func (v Vec2) DistanceTo(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}
