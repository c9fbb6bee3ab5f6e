package domain

import (
	"fmt"
	"math"
)

// Vec3 is a position in a mesh's local coordinate space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// String formats the vector with three decimals per component.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// Ptr returns a pointer to a copy of v.
func (v Vec3) Ptr() *Vec3 {
	return &v
}
