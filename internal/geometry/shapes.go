package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box returns an axis-aligned box centred on the origin.
func Box(name string, sx, sy, sz float64) *Mesh {
	x, y, z := sx/2, sy/2, sz/2
	v := []mgl64.Vec3{
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
	}
	f := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // back
		{4, 5, 6}, {4, 6, 7}, // front
		{0, 1, 5}, {0, 5, 4}, // bottom
		{3, 7, 6}, {3, 6, 2}, // top
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	m, _ := NewMesh(name, v, f)
	return m
}

// Capsule returns a Y-aligned cylinder with a hemispherical bottom cap and
// a flat top, the shape of a residual limb. segments controls smoothness.
func Capsule(name string, radius, length float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}
	var v []mgl64.Vec3
	var f [][3]int

	// Rings from the top rim down the shaft then around the cap.
	addRing := func(y, r float64) {
		for s := 0; s < segments; s++ {
			a := 2 * math.Pi * float64(s) / float64(segments)
			v = append(v, mgl64.Vec3{r * math.Cos(a), y, r * math.Sin(a)})
		}
	}
	addRing(length/2, radius)
	addRing(-length/2, radius)
	for i := 1; i < rings; i++ {
		phi := (math.Pi / 2) * float64(i) / float64(rings)
		addRing(-length/2-radius*math.Sin(phi), radius*math.Cos(phi))
	}
	ringCount := len(v) / segments

	for r := 0; r < ringCount-1; r++ {
		for s := 0; s < segments; s++ {
			a := r*segments + s
			b := r*segments + (s+1)%segments
			c := (r+1)*segments + s
			d := (r+1)*segments + (s+1)%segments
			f = append(f, [3]int{a, b, c}, [3]int{b, d, c})
		}
	}

	bottom := len(v)
	v = append(v, mgl64.Vec3{0, -length/2 - radius, 0})
	last := (ringCount - 1) * segments
	for s := 0; s < segments; s++ {
		f = append(f, [3]int{last + s, last + (s+1)%segments, bottom})
	}

	top := len(v)
	v = append(v, mgl64.Vec3{0, length / 2, 0})
	for s := 0; s < segments; s++ {
		f = append(f, [3]int{top, (s + 1) % segments, s})
	}

	m, _ := NewMesh(name, v, f)
	return m
}
