package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// Mesh is an indexed triangle mesh with a model (local-to-world) transform.
// A Mesh is not safe for concurrent use.
type Mesh struct {
	Name     string
	Vertices []mgl64.Vec3
	Faces    [][3]int

	model    mgl64.Mat4
	inverse  mgl64.Mat4
	world    [][3]mgl64.Vec3
	center   mgl64.Vec3
	radius   float64
	worldSet bool
}

// Hit is a ray/mesh intersection.
type Hit struct {
	Distance float64
	World    mgl64.Vec3
	Local    domain.Vec3
}

// NewMesh validates face indices and returns a mesh with identity transform.
func NewMesh(name string, vertices []mgl64.Vec3, faces [][3]int) (*Mesh, error) {
	if len(vertices) == 0 || len(faces) == 0 {
		return nil, fmt.Errorf("mesh %q: %w: no geometry", name, domain.ErrInvalidInput)
	}
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("mesh %q: %w: face %d references vertex %d", name, domain.ErrInvalidInput, i, idx)
			}
		}
	}
	m := &Mesh{Name: name, Vertices: vertices, Faces: faces}
	m.SetModel(mgl64.Ident4())
	return m, nil
}

// Model returns the local-to-world transform.
func (m *Mesh) Model() mgl64.Mat4 {
	return m.model
}

// SetModel replaces the local-to-world transform.
func (m *Mesh) SetModel(model mgl64.Mat4) {
	m.model = model
	m.inverse = model.Inv()
	m.worldSet = false
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	inf := math.Inf(1)
	lo = mgl64.Vec3{inf, inf, inf}
	hi = mgl64.Vec3{-inf, -inf, -inf}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], v[i])
			hi[i] = math.Max(hi[i], v[i])
		}
	}
	return lo, hi
}

// Normalize re-centres the mesh on the origin and scales its largest
// dimension to 3 units. Local coordinates are unaffected.
func (m *Mesh) Normalize() {
	lo, hi := m.Bounds()
	m.SetModel(NormalizeTransform(lo, hi))
}

// NormalizeTransform returns the model transform that centres a bounding
// box on the origin with its largest dimension scaled to 3.
func NormalizeTransform(lo, hi mgl64.Vec3) mgl64.Mat4 {
	size := hi.Sub(lo)
	maxDim := math.Max(size[0], math.Max(size[1], size[2]))
	if maxDim <= 0 {
		return mgl64.Ident4()
	}
	scale := 3.0 / maxDim
	center := lo.Add(hi).Mul(0.5)
	pos := center.Mul(-scale)
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(mgl64.Scale3D(scale, scale, scale))
}

// LocalToWorld applies the model transform.
func (m *Mesh) LocalToWorld(p domain.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, m.model)
}

// WorldToLocal applies the inverse model transform.
func (m *Mesh) WorldToLocal(p mgl64.Vec3) domain.Vec3 {
	l := mgl64.TransformCoordinate(p, m.inverse)
	return domain.Vec3{X: l[0], Y: l[1], Z: l[2]}
}

// Intersect returns the nearest hit of r with the mesh surface.
func (m *Mesh) Intersect(r Ray) (Hit, bool) {
	m.ensureWorld()

	// Bounding sphere early out.
	oc := r.Origin.Sub(m.center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - m.radius*m.radius
	if c > 0 && b > 0 {
		return Hit{}, false
	}
	if b*b-c < 0 {
		return Hit{}, false
	}

	best := math.Inf(1)
	for _, tri := range m.world {
		if t, ok := intersectTriangle(r, tri[0], tri[1], tri[2]); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return Hit{}, false
	}
	world := r.At(best)
	return Hit{Distance: best, World: world, Local: m.WorldToLocal(world)}, true
}

// ensureWorld caches world-space triangles and a bounding sphere for the
// current model transform.
func (m *Mesh) ensureWorld() {
	if m.worldSet {
		return
	}
	m.world = make([][3]mgl64.Vec3, len(m.Faces))
	lo, hi := m.Bounds()
	m.center = mgl64.TransformCoordinate(lo.Add(hi).Mul(0.5), m.model)
	m.radius = 0
	for i, f := range m.Faces {
		for j, idx := range f {
			w := mgl64.TransformCoordinate(m.Vertices[idx], m.model)
			m.world[i][j] = w
			m.radius = math.Max(m.radius, w.Sub(m.center).Len())
		}
	}
	m.radius += epsilon
	m.worldSet = true
}
