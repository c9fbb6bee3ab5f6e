// Package geometry provides the 3D primitives behind point picking:
// triangle meshes with a model transform, an orbiting perspective camera,
// rays, and viewport-to-NDC conversion.
//
// Matrices and vectors come from go-gl/mathgl (mgl64). Positions handed
// to the core are converted to domain.Vec3 at the package boundary.
package geometry
