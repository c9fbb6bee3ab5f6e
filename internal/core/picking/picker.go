package picking

import (
	"fmt"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/geometry"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Picker is the pick half of a rendering surface. It owns the camera and
// viewport of one stage and resolves taps against that stage's mesh only;
// point markers never take part in intersection.
type Picker struct {
	Classifier *Classifier
	Camera     *geometry.Camera
	Viewport   geometry.Viewport

	// OnPick receives the mesh-local position of every tap that hits.
	OnPick func(domain.Vec3)

	mesh *geometry.Mesh
}

// NewPicker creates a picker for mesh with a default camera.
func NewPicker(mesh *geometry.Mesh, classifier *Classifier) *Picker {
	if classifier == nil {
		classifier = NewClassifier(0, 0)
	}
	return &Picker{
		Classifier: classifier,
		Camera:     geometry.NewCamera(),
		mesh:       mesh,
	}
}

// Mesh returns the mesh taps are resolved against.
func (p *Picker) Mesh() *geometry.Mesh {
	return p.mesh
}

// SetMesh swaps the mesh, e.g. after the model file was reloaded.
// Positions already reported stay valid because they are mesh-local.
func (p *Picker) SetMesh(mesh *geometry.Mesh) {
	p.mesh = mesh
	p.Classifier.Reset()
}

// Handle feeds one pointer event through the classifier. It returns true
// when the event changed the view (camera orbit) or produced a pick.
func (p *Picker) Handle(ev PointerEvent) bool {
	out := p.Classifier.Handle(ev)
	switch out.Gesture {
	case GestureDragging:
		p.Camera.Orbit(out.DX, out.DY)
		return true
	case GestureTap:
		local, err := p.Pick(out.X, out.Y)
		if err != nil {
			logger.Debug("pick at (%.0f, %.0f): %v", out.X, out.Y, err)
			return false
		}
		if p.OnPick != nil {
			p.OnPick(local)
		}
		return true
	case GestureDragEnd:
		logger.Debug("%s drag ended, no pick", ev.Source)
	}
	return false
}

// Pick casts a ray through a screen position and returns the nearest mesh
// hit in mesh-local coordinates. A miss returns domain.ErrPickMiss.
func (p *Picker) Pick(px, py float64) (domain.Vec3, error) {
	if p.mesh == nil {
		return domain.Vec3{}, fmt.Errorf("%w: no mesh loaded", domain.ErrPickMiss)
	}
	if !p.Viewport.Contains(px, py) {
		return domain.Vec3{}, fmt.Errorf("%w: outside viewport", domain.ErrPickMiss)
	}
	x, y := p.Viewport.NDC(px, py)
	hit, ok := p.mesh.Intersect(p.Camera.Ray(x, y, p.Viewport.Aspect()))
	if !ok {
		return domain.Vec3{}, domain.ErrPickMiss
	}
	return hit.Local, nil
}
