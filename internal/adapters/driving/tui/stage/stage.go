// Package stage is the terminal rendering surface of one model view.
//
// A stage ray-casts its mesh once per terminal cell to draw a depth-shaded
// silhouette and composites point markers on top. Terminal cells are
// treated as CellWidth x CellHeight pixels so that pointer thresholds and
// camera math work in the same units as a graphical surface.
package stage

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/styles"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/picking"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

// Terminal cell size in virtual pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

// shades runs from nearest to furthest surface.
const shades = "@%#*+=-:."

const markerGlyph = "●"

// Stage renders and picks one view.
type Stage struct {
	Kind   domain.ViewKind
	Picker *picking.Picker

	// Styles colour the silhouette and the markers.
	Styles *styles.Styles

	col, row   int
	cols, rows int

	// cache holds the shaded mesh layer until the camera, bounds or mesh
	// change.
	cache    [][]byte
	cacheKey cacheKey
}

type cacheKey struct {
	mesh       *geometry.Mesh
	model      mgl64.Mat4
	yaw, pitch float64
	distance   float64
	cols, rows int
}

// New creates a stage for mesh. classifier may be shared between stages.
func New(kind domain.ViewKind, mesh *geometry.Mesh, classifier *picking.Classifier) *Stage {
	return &Stage{
		Kind:   kind,
		Picker: picking.NewPicker(mesh, classifier),
		Styles: styles.Default(),
	}
}

// SetBounds places the stage at a cell rectangle of the terminal.
func (s *Stage) SetBounds(col, row, cols, rows int) {
	s.col, s.row = col, row
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.Picker.Viewport = geometry.Viewport{
		X:      float64(col * CellWidth),
		Y:      float64(row * CellHeight),
		Width:  float64(s.cols * CellWidth),
		Height: float64(s.rows * CellHeight),
	}
}

// Size returns the stage size in cells.
func (s *Stage) Size() (cols, rows int) {
	return s.cols, s.rows
}

// PointerEvent converts a terminal mouse message into a pointer event at
// the centre of the cell. ok is false for wheel and other buttons.
func PointerEvent(msg tea.MouseMsg, at time.Time) (picking.PointerEvent, bool) {
	ev := picking.PointerEvent{
		Source: picking.SourceMouse,
		X:      float64(msg.X*CellWidth + CellWidth/2),
		Y:      float64(msg.Y*CellHeight + CellHeight/2),
		At:     at,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ev, false
		}
		ev.Kind = picking.EventDown
	case tea.MouseActionMotion:
		ev.Kind = picking.EventMove
	case tea.MouseActionRelease:
		ev.Kind = picking.EventUp
	default:
		return ev, false
	}
	return ev, true
}

// HandleMouse feeds a mouse message to the picker. Wheel events zoom.
// It returns true when the stage needs redrawing or a pick was reported.
func (s *Stage) HandleMouse(msg tea.MouseMsg, at time.Time) bool {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		s.Picker.Camera.Zoom(0.9)
		return true
	case tea.MouseButtonWheelDown:
		s.Picker.Camera.Zoom(1.1)
		return true
	}
	ev, ok := PointerEvent(msg, at)
	if !ok {
		return false
	}
	return s.Picker.Handle(ev)
}

// Render draws the mesh and markers as s.rows lines of s.cols cells.
func (s *Stage) Render(markers []domain.VisualPoint) string {
	if s.cols == 0 || s.rows == 0 {
		return ""
	}
	layer := s.meshLayer()

	overlay := make([][]string, s.rows)
	for r := range overlay {
		overlay[r] = make([]string, s.cols)
	}
	s.drawMarkers(overlay, markers)

	lines := make([]string, s.rows)
	for r := range overlay {
		var b strings.Builder
		run := 0
		for c := 0; c <= s.cols; c++ {
			if c < s.cols && overlay[r][c] == "" {
				continue
			}
			if c > run {
				b.WriteString(s.Styles.Skin.Render(string(layer[r][run:c])))
			}
			if c < s.cols {
				b.WriteString(overlay[r][c])
			}
			run = c + 1
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// meshLayer returns the shaded silhouette, recomputing it when stale.
func (s *Stage) meshLayer() [][]byte {
	mesh := s.Picker.Mesh()
	cam := s.Picker.Camera
	key := cacheKey{
		mesh: mesh, yaw: cam.Yaw, pitch: cam.Pitch, distance: cam.Distance,
		cols: s.cols, rows: s.rows,
	}
	if mesh != nil {
		key.model = mesh.Model()
	}
	if s.cache != nil && key == s.cacheKey {
		return s.cache
	}

	layer := make([][]byte, s.rows)
	near, far := cam.Distance-3, cam.Distance+3
	for r := 0; r < s.rows; r++ {
		layer[r] = []byte(strings.Repeat(" ", s.cols))
		if mesh == nil {
			continue
		}
		for c := 0; c < s.cols; c++ {
			hit, ok := s.cast(c, r)
			if !ok {
				continue
			}
			t := (hit.Distance - near) / (far - near)
			i := int(math.Round(mgl64.Clamp(t, 0, 1) * float64(len(shades)-1)))
			layer[r][c] = shades[i]
		}
	}
	s.cache, s.cacheKey = layer, key
	return layer
}

// cast intersects the ray through the centre of a stage cell.
func (s *Stage) cast(c, r int) (geometry.Hit, bool) {
	ndcX := (float64(c)+0.5)/float64(s.cols)*2 - 1
	ndcY := 1 - (float64(r)+0.5)/float64(s.rows)*2
	ray := s.Picker.Camera.Ray(ndcX, ndcY, s.Picker.Viewport.Aspect())
	return s.Picker.Mesh().Intersect(ray)
}

// drawMarkers projects each marker into the overlay grid. Markers hidden
// behind the surface are skipped.
func (s *Stage) drawMarkers(cells [][]string, markers []domain.VisualPoint) {
	mesh := s.Picker.Mesh()
	if mesh == nil {
		return
	}
	cam := s.Picker.Camera
	eye := cam.Position()
	aspect := s.Picker.Viewport.Aspect()

	for _, m := range markers {
		world := mesh.LocalToWorld(m.Position)
		x, y, ok := cam.Project(world, aspect)
		if !ok || x < -1 || x > 1 || y < -1 || y > 1 {
			continue
		}
		c := min(int((x+1)/2*float64(s.cols)), s.cols-1)
		r := min(int((1-y)/2*float64(s.rows)), s.rows-1)

		if hit, ok := s.cast(c, r); ok && hit.Distance < world.Sub(eye).Len()-3*m.Style.Size {
			continue
		}

		style := s.Styles.Marker(m.Style)
		cells[r][c] = style.Render(markerGlyph)
		for i, ch := range m.Style.Label {
			if c+1+i >= s.cols {
				break
			}
			cells[r][c+1+i] = style.Render(string(ch))
		}
	}
}
