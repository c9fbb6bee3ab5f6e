package stage

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/picking"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

func newBoxStage(t *testing.T) *Stage {
	t.Helper()
	mesh := geometry.Box("box", 1, 1, 1)
	mesh.Normalize()
	s := New(domain.ViewStump, mesh, picking.NewClassifier(0, 0))
	s.SetBounds(0, 0, 40, 20)
	return s
}

func TestStage_SetBounds(t *testing.T) {
	s := newBoxStage(t)
	s.SetBounds(2, 1, 30, 10)

	cols, rows := s.Size()
	assert.Equal(t, 30, cols)
	assert.Equal(t, 10, rows)
	assert.Equal(t, geometry.Viewport{X: 16, Y: 16, Width: 240, Height: 160}, s.Picker.Viewport)
}

func TestStage_Render_Silhouette(t *testing.T) {
	s := newBoxStage(t)
	lines := strings.Split(s.Render(nil), "\n")
	require.Len(t, lines, 20)

	assert.NotEqual(t, byte(' '), lines[10][20], "centre cell shows the mesh")
	assert.Equal(t, byte(' '), lines[0][0], "corner cell is background")
}

func TestStage_Render_Empty(t *testing.T) {
	s := newBoxStage(t)
	s.SetBounds(0, 0, 0, 0)
	assert.Empty(t, s.Render(nil))
}

func TestStage_Render_CachesLayer(t *testing.T) {
	s := newBoxStage(t)
	s.Render(nil)
	first := s.cache

	s.Render(nil)
	assert.Same(t, &first[0][0], &s.cache[0][0])

	s.Picker.Camera.Orbit(40, 0)
	s.Render(nil)
	assert.NotSame(t, &first[0][0], &s.cache[0][0])
}

func TestStage_Render_Markers(t *testing.T) {
	s := newBoxStage(t)
	front := domain.VisualPoint{
		Position: domain.Vec3{Z: 0.5},
		Style:    domain.ResolveVisual(domain.VisualInput{Index: 0}),
	}
	back := domain.VisualPoint{
		Position: domain.Vec3{Z: -0.5},
		Style:    domain.ResolveVisual(domain.VisualInput{Index: 1}),
	}

	out := s.Render([]domain.VisualPoint{front, back})
	assert.Equal(t, 1, strings.Count(out, markerGlyph), "the back marker is occluded")
	assert.Contains(t, out, "1")
}

func TestStage_Render_UncommittedHasNoLabel(t *testing.T) {
	s := newBoxStage(t)
	m := domain.VisualPoint{
		Position: domain.Vec3{Z: 0.5},
		Style:    domain.ResolveVisual(domain.VisualInput{Index: 4, Uncommitted: true}),
	}
	out := s.Render([]domain.VisualPoint{m})
	assert.Equal(t, 1, strings.Count(out, markerGlyph))
}

func TestPointerEvent(t *testing.T) {
	at := time.Now()

	ev, ok := PointerEvent(tea.MouseMsg{X: 5, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, at)
	require.True(t, ok)
	assert.Equal(t, picking.EventDown, ev.Kind)
	assert.Equal(t, 44.0, ev.X)
	assert.Equal(t, 40.0, ev.Y)
	assert.Equal(t, at, ev.At)

	ev, ok = PointerEvent(tea.MouseMsg{Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, at)
	require.True(t, ok)
	assert.Equal(t, picking.EventMove, ev.Kind)

	ev, ok = PointerEvent(tea.MouseMsg{Action: tea.MouseActionRelease}, at)
	require.True(t, ok)
	assert.Equal(t, picking.EventUp, ev.Kind)

	_, ok = PointerEvent(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight}, at)
	assert.False(t, ok)
}

func TestStage_HandleMouse_TapPicks(t *testing.T) {
	s := newBoxStage(t)
	var picked []domain.Vec3
	s.Picker.OnPick = func(v domain.Vec3) { picked = append(picked, v) }

	t0 := time.Now()
	s.HandleMouse(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, t0)
	changed := s.HandleMouse(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease}, t0.Add(50*time.Millisecond))

	assert.True(t, changed)
	require.Len(t, picked, 1)
	assert.InDelta(t, 0.5, picked[0].Z, 1e-6)
}

func TestStage_HandleMouse_DragOrbits(t *testing.T) {
	s := newBoxStage(t)
	var picked int
	s.Picker.OnPick = func(domain.Vec3) { picked++ }
	yaw := s.Picker.Camera.Yaw

	t0 := time.Now()
	s.HandleMouse(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, t0)
	s.HandleMouse(tea.MouseMsg{X: 24, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, t0.Add(10*time.Millisecond))
	s.HandleMouse(tea.MouseMsg{X: 24, Y: 10, Action: tea.MouseActionRelease}, t0.Add(20*time.Millisecond))

	assert.Zero(t, picked)
	assert.NotEqual(t, yaw, s.Picker.Camera.Yaw)
}

func TestStage_HandleMouse_WheelZooms(t *testing.T) {
	s := newBoxStage(t)
	d := s.Picker.Camera.Distance

	assert.True(t, s.HandleMouse(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress}, time.Now()))
	assert.Less(t, s.Picker.Camera.Distance, d)
}

func TestStage_DefaultStyles(t *testing.T) {
	s := newBoxStage(t)

	require.NotNil(t, s.Styles)
	assert.Equal(t, s.Styles.Palette().Skin, s.Styles.Skin.GetForeground())
}
