package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

func newTestPicker(t *testing.T) (*Picker, *[]domain.Vec3) {
	t.Helper()
	mesh := geometry.Box("stump", 1, 1, 1)
	mesh.Normalize()

	var picks []domain.Vec3
	p := NewPicker(mesh, nil)
	p.Viewport = geometry.Viewport{Width: 400, Height: 400}
	p.OnPick = func(v domain.Vec3) { picks = append(picks, v) }
	return p, &picks
}

func TestPicker_TapOnMeshPicksOnce(t *testing.T) {
	p, picks := newTestPicker(t)

	p.Handle(ev(EventDown, 200, 200, 0))
	p.Handle(ev(EventMove, 201, 201, 40))
	changed := p.Handle(ev(EventUp, 201, 201, 100))

	assert.True(t, changed)
	require.Len(t, *picks, 1)
	lo, hi := p.Mesh().Bounds()
	got := (*picks)[0]
	assert.GreaterOrEqual(t, got.Y, lo[1]-1e-9)
	assert.LessOrEqual(t, got.Y, hi[1]+1e-9)
}

func TestPicker_TapOffMeshIsSilent(t *testing.T) {
	p, picks := newTestPicker(t)

	p.Handle(ev(EventDown, 2, 2, 0))
	changed := p.Handle(ev(EventUp, 2, 2, 50))

	assert.False(t, changed)
	assert.Empty(t, *picks)
}

func TestPicker_DragNeverPicks(t *testing.T) {
	p, picks := newTestPicker(t)
	yaw := p.Camera.Yaw

	p.Handle(ev(EventDown, 200, 200, 0))
	p.Handle(ev(EventMove, 220, 200, 20))
	p.Handle(ev(EventMove, 230, 200, 40))
	p.Handle(ev(EventUp, 230, 200, 2000))

	assert.Empty(t, *picks)
	assert.NotEqual(t, yaw, p.Camera.Yaw)
}

func TestPicker_SlowPressNeverPicks(t *testing.T) {
	p, picks := newTestPicker(t)

	p.Handle(ev(EventDown, 200, 200, 0))
	p.Handle(ev(EventUp, 200, 200, 450))

	assert.Empty(t, *picks)
}

func TestPicker_Pick_Miss(t *testing.T) {
	p, _ := newTestPicker(t)

	_, err := p.Pick(1, 1)
	assert.ErrorIs(t, err, domain.ErrPickMiss)

	_, err = p.Pick(-10, 200)
	assert.ErrorIs(t, err, domain.ErrPickMiss)

	p.SetMesh(nil)
	_, err = p.Pick(200, 200)
	assert.ErrorIs(t, err, domain.ErrPickMiss)
}

func TestPicker_LocalSurvivesRenormalise(t *testing.T) {
	p, _ := newTestPicker(t)
	local, err := p.Pick(200, 200)
	require.NoError(t, err)

	world := p.Mesh().LocalToWorld(local)
	back := p.Mesh().WorldToLocal(world)
	assert.InDelta(t, 0, local.Distance(back), 1e-9)
}
