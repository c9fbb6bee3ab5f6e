package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/storagetest"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func newTestLifecycle(t *testing.T) (*PointLifecycle, *controlledGateway, *stubConfirmer) {
	t.Helper()
	g := newControlledGateway()
	exam := storagetest.SampleExam("Maria Rossi", "P-001", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	exam.Limb = domain.LimbLegRight
	created, err := g.CreateExam(context.Background(), exam)
	require.NoError(t, err)

	c := &stubConfirmer{answer: true}
	l := NewPointLifecycle(g, c)
	_, err = l.LoadExam(context.Background(), created.ID)
	require.NoError(t, err)
	return l, g, c
}

// addCommitted creates and commits n points at distinct stump positions.
func addCommitted(t *testing.T, l *PointLifecycle, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p, err := l.HandleStumpPick(domain.Vec3{X: float64(i) * 0.1})
		require.NoError(t, err)
		_, err = l.CommitPoint(context.Background(), p)
		require.NoError(t, err)
	}
}

func uncommittedCount(c domain.Collection) int {
	n := 0
	for _, p := range c.Ordered() {
		if !p.IsCommitted() {
			n++
		}
	}
	return n
}

func waitStarted(t *testing.T, g *controlledGateway) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("create never reached the gateway")
	}
}

type commitResult struct {
	point domain.Point
	err   error
}

func commitAsync(l *PointLifecycle, p domain.Point) <-chan commitResult {
	out := make(chan commitResult, 1)
	go func() {
		saved, err := l.CommitPoint(context.Background(), p)
		out <- commitResult{saved, err}
	}()
	return out
}

func TestPointLifecycle_CreateAndCommit(t *testing.T) {
	l, _, _ := newTestLifecycle(t)

	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1, Y: 0.2, Z: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Points().Len())
	assert.True(t, strings.HasPrefix(p.ID.String(), domain.TempIDPrefix))
	assert.Equal(t, 1, p.Order)
	assert.Equal(t, domain.StateUncommitted, p.State())

	saved, err := l.CommitPoint(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, saved.IsCommitted())
	assert.False(t, strings.HasPrefix(saved.ID.String(), domain.TempIDPrefix))
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.HasUnsavedChanges)

	got, ok := l.Points().At(0)
	require.True(t, ok)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, domain.StateCommittedClean, got.State())
}

func TestPointLifecycle_NoExam(t *testing.T) {
	l := NewPointLifecycle(newControlledGateway(), nil)

	_, err := l.HandleStumpPick(domain.Vec3{})
	assert.ErrorIs(t, err, domain.ErrNoExam)
	_, err = l.CommitAll(context.Background())
	assert.NoError(t, err)
	assert.ErrorIs(t, l.UnmapLimb(0), domain.ErrNoExam)
}

func TestPointLifecycle_Capacity(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	addCommitted(t, l, domain.MaxPointsPerExam)
	before := l.Points()

	_, err := l.HandleStumpPick(domain.Vec3{X: 5})
	require.ErrorIs(t, err, domain.ErrCapacity)

	after := l.Points()
	assert.Equal(t, domain.MaxPointsPerExam, after.Len())
	assert.Equal(t, before.Ordered(), after.Ordered())
}

func TestPointLifecycle_SingleUncommitted(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	first, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	second, err := l.HandleStumpPick(domain.Vec3{X: 0.7})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, l.Points().Len())
	assert.InDelta(t, 0.7, second.StumpPosition.X, 1e-9)

	steps := []func(){
		func() { _, _ = l.HandleStumpPick(domain.Vec3{X: 0.2}) },
		func() { _, _ = l.CommitSelected(ctx) },
		func() { _, _ = l.HandleStumpPick(domain.Vec3{X: 0.3}) },
		func() { _, _ = l.HandleStumpPick(domain.Vec3{X: 0.4}) },
		func() { _, _ = l.DeletePoint(ctx, 0) },
		func() { _, _ = l.HandleStumpPick(domain.Vec3{X: 0.5}) },
		func() { _, _ = l.CommitAll(ctx) },
		func() { _, _ = l.HandleStumpPick(domain.Vec3{X: 0.6}) },
	}
	for i, step := range steps {
		step()
		assert.LessOrEqual(t, uncommittedCount(l.Points()), 1, "after step %d", i)
	}
}

func TestPointLifecycle_DeleteResequences(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	addCommitted(t, l, 4)
	removed, _ := l.Points().At(1)

	_, err := l.DeletePoint(context.Background(), 1)
	require.NoError(t, err)

	points := l.Points().Ordered()
	require.Len(t, points, 3)
	for i, p := range points {
		assert.Equal(t, i+1, p.Order)
		assert.NotEqual(t, removed.ID, p.ID)
	}
	assert.False(t, points[0].HasUnsavedChanges)
	assert.True(t, points[1].HasUnsavedChanges)
	assert.True(t, points[2].HasUnsavedChanges)

	saved, err := l.CommitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Zero(t, l.UnsavedCount())
}

func TestPointLifecycle_CommitResolvesByIdentity(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	a := domain.Point{ID: domain.Uncommitted{TempID: "temp-1"}, StumpPosition: &domain.Vec3{X: 0.1}, Order: 1, HasUnsavedChanges: true}
	b := domain.Point{ID: domain.Uncommitted{TempID: "temp-2"}, StumpPosition: &domain.Vec3{X: 0.2}, Order: 2, HasUnsavedChanges: true}
	l.points.Reset(domain.NewCollection(a, b))

	g.holdCreates()
	done := commitAsync(l, a)
	waitStarted(t, g)

	_, err := l.DeletePoint(context.Background(), 1)
	require.NoError(t, err)
	g.release()

	res := <-done
	require.NoError(t, res.err)

	points := l.Points().Ordered()
	require.Len(t, points, 1)
	assert.True(t, points[0].IsCommitted())
	assert.Equal(t, res.point.ID, points[0].ID)
	assert.Equal(t, 1, points[0].Order)
	assert.False(t, points[0].HasUnsavedChanges)
}

func TestPointLifecycle_SecondCommitWhileCreateInFlight(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)

	g.holdCreates()
	first := commitAsync(l, p)
	waitStarted(t, g)

	described, err := l.UpdateDescription(0, domain.Description{Sensation: "burning"})
	require.NoError(t, err)
	second := commitAsync(l, described)
	g.release()

	r1, r2 := <-first, <-second
	require.NoError(t, r1.err)
	require.NoError(t, r2.err)
	assert.Equal(t, 1, g.createCount())
	assert.Equal(t, r1.point.ID, r2.point.ID)

	got, ok := l.Points().At(0)
	require.True(t, ok)
	assert.Equal(t, domain.StateCommittedClean, got.State())

	exam, _ := l.Exam()
	stored, err := g.ListPoints(ctx, exam.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "burning", stored[0].Sensation)
}

func TestPointLifecycle_CommitFailureKeepsEdits(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	g.set(func(g *controlledGateway) { g.failCreate = true })

	_, err = l.CommitPoint(context.Background(), p)
	require.ErrorIs(t, err, domain.ErrPersistence)

	got, ok := l.Points().At(0)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.HasUnsavedChanges)

	g.set(func(g *controlledGateway) { g.failCreate = false })
	saved, err := l.CommitPoint(context.Background(), got)
	require.NoError(t, err)
	assert.True(t, saved.IsCommitted())
}

func TestPointLifecycle_UpdateFailureStaysDirty(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	addCommitted(t, l, 1)
	p, err := l.UpdateDescription(0, domain.Description{Program: "P7"})
	require.NoError(t, err)
	g.set(func(g *controlledGateway) { g.failUpdate = true })

	_, err = l.CommitPoint(context.Background(), p)
	require.ErrorIs(t, err, domain.ErrPersistence)

	got, _ := l.Points().At(0)
	assert.Equal(t, domain.StateCommittedDirty, got.State())
	assert.Equal(t, "P7", got.Program)
}

func TestPointLifecycle_StaleSession(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)

	g.holdCreates()
	done := commitAsync(l, p)
	waitStarted(t, g)
	l.CloseExam()
	g.release()

	res := <-done
	assert.ErrorIs(t, res.err, domain.ErrStaleSession)
	assert.Zero(t, l.Points().Len())
	_, open := l.Exam()
	assert.False(t, open)
}

func TestPointLifecycle_DeleteDuringCreate(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)

	g.holdCreates()
	done := commitAsync(l, p)
	waitStarted(t, g)
	_, err = l.DeletePoint(ctx, 0)
	require.NoError(t, err)
	g.release()

	res := <-done
	assert.ErrorIs(t, res.err, domain.ErrNotFound)
	exam, _ := l.Exam()
	stored, err := g.ListPoints(ctx, exam.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPointLifecycle_DeleteCascadesImages(t *testing.T) {
	l, g, c := newTestLifecycle(t)
	ctx := context.Background()
	addCommitted(t, l, 1)
	a, err := l.AttachImage(ctx, 0, []byte("a"))
	require.NoError(t, err)
	b, err := l.AttachImage(ctx, 0, []byte("b"))
	require.NoError(t, err)
	urlA, urlB := a.Images()[0], b.Images()[1]
	g.set(func(g *controlledGateway) { g.failImageDrop[urlB] = true })

	orphaned, err := l.DeletePoint(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{urlB}, orphaned)
	assert.Equal(t, []string{urlA, urlB}, g.deletedImages)
	assert.Len(t, g.deletedPoints, 1)
	assert.Equal(t, []string{"Delete point 1?"}, c.prompts)
	assert.Zero(t, l.Points().Len())
}

func TestPointLifecycle_DeleteRequiresConfirmation(t *testing.T) {
	l, g, c := newTestLifecycle(t)
	addCommitted(t, l, 1)

	c.answer = false
	_, err := l.DeletePoint(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrCancelled)

	l.SetConfirmer(nil)
	_, err = l.DeletePoint(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)

	assert.Equal(t, 1, l.Points().Len())
	assert.Empty(t, g.deletedPoints)

	_, err = l.DeletePoint(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPointLifecycle_DeleteAfterSessionClosed(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	addCommitted(t, l, 1)
	l.SetConfirmer(&funcConfirmer{fn: l.CloseExam, answer: true})

	var err error
	assert.NotPanics(t, func() {
		_, err = l.DeletePoint(context.Background(), 0)
	})
	assert.ErrorIs(t, err, domain.ErrNoExam)
	assert.Empty(t, g.deletedPoints)
}

func TestPointLifecycle_DeleteAfterExamReloaded(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	addCommitted(t, l, 2)
	exam, _ := l.Exam()
	l.SetConfirmer(&funcConfirmer{
		fn:     func() { _, _ = l.LoadExam(ctx, exam.ID) },
		answer: true,
	})

	_, err := l.DeletePoint(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrStaleSession)
	assert.Empty(t, g.deletedPoints)
	assert.Equal(t, 2, l.Points().Len())
}

func TestPointLifecycle_DeleteUncommittedRemovesPhotos(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	_, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	p, err := l.AttachImage(ctx, 0, []byte("a"))
	require.NoError(t, err)
	require.False(t, p.IsCommitted())

	orphaned, err := l.DeletePoint(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, orphaned)
	assert.Equal(t, p.Images(), g.deletedImages)
	assert.Empty(t, g.deletedPoints)
	assert.Zero(t, g.ImageCount())
}

func TestPointLifecycle_RemoveImage(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	addCommitted(t, l, 1)
	_, err := l.AttachImage(ctx, 0, []byte("a"))
	require.NoError(t, err)
	withBoth, err := l.AttachImage(ctx, 0, []byte("b"))
	require.NoError(t, err)
	urlA, urlB := withBoth.Images()[0], withBoth.Images()[1]

	out, err := l.RemoveImage(ctx, 0, urlA)
	require.NoError(t, err)
	assert.Equal(t, []string{urlB}, out.Images())
	assert.Equal(t, []string{urlA}, g.deletedImages)
	assert.False(t, out.HasUnsavedChanges)

	_, err = l.RemoveImage(ctx, 0, urlA)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPointLifecycle_AttachImage(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()

	_, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	p, err := l.AttachImage(ctx, 0, []byte("jpeg"))
	require.NoError(t, err)
	assert.False(t, p.IsCommitted())
	assert.Len(t, p.Images(), 1)

	_, err = l.AttachImage(ctx, 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for i := 1; i < domain.MaxImagesPerPoint; i++ {
		_, err = l.AttachImage(ctx, 0, []byte{byte(i)})
		require.NoError(t, err)
	}
	_, err = l.AttachImage(ctx, 0, []byte("one too many"))
	assert.ErrorIs(t, err, domain.ErrCapacity)

	g.set(func(g *controlledGateway) { g.failUpload = true })
	_, err = l.DeletePoint(ctx, 0)
	require.NoError(t, err)
	_, err = l.HandleStumpPick(domain.Vec3{X: 0.2})
	require.NoError(t, err)
	_, err = l.AttachImage(ctx, 0, []byte("x"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestPointLifecycle_UpdateExamLimbChange(t *testing.T) {
	l, g, c := newTestLifecycle(t)
	ctx := context.Background()
	addCommitted(t, l, 3)

	exam, _ := l.Exam()
	exam.Limb = domain.LimbArmLeft
	exam.Location = domain.LocationAboveElbow
	deleted, err := l.UpdateExam(ctx, exam)
	require.NoError(t, err)

	assert.Equal(t, 3, deleted)
	assert.Len(t, g.deletedPoints, 3)
	assert.Zero(t, l.Points().Len())
	assert.Len(t, c.prompts, 1)

	stored, err := g.ListPoints(ctx, exam.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	got, err := g.GetExam(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LimbArmLeft, got.Limb)
}

func TestPointLifecycle_UpdateExamDuringCreate(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)

	g.holdCreates()
	done := commitAsync(l, p)
	waitStarted(t, g)

	exam, _ := l.Exam()
	exam.Limb = domain.LimbArmLeft
	exam.Location = domain.LocationAboveElbow
	deleted, err := l.UpdateExam(ctx, exam)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	g.release()

	res := <-done
	assert.ErrorIs(t, res.err, domain.ErrStaleSession)
	stored, err := g.ListPoints(ctx, exam.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Len(t, g.deletedPoints, 1)
	assert.Zero(t, l.Points().Len())
}

func TestPointLifecycle_CreateAcrossReloadIsKept(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	p, err := l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	exam, _ := l.Exam()

	g.holdCreates()
	done := commitAsync(l, p)
	waitStarted(t, g)
	_, err = l.LoadExam(ctx, exam.ID)
	require.NoError(t, err)
	g.release()

	res := <-done
	assert.ErrorIs(t, res.err, domain.ErrStaleSession)
	stored, err := g.ListPoints(ctx, exam.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Empty(t, g.deletedPoints)
}

func TestPointLifecycle_UpdateExamAfterSessionClosed(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	addCommitted(t, l, 1)
	exam, _ := l.Exam()
	l.SetConfirmer(&funcConfirmer{fn: l.CloseExam, answer: true})

	exam.Limb = domain.LimbArmLeft
	exam.Location = domain.LocationAboveElbow
	_, err := l.UpdateExam(context.Background(), exam)
	assert.ErrorIs(t, err, domain.ErrStaleSession)
	assert.Empty(t, g.deletedPoints)
	got, err := g.GetExam(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LimbLegRight, got.Limb)
}

func TestPointLifecycle_UpdateExamRefused(t *testing.T) {
	l, g, c := newTestLifecycle(t)
	addCommitted(t, l, 2)
	c.answer = false

	exam, _ := l.Exam()
	exam.Limb = domain.LimbArmLeft
	exam.Location = domain.LocationBelowElbow
	_, err := l.UpdateExam(context.Background(), exam)
	require.ErrorIs(t, err, domain.ErrCancelled)

	assert.Equal(t, 2, l.Points().Len())
	assert.Empty(t, g.deletedPoints)
	cur, _ := l.Exam()
	assert.Equal(t, domain.LimbLegRight, cur.Limb)
}

func TestPointLifecycle_UpdateExamDetailsOnly(t *testing.T) {
	l, g, c := newTestLifecycle(t)
	addCommitted(t, l, 2)

	exam, _ := l.Exam()
	exam.TherapistName = "Dr. Verdi"
	deleted, err := l.UpdateExam(context.Background(), exam)
	require.NoError(t, err)

	assert.Zero(t, deleted)
	assert.Empty(t, c.prompts)
	assert.Equal(t, 2, l.Points().Len())
	got, err := g.GetExam(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Verdi", got.TherapistName)

	exam.PatientName = ""
	_, err = l.UpdateExam(context.Background(), exam)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPointLifecycle_LimbMapping(t *testing.T) {
	l, _, _ := newTestLifecycle(t)

	_, err := l.HandleLimbPick(domain.Vec3{Y: 1})
	assert.ErrorIs(t, err, domain.ErrNoSelection)
	assert.ErrorIs(t, l.SetMappingMode(true), domain.ErrNoSelection)

	_, err = l.HandleStumpPick(domain.Vec3{X: 0.1})
	require.NoError(t, err)
	require.NoError(t, l.SetMappingMode(true))

	placed, err := l.HandleLimbPick(domain.Vec3{Y: 1})
	require.NoError(t, err)
	assert.True(t, placed)
	assert.False(t, l.MappingMode())

	placed, err = l.HandleLimbPick(domain.Vec3{Y: 2})
	require.NoError(t, err)
	assert.False(t, placed)
	p, _, _ := l.Selected()
	assert.InDelta(t, 1.0, p.LimbPosition.Y, 1e-9)

	require.NoError(t, l.UnmapLimb(0))
	assert.ErrorIs(t, l.UnmapLimb(0), domain.ErrInvalidInput)
	placed, err = l.HandleLimbPick(domain.Vec3{Y: 2})
	require.NoError(t, err)
	assert.True(t, placed)
}

func TestPointLifecycle_Selection(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	addCommitted(t, l, 3)
	l.ClearSelection()

	idx, ok := l.SelectClosestPoint(domain.Vec3{X: 0.19}, 0.2, domain.ViewStump)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = l.SelectClosestPoint(domain.Vec3{X: 5}, 0.2, domain.ViewStump)
	assert.False(t, ok)
	_, sel, _ := l.Selected()
	assert.Equal(t, 2, sel)

	_, ok = l.SelectClosestPoint(domain.Vec3{}, 1, domain.ViewLimb)
	assert.False(t, ok, "no point is mapped yet")

	require.NoError(t, l.Select(2))
	require.NoError(t, l.SetMappingMode(true))
	require.NoError(t, l.Select(0))
	assert.False(t, l.MappingMode())
	assert.ErrorIs(t, l.Select(9), domain.ErrNotFound)

	saved, err := l.CommitSelected(context.Background())
	require.NoError(t, err)
	assert.True(t, saved.IsCommitted())
	_, _, ok = l.Selected()
	assert.False(t, ok)

	_, err = l.CommitSelected(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestPointLifecycle_Visuals(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	addCommitted(t, l, 2)
	_, err := l.HandleStumpPick(domain.Vec3{X: 0.9})
	require.NoError(t, err)

	visuals := l.Visuals(domain.ViewStump)
	require.Len(t, visuals, 3)
	assert.Equal(t, "1", visuals[0].Style.Label)
	assert.Equal(t, domain.ColorUncommitted, visuals[2].Style.Color)

	require.NoError(t, l.Select(0))
	assert.Equal(t, domain.ColorSelected, l.Visuals(domain.ViewStump)[0].Style.Color)
	assert.Empty(t, l.Visuals(domain.ViewLimb))
	assert.Equal(t, 1, l.UnsavedCount())
}

func TestPointLifecycle_TempIDsAreUnique(t *testing.T) {
	l, _, _ := newTestLifecycle(t)
	fixed := time.Unix(1700000000, 0)
	l.SetClock(func() time.Time { return fixed })

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		p, err := l.HandleStumpPick(domain.Vec3{X: float64(i)})
		require.NoError(t, err)
		assert.False(t, seen[p.ID.String()])
		seen[p.ID.String()] = true
		_, err = l.CommitPoint(context.Background(), p)
		require.NoError(t, err)
	}
}

func TestPointLifecycle_LoadExamOrdersPoints(t *testing.T) {
	l, g, _ := newTestLifecycle(t)
	ctx := context.Background()
	exam, _ := l.Exam()
	_, err := g.CreatePoint(ctx, exam.ID, storagetest.SampleFields(3))
	require.NoError(t, err)
	_, err = g.CreatePoint(ctx, exam.ID, storagetest.SampleFields(1))
	require.NoError(t, err)

	_, err = l.LoadExam(ctx, exam.ID)
	require.NoError(t, err)
	points := l.Points().Ordered()
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Order)
	assert.Equal(t, 2, points[1].Order)

	_, err = l.LoadExam(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
