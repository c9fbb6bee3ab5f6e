// Package storagetest holds a behaviour suite shared by every
// driven.PersistenceGateway implementation.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// Factory returns a fresh, empty gateway for one subtest.
type Factory func(t *testing.T) driven.PersistenceGateway

// SampleExam returns a valid exam for a patient.
func SampleExam(patientName, patientID string, at time.Time) domain.Exam {
	return domain.Exam{
		PatientName:   patientName,
		PatientID:     patientID,
		Limb:          domain.LimbLegLeft,
		Location:      domain.LocationBelowKnee,
		TherapistName: "Dr. Rossi",
		DeviceModel:   domain.DefaultDeviceModel,
		DateTime:      at,
	}
}

// SampleFields returns a mapped point field set with the given order.
func SampleFields(order int) domain.PointFields {
	return domain.PointFields{
		StumpPosition:     &domain.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
		LimbPosition:      &domain.Vec3{X: -0.4, Y: 1.5, Z: 0.05},
		StimulationType:   "TENS",
		Program:           "P3",
		Frequency:         "80 Hz",
		Sensation:         "tingling",
		DistanceFromStump: "4 cm",
		ImageURLs:         []string{},
		Order:             order,
	}
}

// RunGatewaySuite exercises the persistence contract against a gateway.
func RunGatewaySuite(t *testing.T, newGateway Factory) {
	t.Helper()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("exam round trip", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)

		created, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := g.GetExam(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Maria Rossi", got.PatientName)
		assert.Equal(t, domain.LimbLegLeft, got.Limb)
		assert.Equal(t, domain.LocationBelowKnee, got.Location)
		assert.True(t, base.Equal(got.DateTime))
	})

	t.Run("missing exam", func(t *testing.T) {
		g := newGateway(t)
		_, err := g.GetExam(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find exams newest first", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)

		older, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)
		newer, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base.Add(48*time.Hour)))
		require.NoError(t, err)
		_, err = g.CreateExam(ctx, SampleExam("Luca Bianchi", "P-002", base))
		require.NoError(t, err)

		found, err := g.FindExams(ctx, "Maria Rossi", "P-001")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, newer.ID, found[0].ID)
		assert.Equal(t, older.ID, found[1].ID)

		all, err := g.ListPatientExams(ctx, "P-002")
		require.NoError(t, err)
		assert.Len(t, all, 1)

		none, err := g.FindExams(ctx, "Maria Rossi", "P-999")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update exam", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)

		exam, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)
		exam.Limb = domain.LimbArmRight
		exam.Location = domain.LocationAboveElbow
		require.NoError(t, g.UpdateExam(ctx, exam))

		got, err := g.GetExam(ctx, exam.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LimbArmRight, got.Limb)
		assert.Equal(t, domain.LocationAboveElbow, got.Location)

		exam.ID = "missing"
		assert.ErrorIs(t, g.UpdateExam(ctx, exam), domain.ErrNotFound)
	})

	t.Run("point lifecycle", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)
		exam, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)

		second, err := g.CreatePoint(ctx, exam.ID, SampleFields(2))
		require.NoError(t, err)
		first, err := g.CreatePoint(ctx, exam.ID, SampleFields(1))
		require.NoError(t, err)
		require.NotEqual(t, first.ID, second.ID)

		points, err := g.ListPoints(ctx, exam.ID)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, first.ID, points[0].ID.String())
		assert.Equal(t, second.ID, points[1].ID.String())
		assert.True(t, points[0].IsCommitted())
		assert.False(t, points[0].HasUnsavedChanges)
		assert.Equal(t, "tingling", points[0].Sensation)
		require.NotNil(t, points[0].LimbPosition)
		assert.InDelta(t, 1.5, points[0].LimbPosition.Y, 1e-9)

		update := SampleFields(1)
		update.LimbPosition = nil
		update.Sensation = "pressure"
		require.NoError(t, g.UpdatePoint(ctx, exam.ID, first.ID, update))

		points, err = g.ListPoints(ctx, exam.ID)
		require.NoError(t, err)
		assert.Nil(t, points[0].LimbPosition)
		assert.Equal(t, "pressure", points[0].Sensation)

		require.NoError(t, g.DeletePoint(ctx, exam.ID, first.ID))
		require.NoError(t, g.DeletePoint(ctx, exam.ID, first.ID))
		points, err = g.ListPoints(ctx, exam.ID)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("update missing point", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)
		exam, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)
		err = g.UpdatePoint(ctx, exam.ID, "missing", SampleFields(1))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("images", func(t *testing.T) {
		ctx := context.Background()
		g := newGateway(t)
		exam, err := g.CreateExam(ctx, SampleExam("Maria Rossi", "P-001", base))
		require.NoError(t, err)

		a, err := g.UploadImage(ctx, exam.ID, "p1", []byte("jpeg-a"))
		require.NoError(t, err)
		b, err := g.UploadImage(ctx, exam.ID, "p1", []byte("jpeg-b"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.Contains(t, a, "images/"+exam.ID+"/p1_")

		data, err := g.GetImage(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-b"), data)

		require.NoError(t, g.DeleteImage(ctx, exam.ID, "p1", a))
		require.NoError(t, g.DeleteImage(ctx, exam.ID, "p1", a))
		_, err = g.GetImage(ctx, a)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
