package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func sampleExam() domain.Exam {
	return domain.Exam{
		ID:            "exam-1",
		PatientName:   "Maria Rossi",
		PatientID:     "P-001",
		Limb:          domain.LimbLegRight,
		Location:      domain.LocationBelowKnee,
		TherapistName: "Dr. Bianchi",
		DeviceModel:   domain.DefaultDeviceModel,
		DateTime:      time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
	}
}

func samplePoints() []domain.Point {
	return []domain.Point{
		{
			ID:            domain.Committed{PersistedID: "p1"},
			StumpPosition: &domain.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
			LimbPosition:  &domain.Vec3{X: 1, Y: 2, Z: 3},
			Sensation:     "tingling",
			ImageURLs:     []string{"mem://images/exam-1/p1_1.jpg"},
			Order:         1,
		},
		{
			ID:             domain.Committed{PersistedID: "p2"},
			StumpPosition:  &domain.Vec3{X: -0.1},
			Frequency:      "80 Hz",
			LegacyImageURL: "mem://legacy.jpg",
			Order:          2,
		},
	}
}

func newTestServer(t *testing.T, exams *mockExamService) *Server {
	t.Helper()
	server, err := New(&Ports{Exams: exams})
	require.NoError(t, err)
	return server
}

func TestServer_handleGetExam(t *testing.T) {
	ctx := context.Background()

	t.Run("returns exam", func(t *testing.T) {
		mock := &mockExamService{exam: sampleExam()}
		_, out, err := newTestServer(t, mock).handleGetExam(ctx, nil, ExamInput{ExamID: "exam-1"})

		require.NoError(t, err)
		assert.Equal(t, "exam-1", mock.lastQuery)
		assert.Equal(t, "Maria Rossi", out.PatientName)
		assert.Equal(t, "leg-right", out.Limb)
		assert.Equal(t, "below-knee", out.Location)
		assert.Equal(t, "2024-05-10T09:30:00Z", out.DateTime)
	})

	t.Run("propagates not found", func(t *testing.T) {
		mock := &mockExamService{err: domain.ErrNotFound}
		_, _, err := newTestServer(t, mock).handleGetExam(ctx, nil, ExamInput{ExamID: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleFindExam(t *testing.T) {
	mock := &mockExamService{exam: sampleExam()}
	_, out, err := newTestServer(t, mock).handleFindExam(context.Background(), nil,
		FindExamInput{PatientName: "Maria Rossi", PatientID: "P-001"})

	require.NoError(t, err)
	assert.Equal(t, "Maria Rossi/P-001", mock.lastQuery)
	assert.Equal(t, "exam-1", out.ID)
}

func TestServer_handleListPatientExams(t *testing.T) {
	second := sampleExam()
	second.ID = "exam-0"
	mock := &mockExamService{exams: []domain.Exam{sampleExam(), second}}

	_, out, err := newTestServer(t, mock).handleListPatientExams(context.Background(), nil,
		PatientInput{PatientID: "P-001"})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "exam-1", out.Exams[0].ID)
	assert.Equal(t, "exam-0", out.Exams[1].ID)
}

func TestServer_handleListPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("numbers points and counts mapped", func(t *testing.T) {
		mock := &mockExamService{points: samplePoints()}
		_, out, err := newTestServer(t, mock).handleListPoints(ctx, nil, ExamInput{ExamID: "exam-1"})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Count)
		assert.Equal(t, 1, out.Mapped)

		first := out.Points[0]
		assert.Equal(t, 1, first.Number)
		assert.Equal(t, "p1", first.ID)
		require.NotNil(t, first.LimbPosition)
		assert.Equal(t, 2.0, first.LimbPosition.Y)
		assert.Equal(t, "tingling", first.Sensation)

		second := out.Points[1]
		assert.Equal(t, 2, second.Number)
		assert.Nil(t, second.LimbPosition)
		assert.Equal(t, []string{"mem://legacy.jpg"}, second.Images)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		mock := &mockExamService{err: errors.New("store offline")}
		_, _, err := newTestServer(t, mock).handleListPoints(ctx, nil, ExamInput{ExamID: "exam-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store offline")
	})
}
