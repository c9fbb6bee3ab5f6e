package mcp

import (
	"context"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// mockExamService is a mock implementation of driving.ExamService.
type mockExamService struct {
	exam      domain.Exam
	exams     []domain.Exam
	points    []domain.Point
	err       error
	lastQuery string
}

func (m *mockExamService) Create(_ context.Context, exam domain.Exam) (domain.Exam, error) {
	return exam, m.err
}

func (m *mockExamService) Get(_ context.Context, id string) (domain.Exam, error) {
	m.lastQuery = id
	return m.exam, m.err
}

func (m *mockExamService) FindLatest(_ context.Context, patientName, patientID string) (domain.Exam, error) {
	m.lastQuery = patientName + "/" + patientID
	return m.exam, m.err
}

func (m *mockExamService) ListForPatient(_ context.Context, patientID string) ([]domain.Exam, error) {
	m.lastQuery = patientID
	return m.exams, m.err
}

func (m *mockExamService) Points(_ context.Context, examID string) ([]domain.Point, error) {
	m.lastQuery = examID
	return m.points, m.err
}
