package driving

import (
	"context"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// ExamService manages exams outside of an open mapping session.
type ExamService interface {
	// Create validates and stores a new exam.
	Create(ctx context.Context, exam domain.Exam) (domain.Exam, error)

	// Get retrieves an exam by ID.
	Get(ctx context.Context, id string) (domain.Exam, error)

	// FindLatest returns the most recent exam for a patient name and ID.
	FindLatest(ctx context.Context, patientName, patientID string) (domain.Exam, error)

	// ListForPatient returns a patient's exams, most recent first.
	ListForPatient(ctx context.Context, patientID string) ([]domain.Exam, error)

	// Points returns the stored points of an exam in order.
	Points(ctx context.Context, examID string) ([]domain.Point, error)
}
