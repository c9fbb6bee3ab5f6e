package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
)

// Ensure ExamService implements the interface.
var _ driving.ExamService = (*ExamService)(nil)

// ExamService manages exams outside of an open mapping session.
type ExamService struct {
	store driven.PersistenceGateway
	now   func() time.Time
}

// NewExamService creates a new exam service.
func NewExamService(store driven.PersistenceGateway) *ExamService {
	return &ExamService{store: store, now: time.Now}
}

// Create validates and stores a new exam. DateTime defaults to now and
// DeviceModel to domain.DefaultDeviceModel.
func (s *ExamService) Create(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	if s.store == nil {
		return domain.Exam{}, domain.ErrNotImplemented
	}
	exam.PatientName = strings.TrimSpace(exam.PatientName)
	exam.PatientID = strings.TrimSpace(exam.PatientID)
	exam.TherapistName = strings.TrimSpace(exam.TherapistName)
	if err := exam.Validate(); err != nil {
		return domain.Exam{}, err
	}
	if exam.DeviceModel == "" {
		exam.DeviceModel = domain.DefaultDeviceModel
	}
	if exam.DateTime.IsZero() {
		exam.DateTime = s.now()
	}
	created, err := s.store.CreateExam(ctx, exam)
	if err != nil {
		return domain.Exam{}, domain.NewPersistenceError("create exam", err)
	}
	return created, nil
}

// Get retrieves an exam by ID.
func (s *ExamService) Get(ctx context.Context, id string) (domain.Exam, error) {
	if s.store == nil {
		return domain.Exam{}, domain.ErrNotImplemented
	}
	if id == "" {
		return domain.Exam{}, domain.ErrInvalidInput
	}
	return s.store.GetExam(ctx, id)
}

// FindLatest returns the most recent exam matching patient name and ID.
func (s *ExamService) FindLatest(ctx context.Context, patientName, patientID string) (domain.Exam, error) {
	if s.store == nil {
		return domain.Exam{}, domain.ErrNotImplemented
	}
	patientName, patientID = strings.TrimSpace(patientName), strings.TrimSpace(patientID)
	if patientName == "" || patientID == "" {
		return domain.Exam{}, fmt.Errorf("%w: patient name and id are required", domain.ErrValidation)
	}
	exams, err := s.store.FindExams(ctx, patientName, patientID)
	if err != nil {
		return domain.Exam{}, domain.NewPersistenceError("find exams", err)
	}
	if len(exams) == 0 {
		return domain.Exam{}, fmt.Errorf("%w: no exam for %s (%s)", domain.ErrNotFound, patientName, patientID)
	}
	return exams[0], nil
}

// ListForPatient returns a patient's exams, most recent first.
func (s *ExamService) ListForPatient(ctx context.Context, patientID string) ([]domain.Exam, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(patientID) == "" {
		return nil, domain.ErrInvalidInput
	}
	exams, err := s.store.ListPatientExams(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return nil, domain.NewPersistenceError("list exams", err)
	}
	return exams, nil
}

// Points returns the stored points of an exam in order.
func (s *ExamService) Points(ctx context.Context, examID string) ([]domain.Point, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	points, err := s.store.ListPoints(ctx, examID)
	if err != nil {
		return nil, domain.NewPersistenceError("list points", err)
	}
	return points, nil
}
