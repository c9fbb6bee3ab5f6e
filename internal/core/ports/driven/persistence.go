package driven

import (
	"context"
	"time"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// PointReceipt is what the store returns for a newly created point.
type PointReceipt struct {
	ID        string
	CreatedAt time.Time
}

// ExamStore persists exams.
type ExamStore interface {
	// CreateExam stores a new exam and returns it with ID and timestamps set.
	CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error)

	// GetExam retrieves an exam by ID. Returns domain.ErrNotFound if absent.
	GetExam(ctx context.Context, id string) (domain.Exam, error)

	// FindExams returns exams matching both patient name and patient ID,
	// most recent DateTime first.
	FindExams(ctx context.Context, patientName, patientID string) ([]domain.Exam, error)

	// ListPatientExams returns all exams for a patient ID, most recent first.
	ListPatientExams(ctx context.Context, patientID string) ([]domain.Exam, error)

	// UpdateExam overwrites an exam's fields and stamps LastEdited.
	UpdateExam(ctx context.Context, exam domain.Exam) error
}

// PointStore persists the points of an exam.
// Identifiers passed in and returned are always persisted identifiers.
type PointStore interface {
	// CreatePoint stores a point. It either fully succeeds or stores nothing.
	CreatePoint(ctx context.Context, examID string, fields domain.PointFields) (PointReceipt, error)

	// UpdatePoint overwrites a point's fields.
	// Returns domain.ErrNotFound if the point does not exist.
	UpdatePoint(ctx context.Context, examID, pointID string, fields domain.PointFields) error

	// DeletePoint removes a point record. Missing points are not an error.
	DeletePoint(ctx context.Context, examID, pointID string) error

	// ListPoints returns an exam's points sorted by order, then CreatedAt.
	ListPoints(ctx context.Context, examID string) ([]domain.Point, error)
}

// ImageStore persists point photos.
type ImageStore interface {
	// UploadImage stores a JPEG and returns its URL. Every call yields a
	// distinct location, so several images of one point never collide.
	UploadImage(ctx context.Context, examID, pointID string, image []byte) (string, error)

	// DeleteImage removes an image by URL. An image that is already gone
	// is not an error.
	DeleteImage(ctx context.Context, examID, pointID, url string) error

	// GetImage returns the bytes stored at url.
	GetImage(ctx context.Context, url string) ([]byte, error)
}

// PersistenceGateway is everything the core needs from the record store.
type PersistenceGateway interface {
	ExamStore
	PointStore
	ImageStore

	// Close releases connections held by the gateway.
	Close() error
}
