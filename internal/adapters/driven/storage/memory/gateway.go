package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// Ensure Gateway implements the interface.
var _ driven.PersistenceGateway = (*Gateway)(nil)

// imageScheme prefixes URLs of images held by the memory gateway.
const imageScheme = "mem://"

type pointRecord struct {
	fields    domain.PointFields
	createdAt time.Time
}

// Gateway is an in-memory implementation of driven.PersistenceGateway.
// Nothing survives the process; it backs tests and the "memory" backend.
type Gateway struct {
	mu        sync.RWMutex
	exams     map[string]domain.Exam
	points    map[string]map[string]pointRecord
	images    map[string][]byte
	now       func() time.Time
	lastStamp int64
}

// NewGateway creates an empty in-memory gateway.
func NewGateway() *Gateway {
	return &Gateway{
		exams:  make(map[string]domain.Exam),
		points: make(map[string]map[string]pointRecord),
		images: make(map[string][]byte),
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (g *Gateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// CreateExam stores a new exam.
func (g *Gateway) CreateExam(_ context.Context, exam domain.Exam) (domain.Exam, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	exam.ID = uuid.NewString()
	exam.CreatedAt = now
	exam.LastEdited = now
	g.exams[exam.ID] = exam
	return exam, nil
}

// GetExam retrieves an exam by ID.
func (g *Gateway) GetExam(_ context.Context, id string) (domain.Exam, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	exam, ok := g.exams[id]
	if !ok {
		return domain.Exam{}, domain.ErrNotFound
	}
	return exam, nil
}

// FindExams returns exams matching patient name and ID, newest first.
func (g *Gateway) FindExams(_ context.Context, patientName, patientID string) ([]domain.Exam, error) {
	return g.filterExams(func(e domain.Exam) bool {
		return e.PatientName == patientName && e.PatientID == patientID
	}), nil
}

// ListPatientExams returns all exams of a patient, newest first.
func (g *Gateway) ListPatientExams(_ context.Context, patientID string) ([]domain.Exam, error) {
	return g.filterExams(func(e domain.Exam) bool {
		return e.PatientID == patientID
	}), nil
}

func (g *Gateway) filterExams(keep func(domain.Exam) bool) []domain.Exam {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Exam, 0)
	for _, e := range g.exams {
		if keep(e) {
			out = append(out, e)
		}
	}
	SortExams(out)
	return out
}

// UpdateExam overwrites an exam's fields.
func (g *Gateway) UpdateExam(_ context.Context, exam domain.Exam) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	existing, ok := g.exams[exam.ID]
	if !ok {
		return domain.ErrNotFound
	}
	exam.CreatedAt = existing.CreatedAt
	exam.LastEdited = g.now()
	g.exams[exam.ID] = exam
	return nil
}

// CreatePoint stores a point under a fresh UUID.
func (g *Gateway) CreatePoint(_ context.Context, examID string, fields domain.PointFields) (driven.PointReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.exams[examID]; !ok {
		return driven.PointReceipt{}, domain.ErrNotFound
	}
	if g.points[examID] == nil {
		g.points[examID] = make(map[string]pointRecord)
	}
	id := uuid.NewString()
	created := g.now()
	g.points[examID][id] = pointRecord{fields: cloneFields(fields), createdAt: created}
	return driven.PointReceipt{ID: id, CreatedAt: created}, nil
}

// UpdatePoint overwrites a point's fields.
func (g *Gateway) UpdatePoint(_ context.Context, examID, pointID string, fields domain.PointFields) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.points[examID][pointID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.fields = cloneFields(fields)
	g.points[examID][pointID] = rec
	return nil
}

// DeletePoint removes a point record.
func (g *Gateway) DeletePoint(_ context.Context, examID, pointID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.points[examID], pointID)
	return nil
}

// ListPoints returns an exam's points sorted by order, then creation time.
func (g *Gateway) ListPoints(_ context.Context, examID string) ([]domain.Point, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Point, 0, len(g.points[examID]))
	for id, rec := range g.points[examID] {
		out = append(out, domain.PointFromFields(id, rec.fields, rec.createdAt))
	}
	SortPoints(out)
	return out, nil
}

// UploadImage stores image bytes under a unique key.
func (g *Gateway) UploadImage(_ context.Context, examID, pointID string, image []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	url := imageScheme + domain.ImageKey(examID, pointID, g.stamp())
	g.images[url] = slices.Clone(image)
	return url, nil
}

// DeleteImage removes an image. Missing images are ignored.
func (g *Gateway) DeleteImage(_ context.Context, _, _, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.images, url)
	return nil
}

// GetImage returns stored image bytes.
func (g *Gateway) GetImage(_ context.Context, url string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	img, ok := g.images[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(img), nil
}

// ImageCount returns how many images are stored.
func (g *Gateway) ImageCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.images)
}

// Close is a no-op.
func (g *Gateway) Close() error {
	return nil
}

// stamp returns a strictly increasing millisecond timestamp (caller holds mu).
func (g *Gateway) stamp() int64 {
	n := g.now().UnixMilli()
	if n <= g.lastStamp {
		n = g.lastStamp + 1
	}
	g.lastStamp = n
	return n
}

func cloneFields(f domain.PointFields) domain.PointFields {
	c := f
	if f.StumpPosition != nil {
		c.StumpPosition = f.StumpPosition.Ptr()
	}
	if f.LimbPosition != nil {
		c.LimbPosition = f.LimbPosition.Ptr()
	}
	c.ImageURLs = slices.Clone(f.ImageURLs)
	return c
}

// SortExams orders exams by DateTime, newest first.
func SortExams(exams []domain.Exam) {
	slices.SortStableFunc(exams, func(a, b domain.Exam) int {
		if c := b.DateTime.Compare(a.DateTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// SortPoints orders points by Order, falling back to CreatedAt.
func SortPoints(points []domain.Point) {
	slices.SortStableFunc(points, func(a, b domain.Point) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
