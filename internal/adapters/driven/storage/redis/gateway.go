// Package redis provides a Redis-backed driven.PersistenceGateway.
//
// Layout, under a configurable key prefix:
//
//	exam:{id}                 exam JSON
//	patient:{patientID}:exams sorted set of exam IDs scored by exam time
//	exam:{id}:points          hash of point ID to point JSON
//	image:{key}               image bytes
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// Ensure Gateway implements the interface.
var _ driven.PersistenceGateway = (*Gateway)(nil)

// DefaultPrefix namespaces every key written by the gateway.
const DefaultPrefix = "refeel:"

// imageScheme prefixes URLs of images held in Redis.
const imageScheme = "redis://"

// Options configures the gateway.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

const maxImageKeyAttempts = 16

// Gateway stores exams, points and images in Redis.
type Gateway struct {
	client *redis.Client
	prefix string
	now    func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

type pointRecord struct {
	Fields    domain.PointFields `json:"fields"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NewGateway connects to Redis and verifies the connection.
func NewGateway(ctx context.Context, opts Options) (*Gateway, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return NewGatewayWithClient(client, opts.Prefix), nil
}

// NewGatewayWithClient wraps an existing client.
func NewGatewayWithClient(client *redis.Client, prefix string) *Gateway {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Gateway{client: client, prefix: prefix, now: time.Now}
}

// Close closes the client connection.
func (g *Gateway) Close() error {
	return g.client.Close()
}

func (g *Gateway) examKey(id string) string { return g.prefix + "exam:" + id }

func (g *Gateway) pointsKey(examID string) string { return g.prefix + "exam:" + examID + ":points" }

func (g *Gateway) patientKey(patientID string) string {
	return g.prefix + "patient:" + patientID + ":exams"
}

func (g *Gateway) imageKey(url string) string {
	return g.prefix + "image:" + strings.TrimPrefix(url, imageScheme)
}

// CreateExam stores a new exam and indexes it under its patient.
func (g *Gateway) CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	now := g.now().UTC()
	exam.ID = uuid.NewString()
	exam.CreatedAt = now
	exam.LastEdited = now

	data, err := json.Marshal(exam)
	if err != nil {
		return domain.Exam{}, fmt.Errorf("marshalling exam: %w", err)
	}
	_, err = g.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, g.examKey(exam.ID), data, 0)
		p.ZAdd(ctx, g.patientKey(exam.PatientID), &redis.Z{Score: examScore(exam), Member: exam.ID})
		return nil
	})
	if err != nil {
		return domain.Exam{}, fmt.Errorf("saving exam: %w", err)
	}
	return exam, nil
}

// GetExam retrieves an exam by ID.
func (g *Gateway) GetExam(ctx context.Context, id string) (domain.Exam, error) {
	data, err := g.client.Get(ctx, g.examKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Exam{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Exam{}, fmt.Errorf("reading exam: %w", err)
	}
	var exam domain.Exam
	if err := json.Unmarshal(data, &exam); err != nil {
		return domain.Exam{}, fmt.Errorf("unmarshalling exam %s: %w", id, err)
	}
	return exam, nil
}

// FindExams returns exams matching patient name and ID, newest first.
func (g *Gateway) FindExams(ctx context.Context, patientName, patientID string) ([]domain.Exam, error) {
	all, err := g.ListPatientExams(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Exam, 0, len(all))
	for _, e := range all {
		if e.PatientName == patientName {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListPatientExams returns all exams of a patient, newest first.
func (g *Gateway) ListPatientExams(ctx context.Context, patientID string) ([]domain.Exam, error) {
	ids, err := g.client.ZRevRange(ctx, g.patientKey(patientID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing exams: %w", err)
	}
	exams := make([]domain.Exam, 0, len(ids))
	for _, id := range ids {
		exam, err := g.GetExam(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, nil
}

// UpdateExam overwrites an exam and moves its index entry when the
// patient or exam time changed.
func (g *Gateway) UpdateExam(ctx context.Context, exam domain.Exam) error {
	existing, err := g.GetExam(ctx, exam.ID)
	if err != nil {
		return err
	}
	exam.CreatedAt = existing.CreatedAt
	exam.LastEdited = g.now().UTC()

	data, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("marshalling exam: %w", err)
	}
	_, err = g.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, g.examKey(exam.ID), data, 0)
		p.ZRem(ctx, g.patientKey(existing.PatientID), exam.ID)
		p.ZAdd(ctx, g.patientKey(exam.PatientID), &redis.Z{Score: examScore(exam), Member: exam.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating exam: %w", err)
	}
	return nil
}

// CreatePoint stores a point under a fresh UUID.
func (g *Gateway) CreatePoint(ctx context.Context, examID string, fields domain.PointFields) (driven.PointReceipt, error) {
	n, err := g.client.Exists(ctx, g.examKey(examID)).Result()
	if err != nil {
		return driven.PointReceipt{}, fmt.Errorf("checking exam: %w", err)
	}
	if n == 0 {
		return driven.PointReceipt{}, domain.ErrNotFound
	}

	receipt := driven.PointReceipt{ID: uuid.NewString(), CreatedAt: g.now().UTC()}
	if err := g.writePoint(ctx, examID, receipt.ID, pointRecord{Fields: fields, CreatedAt: receipt.CreatedAt}); err != nil {
		return driven.PointReceipt{}, err
	}
	return receipt, nil
}

// UpdatePoint overwrites a point's fields.
func (g *Gateway) UpdatePoint(ctx context.Context, examID, pointID string, fields domain.PointFields) error {
	data, err := g.client.HGet(ctx, g.pointsKey(examID), pointID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading point: %w", err)
	}
	var rec pointRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("unmarshalling point %s: %w", pointID, err)
	}
	rec.Fields = fields
	return g.writePoint(ctx, examID, pointID, rec)
}

func (g *Gateway) writePoint(ctx context.Context, examID, pointID string, rec pointRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling point: %w", err)
	}
	if err := g.client.HSet(ctx, g.pointsKey(examID), pointID, data).Err(); err != nil {
		return fmt.Errorf("saving point: %w", err)
	}
	return nil
}

// DeletePoint removes a point record.
func (g *Gateway) DeletePoint(ctx context.Context, examID, pointID string) error {
	if err := g.client.HDel(ctx, g.pointsKey(examID), pointID).Err(); err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// ListPoints returns an exam's points sorted by order, then creation time.
func (g *Gateway) ListPoints(ctx context.Context, examID string) ([]domain.Point, error) {
	raw, err := g.client.HGetAll(ctx, g.pointsKey(examID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing points: %w", err)
	}
	points := make([]domain.Point, 0, len(raw))
	for id, data := range raw {
		var rec pointRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling point %s: %w", id, err)
		}
		points = append(points, domain.PointFromFields(id, rec.Fields, rec.CreatedAt))
	}
	return domain.NewCollection(points...).Ordered(), nil
}

// UploadImage stores image bytes under a unique key. Keys are claimed with
// SETNX so gateways in other processes never overwrite each other's
// photos; a taken key moves on to the next stamp.
func (g *Gateway) UploadImage(ctx context.Context, examID, pointID string, image []byte) (string, error) {
	for i := 0; i < maxImageKeyAttempts; i++ {
		url := imageScheme + domain.ImageKey(examID, pointID, g.stamp())
		claimed, err := g.client.SetNX(ctx, g.imageKey(url), image, 0).Result()
		if err != nil {
			return "", fmt.Errorf("saving image: %w", err)
		}
		if claimed {
			return url, nil
		}
	}
	return "", fmt.Errorf("saving image: no free key for point %s after %d attempts", pointID, maxImageKeyAttempts)
}

// DeleteImage removes an image. Missing images are ignored.
func (g *Gateway) DeleteImage(ctx context.Context, _, _, url string) error {
	if err := g.client.Del(ctx, g.imageKey(url)).Err(); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// GetImage returns stored image bytes.
func (g *Gateway) GetImage(ctx context.Context, url string) ([]byte, error) {
	data, err := g.client.Get(ctx, g.imageKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

func (g *Gateway) stamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	if n <= g.lastStamp {
		n = g.lastStamp + 1
	}
	g.lastStamp = n
	return n
}

func examScore(e domain.Exam) float64 {
	return float64(e.DateTime.Unix())
}
