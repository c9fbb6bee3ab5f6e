// Package remote provides a driven.PersistenceGateway that talks to a
// refeel HTTP API (see the httpapi package) using resty.
//
// Requests are throttled with a token bucket and authenticated with a
// static bearer token when one is configured. Requests are not retried.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.PersistenceGateway = (*Gateway)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Options configures the gateway.
type Options struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Gateway is a REST client implementing driven.PersistenceGateway.
type Gateway struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewGateway creates a client for the API at opts.BaseURL.
func NewGateway(opts Options) (*Gateway, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", domain.ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: base URL: %v", domain.ErrInvalidInput, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}

	client := resty.NewWithClient(hc).
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Gateway{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Close releases idle connections.
func (g *Gateway) Close() error {
	g.client.GetClient().CloseIdleConnections()
	return nil
}

// request waits for the rate limiter and starts a request.
func (g *Gateway) request(ctx context.Context) (*resty.Request, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return g.client.R().SetContext(ctx).SetError(&ErrorBody{}), nil
}

// check maps transport errors and HTTP status codes to domain errors.
func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		logger.L().Warn("remote request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if body, ok := resp.Error().(*ErrorBody); ok && body.Error != "" {
		msg = body.Error
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, msg)
	default:
		logger.L().Warn("remote request rejected",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", msg))
		return fmt.Errorf("%s: %s (status %d)", op, msg, resp.StatusCode())
	}
}

// CreateExam stores a new exam.
func (g *Gateway) CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	req, err := g.request(ctx)
	if err != nil {
		return domain.Exam{}, err
	}
	var created domain.Exam
	resp, err := req.SetBody(exam).SetResult(&created).Post("/exams")
	if err := check("create exam", resp, err); err != nil {
		return domain.Exam{}, err
	}
	return created, nil
}

// GetExam retrieves an exam by ID.
func (g *Gateway) GetExam(ctx context.Context, id string) (domain.Exam, error) {
	req, err := g.request(ctx)
	if err != nil {
		return domain.Exam{}, err
	}
	var exam domain.Exam
	resp, err := req.SetPathParam("examID", id).SetResult(&exam).Get("/exams/{examID}")
	if err := check("get exam", resp, err); err != nil {
		return domain.Exam{}, err
	}
	return exam, nil
}

// FindExams returns exams matching patient name and ID, newest first.
func (g *Gateway) FindExams(ctx context.Context, patientName, patientID string) ([]domain.Exam, error) {
	return g.listExams(ctx, map[string]string{"patientName": patientName, "patientId": patientID})
}

// ListPatientExams returns all exams of a patient, newest first.
func (g *Gateway) ListPatientExams(ctx context.Context, patientID string) ([]domain.Exam, error) {
	return g.listExams(ctx, map[string]string{"patientId": patientID})
}

func (g *Gateway) listExams(ctx context.Context, query map[string]string) ([]domain.Exam, error) {
	req, err := g.request(ctx)
	if err != nil {
		return nil, err
	}
	exams := make([]domain.Exam, 0)
	resp, err := req.SetQueryParams(query).SetResult(&exams).Get("/exams")
	if err := check("list exams", resp, err); err != nil {
		return nil, err
	}
	return exams, nil
}

// UpdateExam overwrites an exam.
func (g *Gateway) UpdateExam(ctx context.Context, exam domain.Exam) error {
	req, err := g.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetPathParam("examID", exam.ID).SetBody(exam).Put("/exams/{examID}")
	return check("update exam", resp, err)
}

// CreatePoint stores a point and returns the identifier the server assigned.
func (g *Gateway) CreatePoint(ctx context.Context, examID string, fields domain.PointFields) (driven.PointReceipt, error) {
	req, err := g.request(ctx)
	if err != nil {
		return driven.PointReceipt{}, err
	}
	var receipt Receipt
	resp, err := req.SetPathParam("examID", examID).
		SetBody(fields).
		SetResult(&receipt).
		Post("/exams/{examID}/points")
	if err := check("create point", resp, err); err != nil {
		return driven.PointReceipt{}, err
	}
	return driven.PointReceipt{ID: receipt.ID, CreatedAt: receipt.CreatedAt}, nil
}

// UpdatePoint overwrites a point's fields.
func (g *Gateway) UpdatePoint(ctx context.Context, examID, pointID string, fields domain.PointFields) error {
	req, err := g.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetPathParams(map[string]string{"examID": examID, "pointID": pointID}).
		SetBody(fields).
		Put("/exams/{examID}/points/{pointID}")
	return check("update point", resp, err)
}

// DeletePoint removes a point. A point the server no longer has is not an error.
func (g *Gateway) DeletePoint(ctx context.Context, examID, pointID string) error {
	req, err := g.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetPathParams(map[string]string{"examID": examID, "pointID": pointID}).
		Delete("/exams/{examID}/points/{pointID}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return check("delete point", resp, err)
}

// ListPoints returns an exam's points sorted by order, then creation time.
func (g *Gateway) ListPoints(ctx context.Context, examID string) ([]domain.Point, error) {
	req, err := g.request(ctx)
	if err != nil {
		return nil, err
	}
	var records []PointRecord
	resp, err := req.SetPathParam("examID", examID).SetResult(&records).Get("/exams/{examID}/points")
	if err := check("list points", resp, err); err != nil {
		return nil, err
	}
	points := make([]domain.Point, 0, len(records))
	for _, r := range records {
		points = append(points, domain.PointFromFields(r.ID, r.Fields, r.CreatedAt))
	}
	return domain.NewCollection(points...).Ordered(), nil
}

// UploadImage sends JPEG bytes and returns the stored image URL.
func (g *Gateway) UploadImage(ctx context.Context, examID, pointID string, image []byte) (string, error) {
	req, err := g.request(ctx)
	if err != nil {
		return "", err
	}
	var ref ImageRef
	resp, err := req.SetPathParams(map[string]string{"examID": examID, "pointID": pointID}).
		SetHeader("Content-Type", "image/jpeg").
		SetBody(image).
		SetResult(&ref).
		Post("/exams/{examID}/points/{pointID}/images")
	if err := check("upload image", resp, err); err != nil {
		return "", err
	}
	return ref.URL, nil
}

// DeleteImage removes an image. Missing images are ignored.
func (g *Gateway) DeleteImage(ctx context.Context, examID, pointID, imageURL string) error {
	req, err := g.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetPathParams(map[string]string{"examID": examID, "pointID": pointID}).
		SetQueryParam("url", imageURL).
		Delete("/exams/{examID}/points/{pointID}/images")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return check("delete image", resp, err)
}

// GetImage downloads image bytes.
func (g *Gateway) GetImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := g.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetQueryParam("url", imageURL).SetHeader("Accept", "image/jpeg").Get("/images")
	if err := check("get image", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
