// Package httpapi serves a driven.PersistenceGateway over HTTP so several
// workstations can share one store. The remote gateway is its client.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/remote"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// MaxImageBytes caps a single image upload.
const MaxImageBytes = 10 << 20

type api struct {
	store driven.PersistenceGateway
}

// NewRouter routes the REST API onto store. A non-empty token makes every
// route except /health require "Authorization: Bearer <token>".
func NewRouter(store driven.PersistenceGateway, token string) *mux.Router {
	a := &api{store: store}
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v := r.NewRoute().Subrouter()
	v.Use(logRequests, requireToken(token))
	v.HandleFunc("/exams", a.createExam).Methods(http.MethodPost)
	v.HandleFunc("/exams", a.listExams).Methods(http.MethodGet)
	v.HandleFunc("/exams/{examID}", a.getExam).Methods(http.MethodGet)
	v.HandleFunc("/exams/{examID}", a.updateExam).Methods(http.MethodPut)
	v.HandleFunc("/exams/{examID}/points", a.listPoints).Methods(http.MethodGet)
	v.HandleFunc("/exams/{examID}/points", a.createPoint).Methods(http.MethodPost)
	v.HandleFunc("/exams/{examID}/points/{pointID}", a.updatePoint).Methods(http.MethodPut)
	v.HandleFunc("/exams/{examID}/points/{pointID}", a.deletePoint).Methods(http.MethodDelete)
	v.HandleFunc("/exams/{examID}/points/{pointID}/images", a.uploadImage).Methods(http.MethodPost)
	v.HandleFunc("/exams/{examID}/points/{pointID}/images", a.deleteImage).Methods(http.MethodDelete)
	v.HandleFunc("/images", a.getImage).Methods(http.MethodGet)

	return r
}

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(addr string, store driven.PersistenceGateway, token string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(store, token),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requireToken(token string) mux.MiddlewareFunc {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
				writeJSON(w, http.StatusUnauthorized, remote.ErrorBody{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (a *api) createExam(w http.ResponseWriter, r *http.Request) {
	var exam domain.Exam
	if !decode(w, r, &exam) {
		return
	}
	if err := exam.Validate(); err != nil {
		writeError(w, err)
		return
	}
	created, err := a.store.CreateExam(r.Context(), exam)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *api) listExams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	patientID := q.Get("patientId")
	if patientID == "" {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "patientId is required"})
		return
	}
	var exams []domain.Exam
	var err error
	if name := q.Get("patientName"); name != "" {
		exams, err = a.store.FindExams(r.Context(), name, patientID)
	} else {
		exams, err = a.store.ListPatientExams(r.Context(), patientID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exams)
}

func (a *api) getExam(w http.ResponseWriter, r *http.Request) {
	exam, err := a.store.GetExam(r.Context(), mux.Vars(r)["examID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (a *api) updateExam(w http.ResponseWriter, r *http.Request) {
	var exam domain.Exam
	if !decode(w, r, &exam) {
		return
	}
	exam.ID = mux.Vars(r)["examID"]
	if err := a.store.UpdateExam(r.Context(), exam); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listPoints(w http.ResponseWriter, r *http.Request) {
	points, err := a.store.ListPoints(r.Context(), mux.Vars(r)["examID"])
	if err != nil {
		writeError(w, err)
		return
	}
	records := make([]remote.PointRecord, 0, len(points))
	for _, p := range points {
		records = append(records, remote.ToRecord(p))
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *api) createPoint(w http.ResponseWriter, r *http.Request) {
	var fields domain.PointFields
	if !decode(w, r, &fields) {
		return
	}
	receipt, err := a.store.CreatePoint(r.Context(), mux.Vars(r)["examID"], fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, remote.Receipt{ID: receipt.ID, CreatedAt: receipt.CreatedAt})
}

func (a *api) updatePoint(w http.ResponseWriter, r *http.Request) {
	var fields domain.PointFields
	if !decode(w, r, &fields) {
		return
	}
	vars := mux.Vars(r)
	if err := a.store.UpdatePoint(r.Context(), vars["examID"], vars["pointID"], fields); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deletePoint(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := a.store.DeletePoint(r.Context(), vars["examID"], vars["pointID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) uploadImage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImageBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, remote.ErrorBody{Error: err.Error()})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "empty image"})
		return
	}
	vars := mux.Vars(r)
	url, err := a.store.UploadImage(r.Context(), vars["examID"], vars["pointID"], data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, remote.ImageRef{URL: url})
}

func (a *api) deleteImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "url is required"})
		return
	}
	if err := a.store.DeleteImage(r.Context(), vars["examID"], vars["pointID"], url); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getImage(w http.ResponseWriter, r *http.Request) {
	data, err := a.store.GetImage(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		logger.L().Warn("store call failed", zap.Error(err))
	}
	writeJSON(w, status, remote.ErrorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
