package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/core"
	"pressroom/internal/dispatch"
	"pressroom/internal/persistence"
)

// maxBatchSize caps POST /api/assignments/batch.
const maxBatchSize = 1000

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

var errBadRequest = errors.New("bad request")

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchRequest is the POST /api/assignments/batch payload.
type BatchRequest struct {
	Requests    []dispatch.Request `json:"requests"`
	Concurrency int                `json:"concurrency,omitempty"`
}

// BatchResponse returns assignments in request order.
type BatchResponse struct {
	Assignments []core.TemplateAssignment `json:"assignments"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"dispatcher": "ok"}

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(r.Context()); err != nil {
			checks["database"] = "error"
			s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
			return
		}
		checks["database"] = "ok"
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

// handleAssign handles POST /api/assignments. Assignment itself never fails;
// only malformed bodies are rejected.
func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.deps.Dispatcher.Assign(r.Context(), req))
}

// handleAssignBatch handles POST /api/assignments/batch
func (s *Server) handleAssignBatch(w http.ResponseWriter, r *http.Request) {
	var batch BatchRequest
	if err := s.decodeJSON(w, r, &batch); err != nil {
		s.respondError(w, err)
		return
	}
	if len(batch.Requests) > maxBatchSize {
		s.respondError(w, fmt.Errorf("%w: at most %d requests per batch", errBadRequest, maxBatchSize))
		return
	}

	concurrency := batch.Concurrency
	if concurrency <= 0 {
		concurrency = s.deps.BatchConcurrency
	}

	assignments := s.deps.Dispatcher.AssignBatch(r.Context(), batch.Requests, concurrency)
	s.respondJSON(w, http.StatusOK, BatchResponse{Assignments: assignments})
}

// handleRender handles POST /api/render
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.deps.Dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.record(r, result, req.Article.ID)

	s.respondJSON(w, http.StatusOK, result)
}

// handleArticlePage handles GET /articles/{id}, rendering the stored article as HTML.
func (s *Server) handleArticlePage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Articles == nil {
		s.respondJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "no article source configured"})
		return
	}

	start := time.Now()
	id := chi.URLParam(r, "id")

	article, err := s.deps.Articles.GetArticle(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	useAI := s.deps.UseAILayout
	if raw := r.URL.Query().Get("ai"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, fmt.Errorf("%w: ai must be a boolean", errBadRequest))
			return
		}
		useAI = parsed
	}

	req := dispatch.Request{Article: article, UseAILayout: useAI, Template: r.URL.Query().Get("template")}
	result, err := s.deps.Dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.record(r, result, article.ID)

	if s.deps.Tracker != nil {
		if err := s.deps.Tracker.TrackRender(r.Context(), article.ID, result.Assignment.Template, time.Since(start).Milliseconds()); err != nil {
			s.log.Debug("Failed to track render", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Template", string(result.Assignment.Template))
	w.Header().Set("X-Assignment-Mode", string(result.Assignment.Mode))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Output))
}

func (s *Server) record(r *http.Request, result dispatch.Result, articleID string) {
	if s.deps.Recorder == nil {
		return
	}
	if err := s.deps.Recorder.RecordAssignment(r.Context(), result.DispatchID, articleID, result.Assignment); err != nil {
		s.log.Warn("Failed to record assignment", "dispatch_id", result.DispatchID, "error", err)
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, persistence.ErrArticleNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.respondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}
