package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressroom/internal/config"
	"pressroom/internal/core"
	"pressroom/internal/dispatch"
	"pressroom/internal/logger"
	"pressroom/internal/persistence"
	"pressroom/internal/render"
	"pressroom/internal/templates"
)

type mockRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockRecorder) RecordAssignment(ctx context.Context, dispatchID, articleID string, assignment core.TemplateAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, articleID+":"+string(assignment.Template))
	return nil
}

type mockTracker struct {
	TrackRenderFunc func(ctx context.Context, articleID string, template core.TemplateType, durationMs int64) error
}

func (m *mockTracker) TrackRender(ctx context.Context, articleID string, template core.TemplateType, durationMs int64) error {
	return m.TrackRenderFunc(ctx, articleID, template, durationMs)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func testArticles() *persistence.MemorySource {
	return persistence.NewMemorySource(
		core.ArticleContent{ID: "abc123", Title: "Chips", Category: "Technology", Content: "## Intro\n\nTransistors keep shrinking."},
		core.ArticleContent{ID: "post-1", Title: "Rates", Category: "Finance", Content: "The central bank raised rates."},
	)
}

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	if deps.Dispatcher == nil {
		deps.Dispatcher = dispatch.New(nil, dispatch.Options{Renderers: render.DefaultRegistry(), Logger: logger.Discard()})
	}
	s := New(config.Server{Host: "127.0.0.1", Port: 0}, deps)
	s.log = logger.Discard()
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	rec := do(t, s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthDatabaseDown(t *testing.T) {
	s := newTestServer(t, Dependencies{Database: pingerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})})
	rec := do(t, s, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"error"`)
}

func TestAssignDeterministic(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	rec := do(t, s, http.MethodPost, "/api/assignments", dispatch.Request{
		Article: core.ArticleContent{ID: "abc123", Category: "Technology"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"template":"modern","configuration":null,"mode":"deterministic"}`, rec.Body.String())
}

func TestAssignInvalidOverrideStillSucceeds(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	rec := do(t, s, http.MethodPost, "/api/assignments", dispatch.Request{
		Article:  core.ArticleContent{ID: "post-1", Category: "Health"},
		Template: "fancy",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var got core.TemplateAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, templates.Select("Health", "post-1"), got.Template)
	assert.Equal(t, core.ModeDeterministic, got.Mode)
}

func TestAssignMalformedBody(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	for _, body := range []string{"{not json", `{"unknown": true}`, ""} {
		rec := do(t, s, http.MethodPost, "/api/assignments", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestAssignBatch(t *testing.T) {
	s := newTestServer(t, Dependencies{BatchConcurrency: 2})

	var batch BatchRequest
	for i := 0; i < 10; i++ {
		batch.Requests = append(batch.Requests, dispatch.Request{
			Article: core.ArticleContent{ID: fmt.Sprintf("post-%d", i), Category: "Sports"},
		})
	}

	rec := do(t, s, http.MethodPost, "/api/assignments/batch", batch)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Assignments, 10)
	for i, a := range resp.Assignments {
		assert.Equal(t, templates.Select("Sports", fmt.Sprintf("post-%d", i)), a.Template)
	}
}

func TestAssignBatchTooLarge(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	batch := BatchRequest{Requests: make([]dispatch.Request, maxBatchSize+1)}

	rec := do(t, s, http.MethodPost, "/api/assignments/batch", batch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderEndpoint(t *testing.T) {
	recorder := &mockRecorder{}
	s := newTestServer(t, Dependencies{Recorder: recorder})

	rec := do(t, s, http.MethodPost, "/api/render", dispatch.Request{
		Article: core.ArticleContent{ID: "abc123", Title: "Chips", Category: "Technology", Content: "Body"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result dispatch.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.TemplateModern, result.Assignment.Template)
	assert.Contains(t, result.Output, "template-modern")
	assert.NotEmpty(t, result.DispatchID)
	assert.Equal(t, []string{"abc123:modern"}, recorder.calls)
}

func TestRenderEndpointRendererFailure(t *testing.T) {
	failing := render.RendererFunc(func(core.ArticleContent, *core.LayoutConfiguration) (string, error) {
		return "", errors.New("template broke")
	})
	d := dispatch.New(nil, dispatch.Options{
		Renderers: render.Registry{Classic: failing, Modern: failing, Magazine: failing, Minimal: failing},
		Logger:    logger.Discard(),
	})
	s := newTestServer(t, Dependencies{Dispatcher: d})

	rec := do(t, s, http.MethodPost, "/api/render", dispatch.Request{Article: core.ArticleContent{ID: "x", Category: "Politics"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "template broke")
}

func TestArticlePage(t *testing.T) {
	var tracked core.TemplateType
	tracker := &mockTracker{TrackRenderFunc: func(ctx context.Context, articleID string, template core.TemplateType, durationMs int64) error {
		tracked = template
		return nil
	}}
	s := newTestServer(t, Dependencies{Articles: testArticles(), Tracker: tracker})

	rec := do(t, s, http.MethodGet, "/articles/abc123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "modern", rec.Header().Get("X-Template"))
	assert.Equal(t, "deterministic", rec.Header().Get("X-Assignment-Mode"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html>"))
	assert.Equal(t, core.TemplateModern, tracked)
}

func TestArticlePageOverride(t *testing.T) {
	s := newTestServer(t, Dependencies{Articles: testArticles()})

	rec := do(t, s, http.MethodGet, "/articles/post-1?template=magazine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "magazine", rec.Header().Get("X-Template"))
}

func TestArticlePageAI(t *testing.T) {
	analyzer := dispatch.Analyzer(analyzerFunc(func(ctx context.Context, content, title, category string) (core.ContentAnalysis, error) {
		return core.ContentAnalysis{ContentType: core.ContentHowTo, Tone: core.ToneTechnical, Complexity: 0.5, ReadingTimeMinutes: 2}, nil
	}))
	d := dispatch.New(analyzer, dispatch.Options{Renderers: render.DefaultRegistry(), Logger: logger.Discard()})
	s := newTestServer(t, Dependencies{Articles: testArticles(), Dispatcher: d})

	rec := do(t, s, http.MethodGet, "/articles/post-1?ai=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ai", rec.Header().Get("X-Assignment-Mode"))
	assert.Equal(t, "modern", rec.Header().Get("X-Template"))

	rec = do(t, s, http.MethodGet, "/articles/post-1", nil)
	assert.Equal(t, "deterministic", rec.Header().Get("X-Assignment-Mode"))
}

func TestArticlePageErrors(t *testing.T) {
	s := newTestServer(t, Dependencies{Articles: testArticles()})

	rec := do(t, s, http.MethodGet, "/articles/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/articles/abc123?ai=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	noSource := newTestServer(t, Dependencies{})
	rec = do(t, noSource, http.MethodGet, "/articles/abc123", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	do(t, s, http.MethodGet, "/health", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pressroom_http_requests_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("wrapped: %w", persistence.ErrArticleNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(errBadRequest))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

type analyzerFunc func(ctx context.Context, content, title, category string) (core.ContentAnalysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, content, title, category string) (core.ContentAnalysis, error) {
	return f(ctx, content, title, category)
}
