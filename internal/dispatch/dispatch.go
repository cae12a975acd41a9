// Package dispatch decides which template renders an article and hands the
// decision to the renderer registry.
//
// An assignment walks one of two paths:
//
//	Idle -> AnalyzingContent -> LayoutReady | AnalysisFailed -> Dispatched
//	Idle -> DeterministicPath -> Dispatched
//
// AnalysisFailed always continues on the deterministic selector, so Assign
// never fails.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pressroom/internal/analysis"
	"pressroom/internal/core"
	"pressroom/internal/layout"
	"pressroom/internal/logger"
	"pressroom/internal/metrics"
	"pressroom/internal/render"
	"pressroom/internal/templates"
	"pressroom/internal/tracer"
)

// ErrInvalidOverride marks a caller-supplied template outside the closed set.
// It is logged and counted, never returned from Assign.
var ErrInvalidOverride = errors.New("invalid template override")

// State is a step of the assignment state machine.
type State string

const (
	StateIdle              State = "idle"
	StateAnalyzingContent  State = "analyzing_content"
	StateLayoutReady       State = "layout_ready"
	StateAnalysisFailed    State = "analysis_failed"
	StateDeterministicPath State = "deterministic_path"
	StateDispatched        State = "dispatched"
)

// Analyzer is the content analysis collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, content, title, category string) (core.ContentAnalysis, error)
}

// Tracker receives finished assignments for product analytics.
type Tracker interface {
	TrackAssignment(ctx context.Context, articleID, category string, assignment core.TemplateAssignment) error
}

// Request asks for a template assignment for one article.
type Request struct {
	Article     core.ArticleContent `json:"article"`
	UseAILayout bool                `json:"useAILayout"`
	Template    string              `json:"template,omitempty"` // optional override
}

// Result is a dispatched assignment and its rendered output.
type Result struct {
	DispatchID string                  `json:"dispatchId"`
	Assignment core.TemplateAssignment `json:"assignment"`
	Output     string                  `json:"output"`
}

// Options configures a Dispatcher.
type Options struct {
	Renderers render.Registry
	Tracker   Tracker
	Logger    *slog.Logger
}

// Dispatcher assigns templates. It keeps no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	analyzer  Analyzer
	renderers render.Registry
	tracker   Tracker
	log       *slog.Logger
}

// New creates a dispatcher. A nil analyzer disables the AI path.
func New(analyzer Analyzer, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Dispatcher{
		analyzer:  analyzer,
		renderers: opts.Renderers,
		tracker:   opts.Tracker,
		log:       opts.Logger,
	}
}

// run tracks one assignment through the state machine.
type run struct {
	id    string
	state State
	log   *slog.Logger
}

func (r *run) transition(to State, args ...any) {
	r.log.Debug("Dispatch state transition", append([]any{"from", r.state, "to", to}, args...)...)
	r.state = to
}

// Assign returns the template assignment for req. It never fails: analysis
// problems, cancellation and invalid overrides all end on the deterministic
// selector.
func (d *Dispatcher) Assign(ctx context.Context, req Request) core.TemplateAssignment {
	assignment, _ := d.assign(ctx, req, uuid.NewString())
	return assignment
}

// Dispatch assigns a template and forwards the unmodified assignment to the
// matching renderer. Only the renderer's own failure is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	id := uuid.NewString()
	assignment, r := d.assign(ctx, req, id)

	ctx, span := tracer.Start(ctx, "dispatch.render")
	defer span.End()
	span.SetAttributes(attribute.String("template", string(assignment.Template)))

	renderer, err := d.renderers.For(assignment.Template)
	if err == nil {
		var output string
		output, err = renderer.Render(req.Article, assignment.Configuration)
		if err == nil {
			r.transition(StateDispatched)
			return Result{DispatchID: id, Assignment: assignment, Output: output}, nil
		}
	}

	metrics.RenderErrorsTotal.WithLabelValues(string(assignment.Template)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.log.Error("Renderer failed", "template", assignment.Template, "error", err.Error())
	return Result{DispatchID: id, Assignment: assignment}, fmt.Errorf("failed to render %s: %w", assignment.Template, err)
}

func (d *Dispatcher) assign(ctx context.Context, req Request, id string) (core.TemplateAssignment, *run) {
	article := req.Article
	ctx = logger.WithValue(ctx, logger.DispatchIDKey, id)
	ctx, span := tracer.Start(ctx, "dispatch.assign")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.id", id),
		attribute.String("article.id", article.ID),
		attribute.String("article.category", article.Category),
	)

	log := d.log.With("dispatch_id", id, "article_id", article.ID, "category", article.Category)
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok && requestID != "" {
		log = log.With("request_id", requestID)
	}
	r := &run{id: id, state: StateIdle, log: log}

	var assignment core.TemplateAssignment
	switch {
	case req.Template != "":
		assignment = d.override(r, article, req.Template)
	case req.UseAILayout && d.analyzer != nil:
		assignment = d.analyze(ctx, r, article)
	default:
		r.transition(StateDeterministicPath)
		assignment = deterministic(article)
	}

	span.SetAttributes(
		attribute.String("assignment.template", string(assignment.Template)),
		attribute.String("assignment.mode", string(assignment.Mode)),
	)
	metrics.RecordAssignment(string(assignment.Mode), string(assignment.Template))
	d.track(ctx, r, article, assignment)

	log.Info("Template assigned", "template", assignment.Template, "mode", assignment.Mode, "state", r.state)
	return assignment, r
}

func (d *Dispatcher) override(r *run, article core.ArticleContent, name string) core.TemplateAssignment {
	r.transition(StateDeterministicPath, "override", name)

	tmpl, ok := core.ParseTemplateType(name)
	if !ok {
		metrics.InvalidOverridesTotal.Inc()
		r.log.Warn("Ignoring template override", "override", name, "error", ErrInvalidOverride.Error())
		return deterministic(article)
	}

	return core.TemplateAssignment{Template: tmpl, Mode: core.ModeDeterministic}
}

// analyze runs the AI path. Any failure, including a panic in a collaborator,
// moves the run to AnalysisFailed and the deterministic selector.
func (d *Dispatcher) analyze(ctx context.Context, r *run, article core.ArticleContent) (assignment core.TemplateAssignment) {
	r.transition(StateAnalyzingContent)

	defer func() {
		if rec := recover(); rec != nil {
			metrics.RecordAnalysisFailure("panic")
			r.transition(StateAnalysisFailed, "reason", "panic", "error", fmt.Sprint(rec))
			assignment = deterministic(article)
		}
	}()

	result, err := d.analyzer.Analyze(ctx, article.Content, article.Title, article.Category)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		reason := analysis.FailureReason(err)
		metrics.RecordAnalysisFailure(reason)
		r.transition(StateAnalysisFailed, "reason", reason, "error", err.Error())
		return deterministic(article)
	}

	cfg, err := layout.Synthesize(result, article.Category)
	if err != nil {
		metrics.RecordAnalysisFailure("invalid_layout")
		r.transition(StateAnalysisFailed, "reason", "invalid_layout", "error", err.Error())
		return deterministic(article)
	}

	r.transition(StateLayoutReady,
		"content_type", result.ContentType,
		"tone", result.Tone,
		"layout", cfg.LayoutType,
	)
	return core.TemplateAssignment{Template: cfg.LayoutType, Configuration: &cfg, Mode: core.ModeAI}
}

func deterministic(article core.ArticleContent) core.TemplateAssignment {
	return core.TemplateAssignment{
		Template: templates.Select(article.Category, article.ID),
		Mode:     core.ModeDeterministic,
	}
}

func (d *Dispatcher) track(ctx context.Context, r *run, article core.ArticleContent, assignment core.TemplateAssignment) {
	if d.tracker == nil {
		return
	}
	if err := d.tracker.TrackAssignment(ctx, article.ID, article.Category, assignment); err != nil {
		r.log.Debug("Failed to track assignment", "error", err.Error())
	}
}
