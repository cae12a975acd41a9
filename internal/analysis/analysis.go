// Package analysis classifies article text into the signals used to pick a layout:
// content type, tone, complexity and reading time.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"pressroom/internal/core"
	"pressroom/internal/logger"
	"pressroom/internal/metrics"
)

// DefaultWordsPerMinute is the reading speed used for reading time estimates.
const DefaultWordsPerMinute = 200

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 5 * time.Second

var (
	// ErrAnalysisUnavailable reports that the inference collaborator failed and
	// the returned analysis is the default one.
	ErrAnalysisUnavailable = errors.New("content analysis unavailable")

	// ErrInvalidInference is returned by inference implementations whose answer
	// falls outside the closed enums.
	ErrInvalidInference = errors.New("inference returned an invalid analysis")
)

// Inference is the optional remote classifier. Implementations may be slow,
// fail, or ignore the context; the Analyzer guards every call.
type Inference interface {
	Analyze(ctx context.Context, text, title, category string) (core.ContentAnalysis, error)
}

// InferenceFunc adapts a function to the Inference interface.
type InferenceFunc func(ctx context.Context, text, title, category string) (core.ContentAnalysis, error)

// Analyze calls f.
func (f InferenceFunc) Analyze(ctx context.Context, text, title, category string) (core.ContentAnalysis, error) {
	return f(ctx, text, title, category)
}

// Options configures an Analyzer.
type Options struct {
	Timeout        time.Duration // Bound for each inference call; DefaultTimeout when zero
	WordsPerMinute int           // DefaultWordsPerMinute when zero
	Logger         *slog.Logger
}

// Analyzer produces a ContentAnalysis for an article. It holds no per-request
// state and is safe for concurrent use.
type Analyzer struct {
	inference   Inference
	timeout     time.Duration
	wordsPerMin int
	log         *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil inference selects the local heuristic classifier.
func NewAnalyzer(inference Inference, opts Options) *Analyzer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = DefaultWordsPerMinute
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}

	return &Analyzer{
		inference:   inference,
		timeout:     opts.Timeout,
		wordsPerMin: opts.WordsPerMinute,
		log:         opts.Logger,
	}
}

// UsesInference reports whether a remote collaborator is configured.
func (a *Analyzer) UsesInference() bool {
	return a.inference != nil
}

// Analyze classifies an article.
//
// The returned analysis is always valid. When the inference collaborator errors,
// times out, is canceled or answers outside the enums, the default analysis is
// returned together with an error wrapping ErrAnalysisUnavailable. Without a
// collaborator, empty content yields the default analysis and no error. With
// one, empty content is still sent to it so its failures are never masked.
func (a *Analyzer) Analyze(ctx context.Context, content, title, category string) (core.ContentAnalysis, error) {
	doc := parseContent(content)
	fallback := DefaultAnalysis(doc.wordCount(), a.wordsPerMin)

	if a.inference == nil && strings.TrimSpace(doc.text) == "" {
		a.log.Debug("Empty content, using default analysis", "category", category)
		return fallback, nil
	}

	start := time.Now()

	if a.inference == nil {
		result := classify(doc, title, category)
		result.ReadingTimeMinutes = ReadingTime(doc.wordCount(), a.wordsPerMin)
		metrics.ObserveAnalysis("heuristic", time.Since(start).Seconds())
		a.log.Debug("Heuristic analysis complete",
			"content_type", result.ContentType,
			"tone", result.Tone,
			"complexity", result.Complexity,
			"reading_time", result.ReadingTimeMinutes,
		)
		return result, nil
	}

	result, err := a.infer(ctx, doc.text, title, category)
	metrics.ObserveAnalysis("inference", time.Since(start).Seconds())
	if err != nil {
		a.log.Warn("Inference failed, using default analysis",
			"category", category,
			"reason", FailureReason(err),
			"error", err.Error(),
		)
		return fallback, fmt.Errorf("%w: %w", ErrAnalysisUnavailable, err)
	}

	result.ReadingTimeMinutes = ReadingTime(doc.wordCount(), a.wordsPerMin)
	a.log.Debug("Inference analysis complete",
		"content_type", result.ContentType,
		"tone", result.Tone,
		"complexity", result.Complexity,
	)
	return result, nil
}

type inferenceOutcome struct {
	analysis core.ContentAnalysis
	err      error
}

// infer runs the collaborator in its own goroutine so a call that ignores its
// context is abandoned once the timeout or the caller's context fires.
func (a *Analyzer) infer(ctx context.Context, text, title, category string) (core.ContentAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return core.ContentAnalysis{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan inferenceOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- inferenceOutcome{err: fmt.Errorf("inference panicked: %v", r)}
			}
		}()
		result, err := a.inference.Analyze(ctx, text, title, category)
		done <- inferenceOutcome{analysis: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return core.ContentAnalysis{}, out.err
		}
		return normalize(out.analysis)
	case <-ctx.Done():
		return core.ContentAnalysis{}, ctx.Err()
	}
}

// normalize validates the enums of a collaborator's answer and clamps complexity.
func normalize(result core.ContentAnalysis) (core.ContentAnalysis, error) {
	if !result.ContentType.Valid() || !result.Tone.Valid() {
		return core.ContentAnalysis{}, fmt.Errorf("%w: type=%q tone=%q", ErrInvalidInference, result.ContentType, result.Tone)
	}
	if math.IsNaN(result.Complexity) {
		return core.ContentAnalysis{}, fmt.Errorf("%w: complexity is NaN", ErrInvalidInference)
	}
	result.Complexity = clamp01(result.Complexity)
	return result, nil
}

// DefaultAnalysis is the analysis used for empty content and failed inference.
func DefaultAnalysis(wordCount, wordsPerMinute int) core.ContentAnalysis {
	return core.ContentAnalysis{
		ContentType:        core.ContentInformational,
		Tone:               core.ToneConversational,
		Complexity:         0.5,
		ReadingTimeMinutes: ReadingTime(wordCount, wordsPerMinute),
	}
}

// ReadingTime returns ceil(wordCount / wordsPerMinute) with a floor of one minute.
func ReadingTime(wordCount, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	minutes := (wordCount + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// WordCount counts whitespace-separated words in the visible text of content.
func WordCount(content string) int {
	return parseContent(content).wordCount()
}

// FailureReason maps an analysis error to a short label for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInvalidInference):
		return "invalid_response"
	default:
		return "error"
	}
}
