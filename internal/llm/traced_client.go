package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pressroom/internal/tracer"
)

// Generator is the subset of Client used by callers that only need text generation.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error)
}

// TracedClient wraps a Generator with an OpenTelemetry span per call.
type TracedClient struct {
	client Generator
	model  string
}

// NewTracedClient creates a traced wrapper. model is only used as a span attribute.
func NewTracedClient(client Generator, model string) *TracedClient {
	return &TracedClient{client: client, model: model}
}

// GenerateText generates text inside an "llm.generate" span.
func (tc *TracedClient) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	model := options.Model
	if model == "" {
		model = tc.model
	}

	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.prompt_chars", len(prompt)),
		attribute.Bool("llm.structured", options.ResponseSchema != nil),
	)

	start := time.Now()
	result, err := tc.client.GenerateText(ctx, prompt, options)
	span.SetAttributes(attribute.Int64("llm.latency_ms", time.Since(start).Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.completion_chars", len(result)))
	return result, nil
}
