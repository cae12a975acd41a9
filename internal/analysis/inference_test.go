package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"google.golang.org/genai"

	"pressroom/internal/core"
	"pressroom/internal/llm"
)

type mockGenerator struct {
	GenerateTextFunc func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	return m.GenerateTextFunc(ctx, prompt, options)
}

func TestAnalysisSchemaEnums(t *testing.T) {
	schema := AnalysisSchema()
	if schema.Type != genai.TypeObject {
		t.Fatalf("expected object schema, got %v", schema.Type)
	}

	contentType := schema.Properties["content_type"]
	if contentType == nil || len(contentType.Enum) != len(core.ContentTypes()) {
		t.Fatalf("content_type enum should list every content type")
	}
	tone := schema.Properties["tone"]
	if tone == nil || len(tone.Enum) != len(core.Tones()) {
		t.Fatalf("tone enum should list every tone")
	}
	if len(schema.Required) != 3 {
		t.Errorf("expected 3 required fields, got %d", len(schema.Required))
	}
}

func TestLLMInferenceAnalyze(t *testing.T) {
	var gotPrompt string
	var gotOptions llm.TextGenerationOptions
	generator := &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
			gotPrompt, gotOptions = prompt, options
			return `{"content_type": "howto", "tone": "technical", "complexity": 0.62}`, nil
		},
	}

	got, err := NewLLMInference(generator).Analyze(context.Background(), "Install the CLI first.", "Getting started", "Technology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := core.ContentAnalysis{ContentType: core.ContentHowTo, Tone: core.ToneTechnical, Complexity: 0.62}
	if got != want {
		t.Errorf("Analyze() = %+v, want %+v", got, want)
	}
	if !strings.Contains(gotPrompt, "Title: Getting started") || !strings.Contains(gotPrompt, "Category: Technology") {
		t.Error("prompt should carry the title and category")
	}
	if gotOptions.ResponseSchema == nil {
		t.Error("expected structured output schema")
	}
	if gotOptions.MaxTokens != 256 || gotOptions.Temperature != 0.2 {
		t.Errorf("unexpected default generation options %+v", gotOptions)
	}
}

func TestLLMInferenceOptions(t *testing.T) {
	var gotOptions llm.TextGenerationOptions
	generator := &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
			gotOptions = options
			return `{"content_type":"list","tone":"formal","complexity":0.5}`, nil
		},
	}

	inference := NewLLMInference(generator, WithMaxTokens(512), WithTemperature(0.7), WithMaxTokens(0))
	if _, err := inference.Analyze(context.Background(), "text", "title", "Food"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOptions.MaxTokens != 512 || gotOptions.Temperature != 0.7 {
		t.Errorf("expected configured options, got %+v", gotOptions)
	}
}

func TestLLMInferencePropagatesErrors(t *testing.T) {
	quota := errors.New("quota exceeded")
	generator := &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
			return "", quota
		},
	}

	_, err := NewLLMInference(generator).Analyze(context.Background(), "text", "title", "Business")
	if !errors.Is(err, quota) {
		t.Errorf("expected wrapped generator error, got %v", err)
	}
}

func TestLLMInferenceTruncatesLongContent(t *testing.T) {
	var gotPrompt string
	generator := &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
			gotPrompt = prompt
			return `{"content_type":"informational","tone":"formal","complexity":0.5}`, nil
		},
	}

	long := strings.Repeat("x", maxPromptChars*2)
	if _, err := NewLLMInference(generator).Analyze(context.Background(), long, "t", "Science"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gotPrompt, long) {
		t.Error("expected content to be truncated")
	}
}

func TestBuildPromptTruncatesOnRuneBoundary(t *testing.T) {
	for _, text := range []string{
		strings.Repeat("日本", maxPromptChars),
		"x" + strings.Repeat("é", maxPromptChars),
		strings.Repeat("😀", maxPromptChars),
	} {
		prompt := buildPrompt(text, "title", "Travel")
		if !utf8.ValidString(prompt) {
			t.Fatalf("prompt for %q... is not valid UTF-8", text[:8])
		}
		if !strings.Contains(prompt, "...") {
			t.Error("expected truncation marker")
		}
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     core.ContentAnalysis
		wantErr  bool
	}{
		{
			name:     "plain json",
			response: `{"content_type":"narrative","tone":"dramatic","complexity":0.4}`,
			want:     core.ContentAnalysis{ContentType: core.ContentNarrative, Tone: core.ToneDramatic, Complexity: 0.4},
		},
		{
			name:     "fenced json",
			response: "```json\n{\"content_type\":\"list\",\"tone\":\"conversational\",\"complexity\":0.1}\n```",
			want:     core.ContentAnalysis{ContentType: core.ContentList, Tone: core.ToneConversational, Complexity: 0.1},
		},
		{
			name:     "mixed case values",
			response: `{"content_type":"Opinion","tone":" FORMAL ","complexity":0.8}`,
			want:     core.ContentAnalysis{ContentType: core.ContentOpinion, Tone: core.ToneFormal, Complexity: 0.8},
		},
		{
			name:     "complexity clamped",
			response: `{"content_type":"informational","tone":"technical","complexity":-3}`,
			want:     core.ContentAnalysis{ContentType: core.ContentInformational, Tone: core.ToneTechnical, Complexity: 0},
		},
		{name: "unknown content type", response: `{"content_type":"poem","tone":"formal","complexity":0.5}`, wantErr: true},
		{name: "unknown tone", response: `{"content_type":"list","tone":"sarcastic","complexity":0.5}`, wantErr: true},
		{name: "not json", response: "I think it is a list", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.response)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInference) {
					t.Fatalf("expected ErrInvalidInference, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseResponse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAnalyzerWithLLMInference(t *testing.T) {
	generator := &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
			return `{"content_type":"opinion","tone":"formal","complexity":0.7}`, nil
		},
	}

	analyzer := newTestAnalyzer(NewLLMInference(generator), 0)
	got, err := analyzer.Analyze(context.Background(), strings.Repeat("word ", 201), "Op-ed", "Opinion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ContentType != core.ContentOpinion || got.ReadingTimeMinutes != 2 {
		t.Errorf("unexpected analysis: %+v", got)
	}
}
