package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"pressroom/internal/core"
	"pressroom/internal/llm"
)

// maxPromptChars caps how many bytes of article text are sent to the model.
const maxPromptChars = 4000

// LLMInference classifies content with a Gemini model using structured output.
type LLMInference struct {
	client      llm.Generator
	maxTokens   int32
	temperature float32
}

// InferenceOption customizes an LLMInference.
type InferenceOption func(*LLMInference)

// WithMaxTokens caps the model's answer length.
func WithMaxTokens(n int32) InferenceOption {
	return func(l *LLMInference) {
		if n > 0 {
			l.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) InferenceOption {
	return func(l *LLMInference) {
		if t > 0 {
			l.temperature = t
		}
	}
}

// NewLLMInference creates an inference collaborator backed by client.
func NewLLMInference(client llm.Generator, opts ...InferenceOption) *LLMInference {
	l := &LLMInference{client: client, maxTokens: 256, temperature: 0.2}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AnalysisSchema is the Gemini response schema. The enums match the closed
// content type and tone sets.
func AnalysisSchema() *genai.Schema {
	contentTypes := make([]string, 0, len(core.ContentTypes()))
	for _, ct := range core.ContentTypes() {
		contentTypes = append(contentTypes, string(ct))
	}
	tones := make([]string, 0, len(core.Tones()))
	for _, tone := range core.Tones() {
		tones = append(tones, string(tone))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content_type": {
				Type:        genai.TypeString,
				Description: "The article's dominant form",
				Enum:        contentTypes,
			},
			"tone": {
				Type:        genai.TypeString,
				Description: "The article's voice",
				Enum:        tones,
			},
			"complexity": {
				Type:        genai.TypeNumber,
				Description: "Reading difficulty from 0.0 (very simple) to 1.0 (very dense)",
			},
		},
		Required: []string{"content_type", "tone", "complexity"},
	}
}

// Analyze asks the model for content type, tone and complexity. Reading time is
// left at zero; the Analyzer computes it locally.
func (l *LLMInference) Analyze(ctx context.Context, text, title, category string) (core.ContentAnalysis, error) {
	response, err := l.client.GenerateText(ctx, buildPrompt(text, title, category), llm.TextGenerationOptions{
		Temperature:    l.temperature,
		MaxTokens:      l.maxTokens,
		ResponseSchema: AnalysisSchema(),
	})
	if err != nil {
		return core.ContentAnalysis{}, fmt.Errorf("failed to analyze content: %w", err)
	}

	return parseResponse(response)
}

func buildPrompt(text, title, category string) string {
	var sb strings.Builder

	sb.WriteString("You are an editor choosing how a news article should be laid out.\n")
	sb.WriteString("Classify the article below.\n\n")

	sb.WriteString("ARTICLE:\n")
	sb.WriteString("Title: ")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString("Category: ")
	sb.WriteString(category)
	sb.WriteString("\n\n")

	if len(text) > maxPromptChars {
		cut := maxPromptChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	sb.WriteString("Content: ")
	sb.WriteString(text)
	sb.WriteString("\n\n")

	sb.WriteString("CONTENT TYPES:\n")
	sb.WriteString("- narrative: a story told through events and people\n")
	sb.WriteString("- informational: reporting or explaining facts\n")
	sb.WriteString("- howto: instructions the reader follows step by step\n")
	sb.WriteString("- opinion: an argued point of view\n")
	sb.WriteString("- list: a listicle or ranked collection of items\n\n")

	sb.WriteString("TONES: formal, conversational, technical, dramatic\n\n")

	sb.WriteString("OUTPUT FORMAT:\n")
	sb.WriteString("Provide your response as structured JSON following the schema.\n")

	return sb.String()
}

// parseResponse decodes the model's JSON answer. Values outside the enums
// produce ErrInvalidInference.
func parseResponse(response string) (core.ContentAnalysis, error) {
	clean := strings.TrimSpace(response)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(clean, "```")
		clean = strings.TrimSpace(clean)
	}

	var parsed struct {
		ContentType string  `json:"content_type"`
		Tone        string  `json:"tone"`
		Complexity  float64 `json:"complexity"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return core.ContentAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidInference, err)
	}

	contentType, ok := core.ParseContentType(strings.ToLower(strings.TrimSpace(parsed.ContentType)))
	if !ok {
		return core.ContentAnalysis{}, fmt.Errorf("%w: unknown content type %q", ErrInvalidInference, parsed.ContentType)
	}
	tone, ok := core.ParseTone(strings.ToLower(strings.TrimSpace(parsed.Tone)))
	if !ok {
		return core.ContentAnalysis{}, fmt.Errorf("%w: unknown tone %q", ErrInvalidInference, parsed.Tone)
	}

	return core.ContentAnalysis{
		ContentType: contentType,
		Tone:        tone,
		Complexity:  clamp01(parsed.Complexity),
	}, nil
}
