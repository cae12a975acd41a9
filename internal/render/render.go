// Package render holds the renderer registry that receives finished template
// assignments, plus the default HTML renderers.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pressroom/internal/core"
)

var (
	// ErrUnknownTemplate is returned when no renderer exists for a template.
	ErrUnknownTemplate = errors.New("unknown template")
)

// Renderer turns an article into output for one template. cfg is nil when the
// assignment did not come from content analysis.
type Renderer interface {
	Render(article core.ArticleContent, cfg *core.LayoutConfiguration) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(article core.ArticleContent, cfg *core.LayoutConfiguration) (string, error)

// Render calls f.
func (f RendererFunc) Render(article core.ArticleContent, cfg *core.LayoutConfiguration) (string, error) {
	return f(article, cfg)
}

// Registry has one renderer per template in the closed set.
type Registry struct {
	Classic  Renderer
	Modern   Renderer
	Magazine Renderer
	Minimal  Renderer
}

// For returns the renderer registered for t.
func (r Registry) For(t core.TemplateType) (Renderer, error) {
	var renderer Renderer
	switch t {
	case core.TemplateClassic:
		renderer = r.Classic
	case core.TemplateModern:
		renderer = r.Modern
	case core.TemplateMagazine:
		renderer = r.Magazine
	case core.TemplateMinimal:
		renderer = r.Minimal
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, t)
	}

	if renderer == nil {
		return nil, fmt.Errorf("%w: no renderer registered for %q", ErrUnknownTemplate, t)
	}
	return renderer, nil
}

// DefaultRegistry returns the built-in HTML renderers.
func DefaultRegistry() Registry {
	return Registry{
		Classic:  NewHTMLRenderer(core.TemplateClassic),
		Modern:   NewHTMLRenderer(core.TemplateModern),
		Magazine: NewHTMLRenderer(core.TemplateMagazine),
		Minimal:  NewHTMLRenderer(core.TemplateMinimal),
	}
}

// WriteToFile writes rendered content to a file in the specified directory
func WriteToFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "output"
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	err = os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		return "", fmt.Errorf("failed to write rendered file %s: %w", filePath, err)
	}

	return filePath, nil
}
