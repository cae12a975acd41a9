// Package observability provides the product analytics integration.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"pressroom/internal/config"
	"pressroom/internal/core"
	"pressroom/internal/logger"
)

// ErrMissingAPIKey is returned when PostHog is enabled without an API key.
var ErrMissingAPIKey = errors.New("PostHog enabled but missing API key")

// systemDistinctID is the PostHog distinct id for server-side events.
const systemDistinctID = "pressroom"

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	log     *slog.Logger
}

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// NewPostHogClient creates a new PostHog analytics client. A disabled
// configuration yields a client whose methods do nothing.
func NewPostHogClient(cfg config.PostHog) (*PostHogClient, error) {
	if !cfg.Enabled {
		return &PostHogClient{
			enabled: false,
			log:     logger.Get(),
		}, nil
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{
		client:  client,
		enabled: true,
		log:     logger.Get(),
	}, nil
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	return p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	})
}

// TrackAssignment records a template_assigned event.
func (p *PostHogClient) TrackAssignment(ctx context.Context, articleID, category string, assignment core.TemplateAssignment) error {
	return p.Capture(ctx, systemDistinctID, "template_assigned", assignmentProperties(articleID, category, assignment))
}

// TrackRender records an article_rendered event from the HTTP surface.
func (p *PostHogClient) TrackRender(ctx context.Context, articleID string, template core.TemplateType, durationMs int64) error {
	return p.Capture(ctx, systemDistinctID, "article_rendered", EventProperties{
		"article_id":  articleID,
		"template":    string(template),
		"duration_ms": durationMs,
	})
}

func assignmentProperties(articleID, category string, assignment core.TemplateAssignment) EventProperties {
	props := EventProperties{
		"article_id": articleID,
		"category":   category,
		"template":   string(assignment.Template),
		"mode":       string(assignment.Mode),
	}
	if cfg := assignment.Configuration; cfg != nil {
		props["show_toc"] = cfg.ShowTOC
		props["show_sidebar"] = cfg.ShowSidebar
		props["typography"] = string(cfg.Typography)
		props["color_scheme"] = string(cfg.ColorScheme)
	}
	return props
}

// Shutdown flushes pending events and closes the client.
func (p *PostHogClient) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}

	p.log.Debug("Flushing PostHog events")
	return p.client.Close()
}
