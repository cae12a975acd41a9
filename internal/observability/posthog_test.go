package observability

import (
	"context"
	"errors"
	"testing"

	"pressroom/internal/config"
	"pressroom/internal/core"
)

func TestNewPostHogClientDisabled(t *testing.T) {
	client, err := NewPostHogClient(config.PostHog{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.IsEnabled() {
		t.Error("client should be disabled")
	}

	assignment := core.TemplateAssignment{Template: core.TemplateClassic, Mode: core.ModeDeterministic}
	if err := client.TrackAssignment(context.Background(), "post-1", "Business", assignment); err != nil {
		t.Errorf("disabled client should ignore events, got %v", err)
	}
	if err := client.Shutdown(context.Background()); err != nil {
		t.Errorf("disabled client shutdown failed: %v", err)
	}
}

func TestNewPostHogClientMissingKey(t *testing.T) {
	_, err := NewPostHogClient(config.PostHog{Enabled: true})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *PostHogClient
	if client.IsEnabled() {
		t.Error("nil client should report disabled")
	}
	if err := client.Capture(context.Background(), "id", "event", nil); err != nil {
		t.Errorf("nil client capture should be a no-op, got %v", err)
	}
}

func TestAssignmentProperties(t *testing.T) {
	deterministic := assignmentProperties("post-1", "Travel", core.TemplateAssignment{
		Template: core.TemplateMagazine,
		Mode:     core.ModeDeterministic,
	})
	if deterministic["template"] != "magazine" || deterministic["mode"] != "deterministic" {
		t.Errorf("unexpected properties: %v", deterministic)
	}
	if _, ok := deterministic["show_toc"]; ok {
		t.Error("deterministic assignments carry no layout properties")
	}

	ai := assignmentProperties("post-2", "Science", core.TemplateAssignment{
		Template: core.TemplateModern,
		Mode:     core.ModeAI,
		Configuration: &core.LayoutConfiguration{
			LayoutType:  core.TemplateModern,
			ShowTOC:     true,
			Typography:  core.TypographyMono,
			ColorScheme: core.ColorCool,
		},
	})
	if ai["show_toc"] != true || ai["typography"] != "mono" {
		t.Errorf("unexpected layout properties: %v", ai)
	}
}
