package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, expected := range testCases {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestConfigureJSONAndContextValues(t *testing.T) {
	var buf bytes.Buffer
	Configure("debug", "json", &buf)

	ctx := WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithValue(ctx, DispatchIDKey, "disp-9")
	FromContext(ctx).Info("assigned", "template", "modern")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a JSON record, got %q: %v", buf.String(), err)
	}
	if record["request_id"] != "req-1" || record["dispatch_id"] != "disp-9" {
		t.Errorf("correlation ids missing from record: %v", record)
	}
	if record["template"] != "modern" {
		t.Errorf("expected template attribute, got %v", record)
	}
}

func TestConfigureTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure("warn", "text", &buf)

	Info("hidden")
	Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=v") {
		t.Errorf("expected warn record in text format, got %q", out)
	}
}

func TestErrorAddsErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	Configure("info", "text", &buf)

	Error("failed", errTest("boom"))

	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute, got %q", buf.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
