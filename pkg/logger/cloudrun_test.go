package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo))

	log.Warn("snapshot write failed", "key", "cache_logs", "error", errors.New("disk full"))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if event["severity"] != "WARNING" {
		t.Fatalf("severity mismatch: %v", event["severity"])
	}
	if event["message"] != "snapshot write failed" {
		t.Fatalf("message mismatch: %v", event["message"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", event["data"])
	}
	if data["error"] != "disk full" {
		t.Fatalf("error attr mismatch: %v", data["error"])
	}
}

func TestCloudRunHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
}

func TestWithAttrsCarriesStaticAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelDebug)).With("request_id", "r1")

	log.Info("hello")

	var event struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Data["request_id"] != "r1" {
		t.Fatalf("missing static attr: %+v", event.Data)
	}
}

func TestContextRoundTrip(t *testing.T) {
	log := slog.New(NewTestHandler(slog.LevelInfo))
	ctx := ToContext(context.Background(), log)

	if FromContext(ctx) != log {
		t.Fatal("expected logger from context")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger fallback")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
