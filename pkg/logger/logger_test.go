package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Format: "json", Output: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	_ = SetLevelString("info")

	Named("calendar").Info(context.Background(), "grid built", Int("days", 42), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "grid built" {
		t.Errorf("unexpected msg: %v", rec["msg"])
	}
	if rec["logger"] != "calendar" {
		t.Errorf("expected logger name, got %v", rec["logger"])
	}
	if rec["days"] != float64(42) {
		t.Errorf("expected days=42, got %v", rec["days"])
	}
	if rec["error"] != "boom" {
		t.Errorf("expected error text, got %v", rec["error"])
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected caller source, got %v", rec["source"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Output: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	Get().Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestLoggerUnknownSettings(t *testing.T) {
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWith(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(Options{Output: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	Get().With(String("owner", "me")).Info(context.Background(), "hello")
	if !strings.Contains(buf.String(), "owner=me") {
		t.Errorf("expected attached field, got %q", buf.String())
	}

	// Nop must never write anywhere.
	Nop().Error(context.Background(), "dropped")
}
