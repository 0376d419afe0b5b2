package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsAreForwarded(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("request.complete", map[string]any{
		"status": 201,
		"path":   "/analyze",
		"err":    errors.New("boom"),
	})
	Error("http.error", nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["status"] != int64(201) {
		t.Fatalf("expected status 201, got %v (%T)", ctx["status"], ctx["status"])
	}
	if ctx["path"] != "/analyze" {
		t.Fatalf("expected path, got %v", ctx["path"])
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected err boom, got %v", ctx["err"])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
}

func TestSetLoggerNilUsesNop(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	if L() == nil {
		t.Fatalf("expected non-nil logger")
	}
	Info("discarded", map[string]any{"k": "v"})
}
