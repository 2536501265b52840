package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reverie/internal/config"
	"reverie/internal/logging"
	"reverie/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "reverie.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "scenes")
	logger.Info("scene added", logging.Int(logging.FieldSceneCount, 2), logging.String("url", "http://x/a b.mp4"))
	logger.Debug("hidden debug line")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "INFO  scenes: scene added") {
		t.Fatalf("expected component prefix, got %q", text)
	}
	if !strings.Contains(text, "scene_count=2") {
		t.Fatalf("expected scene_count field, got %q", text)
	}
	if !strings.Contains(text, `url="http://x/a b.mp4"`) {
		t.Fatalf("expected quoted url, got %q", text)
	}
	if strings.Contains(text, "hidden debug line") {
		t.Fatalf("expected debug line to be filtered, got %q", text)
	}
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
}

func TestJSONLoggerEmitsStructuredRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("store write failed", logging.Error(errors.New("disk full")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("decode json record: %v (%q)", err, content)
	}
	if record["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", record["level"])
	}
	if record["msg"] != "store write failed" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["error"] != "disk full" {
		t.Fatalf("unexpected error field: %v", record["error"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestMediaURLQueryIsRedacted(t *testing.T) {
	dir := t.TempDir()
	signed := "https://cdn.example/out/story.mp4?X-Amz-Signature=secret"
	for _, format := range []string{"console", "json"} {
		logPath := filepath.Join(dir, format+".log")
		logger, err := logging.New(logging.Options{Format: format, Level: "info", OutputPaths: []string{logPath}})
		if err != nil {
			t.Fatalf("New(%s) returned error: %v", format, err)
		}
		logger.Info("compile succeeded",
			logging.MediaURL(logging.FieldVideoURL, signed),
			logging.MediaURL(logging.FieldSceneURL, "/static/a.mp4"),
		)

		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read %s log: %v", format, err)
		}
		text := string(content)
		if strings.Contains(text, "secret") {
			t.Fatalf("%s: expected signature stripped, got %q", format, text)
		}
		if !strings.Contains(text, "https://cdn.example/out/story.mp4?redacted") {
			t.Fatalf("%s: expected redacted url, got %q", format, text)
		}
		if !strings.Contains(text, "/static/a.mp4") {
			t.Fatalf("%s: expected relative url untouched, got %q", format, text)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithSessionID(context.Background(), "sess-9")
	ctx = services.WithOperation(ctx, "compile")
	ctx = services.WithRequestID(ctx, "req-9")
	logging.WithContext(ctx, logger).Info("tagged")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{"session_id=sess-9", "operation=compile", "correlation_id=req-9"} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.WithContext(context.Background(), nil).Info("ignored")
}
