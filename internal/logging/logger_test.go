package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atelier/internal/logging"
)

func TestConsoleFormatIncludesComponentAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	base, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}

	logger := logging.NewComponentLogger(base, "workspace")
	logger.Info("session hydrated",
		logging.String(logging.FieldSessionID, "abc-123"),
		logging.Int("message_count", 4))
	logger.Warn("flaky thing", logging.Error(errors.New("boom")))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	output := string(data)

	if !strings.Contains(output, "INFO workspace: session hydrated") {
		t.Fatalf("missing console line, got: %s", output)
	}
	if !strings.Contains(output, "session_id=abc-123") || !strings.Contains(output, "message_count=4") {
		t.Fatalf("missing fields, got: %s", output)
	}
	if !strings.Contains(output, "WARN workspace: flaky thing error=boom") {
		t.Fatalf("missing warn line, got: %s", output)
	}
}

func TestJSONFormatEmitsLowercaseLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}
	logger.Info("structured", logging.String("key", "value"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("parse JSON log line: %v (%s)", err, data)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if entry["key"] != "value" {
		t.Fatalf("expected attr in line, got %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field, got %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	output := string(data)
	if strings.Contains(output, "should be dropped") {
		t.Fatalf("info line should be filtered: %s", output)
	}
	if !strings.Contains(output, "should be kept") {
		t.Fatalf("warn line missing: %s", output)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := logging.NewNop()
	// Must not panic and must not write anywhere.
	logger.Info("ignored", logging.String("key", "value"))
	logger.Error("ignored too")
}
