package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewWritesToFileAndStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netdash.log")
	var stderr bytes.Buffer

	logger, err := New(Options{File: path, Level: "warn", Stderr: &stderr})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("refresh ok")
	logger.Warn("refresh failed", "endpoint", "status")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for name, out := range map[string]string{"file": string(data), "stderr": stderr.String()} {
		if strings.Contains(out, "refresh ok") {
			t.Errorf("%s: info line should be filtered at warn level", name)
		}
		if !strings.Contains(out, "refresh failed") || !strings.Contains(out, "endpoint=status") {
			t.Errorf("%s: missing warn line, got %q", name, out)
		}
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("dropped")
	if err := logger.Close(); err != nil {
		t.Errorf("Close without a file should be a no-op, got %v", err)
	}
}
