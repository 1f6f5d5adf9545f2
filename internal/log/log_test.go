package log

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelError},
		{"verbose", slog.LevelError},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.expected {
			t.Errorf("%q: expected %s, got %s", c.in, c.expected, got)
		}
	}
}

func TestWriterReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "arevel.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("before rotation", slog.Int("cell", 1))

	rotated := filepath.Join(dir, "logs", "arevel.bak")
	if err := os.Rename(path, rotated); err != nil {
		t.Fatal(err)
	}
	if err := w.Reopen(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	logger.Debug("after rotation")

	old, err := os.ReadFile(rotated)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(old, &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q", old)
	}
	if entry["msg"] != "before rotation" || entry["cell"] != float64(1) {
		t.Errorf("unexpected entry %v", entry)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(current), "after rotation") || strings.Contains(string(current), "before rotation") {
		t.Errorf("unexpected log file contents %q", current)
	}
}
