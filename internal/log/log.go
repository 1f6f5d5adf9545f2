package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// Writer is the destination of the structured log. When it writes to a file
// it reopens the file on SIGHUP so the log can be rotated:
//
//	mv arevel.log arevel.bak && kill -HUP <pid>
type Writer struct {
	mu         sync.Mutex
	path       string
	fileHandle *os.File
	out        io.Writer
	sigs       chan os.Signal
}

// Open writes to path, creating parent directories, or to stderr when path
// is empty.
func Open(path string) (*Writer, error) {
	w := &Writer{path: path, out: os.Stderr}
	if path == "" {
		return w, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	if err := w.reopenLogFile(); err != nil {
		return nil, err
	}
	w.setupLogRotation()
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

func (w *Writer) reopenLogFile() error {
	fh, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", w.path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fileHandle != nil {
		_ = w.fileHandle.Close()
	}
	w.fileHandle = fh
	w.out = fh
	return nil
}

// Reopen closes and reopens the log file. It is a no-op for stderr.
func (w *Writer) Reopen() error {
	if w.path == "" {
		return nil
	}
	return w.reopenLogFile()
}

func (w *Writer) setupLogRotation() {
	w.sigs = make(chan os.Signal, 1)
	signal.Notify(w.sigs, syscall.SIGHUP)
	go func() {
		for range w.sigs {
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}

func (w *Writer) Close() error {
	if w.sigs != nil {
		signal.Stop(w.sigs)
		close(w.sigs)
		w.sigs = nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fileHandle == nil {
		return nil
	}
	err := w.fileHandle.Close()
	w.fileHandle = nil
	w.out = io.Discard
	return err
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Setup installs a JSON slog handler writing to path as the default logger.
// The returned Writer must be closed by the caller.
func Setup(level, path string) (*Writer, error) {
	w, err := Open(path)
	if err != nil {
		return nil, err
	}
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, loggerOptions)))
	return w, nil
}
