package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/worklog/internal/app"
	"github.com/rpggio/worklog/internal/cli"
	"github.com/rpggio/worklog/internal/config"
	"github.com/rpggio/worklog/internal/output"
)

func main() {
	deps := &cli.Dependencies{Open: open}
	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func open(configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.New(cfg, newLogger(cfg.Log), app.Options{})
}

// newLogger writes to stderr so stdout stays clean for command output and
// stdio JSON-RPC.
func newLogger(cfg config.LogConfig) *slog.Logger {
	logWriter := io.Writer(os.Stderr)
	if cfg.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			logWriter = fileWriter
		}
	}
	return slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and keeps only its newest
// keepLogSizeBytes once it grows past maxLogSizeBytes.
type logFileWriter struct {
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	writer := &logFileWriter{file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, err
	}
	return writer, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.truncateIfNeeded()
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	n, err := w.file.ReadAt(buf, size-keepLogSizeBytes)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes always land at the new end of file.
	_, err = w.file.Write(buf)
	return err
}
