// Package logging builds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to w with timestamp and pid fields.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimestampFieldName = "timestamp"
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}

// Console is used by the headless commands; output goes to stderr so stdout
// stays clean for the command's own output.
func Console(level string) (zerolog.Logger, error) {
	cw := zerolog.NewConsoleWriter()
	cw.TimeFormat = time.DateTime
	cw.Out = os.Stderr
	return New(cw, level)
}

// File opens path for appending. The terminal UI owns stdout, so interactive
// runs log here. The returned closer releases the file.
func File(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(f, level)
	if err != nil {
		_ = f.Close()
		return zerolog.Nop(), nil, err
	}
	return logger, f, nil
}
