// Package logging builds the process-wide zerolog.Logger.
//
// One-shot commands log human-readable lines to stderr. The watcher hands
// the terminal to the UI, so it logs JSON lines to a file instead, which the
// UI footer tails through internal/logtail.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/internal/oops"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
}

// ParseLevel maps a config value to a zerolog level. An empty value means
// info.
func ParseLevel(level string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(trimmed)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return lvl, nil
}

// Console returns a logger writing colored lines to w.
func Console(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// File returns a logger appending JSON lines to path, creating the parent
// directory when needed. The returned closer releases the file.
func File(path string, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(file).Level(level).With().Timestamp().Logger()
	return logger, file, nil
}
