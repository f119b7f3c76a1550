// Package logging holds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// L is the global logger instance. It discards all output until Init is
// called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Writer io.Writer  // Destination. Nil discards all output.
	Level  slog.Level // Minimum log level.
	JSON   bool       // Emit JSON lines instead of key=value text.
}

// Init replaces L. Call from main() before any log calls.
func Init(opts Options) {
	if opts.Writer == nil {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(opts.Writer, handlerOpts))
		return
	}

	L = slog.New(slog.NewTextHandler(opts.Writer, handlerOpts))
}

// ParseLevel converts debug, info, warn or error (any case) into a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
