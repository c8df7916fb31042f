package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	Level  string
	Format string // "text" or "json"
	File   string // empty logs to stdout only
}

// New builds the process logger. When a log file is configured, records go
// to stdout and to a size-rotated file; the returned closer releases it.
func New(params Params) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if params.File != "" {
		file := params.File
		if !strings.HasSuffix(file, ".log") {
			file += ".log"
		}
		rotated := &lumberjack.Logger{
			Filename: file,
			MaxSize:  50, // megabytes
			Compress: true,
		}
		out = io.MultiWriter(os.Stdout, rotated)
		closer = rotated
	}

	return slog.New(NewHandler(out, params)), closer
}

// NewHandler returns a text or JSON handler writing to w.
func NewHandler(w io.Writer, params Params) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(params.Level)}
	if strings.EqualFold(params.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
