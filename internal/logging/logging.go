package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the log file. Empty means no file logging.
	FilePath string
	// MaxSizeMB is the size in MB at which the file is rotated.
	MaxSizeMB int
	// MaxFiles is the number of rotated files kept.
	MaxFiles int
	// Console, if set, also receives every record.
	Console io.Writer
}

// DebugConfig returns the --debug configuration.
func DebugConfig() Config {
	return Config{
		Level:     "debug",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: 10,
		MaxFiles:  5,
		Console:   os.Stderr,
	}
}

// Setup builds a JSON logger writing to the rotating file and the console.
// The returned cleanup closes the file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if cfg.FilePath == "" {
		out := cfg.Console
		if out == nil {
			out = io.Discard
		}
		return NewConsoleLogger(out, cfg.Level), func() {}, nil
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.Console != nil {
		output = io.MultiWriter(writer, cfg.Console)
	}
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return slog.New(handler), cleanup, nil
}

// NewConsoleLogger returns a text logger for interactive runs.
func NewConsoleLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel converts a level name to slog.Level. Unknown names are info.
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
