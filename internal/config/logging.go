package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// LogOptions configures SetupLogger.
type LogOptions struct {
	// File receives JSON records. Empty logs to stderr only.
	File string
	// Level applies to stderr.
	Level slog.Level
	// FileLevel applies to File. It is never above Level.
	FileLevel slog.Level
	// Component is attached to every record as "component".
	Component string
}

// LogOptions returns the logging settings for one binary.
func (c Config) LogOptions(component string) LogOptions {
	return LogOptions{
		File:      c.LogFile,
		Level:     c.LogLevel,
		FileLevel: min(c.LogFileLevel, c.LogLevel),
		Component: component,
	}
}

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(opts LogOptions) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.Level})
	stderrOnly := withComponent(slog.New(stderrHandler), opts.Component)
	if opts.File == "" {
		return stderrOnly, func() error { return nil }
	}

	file, err := openLogFile(opts.File)
	if err != nil {
		// Fall back to stderr-only if file fails
		stderrOnly.Error("failed to open log file, using stderr only", "error", err, "file", opts.File)
		return stderrOnly, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.FileLevel})
	logger := withComponent(slog.New(slogmulti.Fanout(stderrHandler, fileHandler)), opts.Component)

	return logger, file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, opts LogOptions) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.Level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.FileLevel})
	return withComponent(slog.New(slogmulti.Fanout(stderrHandler, fileHandler)), opts.Component)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func withComponent(logger *slog.Logger, component string) *slog.Logger {
	if component == "" {
		return logger
	}
	return logger.With("component", component)
}
