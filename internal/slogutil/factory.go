package slogutil

import (
	"io"
	"log/slog"

	"website/internal/config"
	"website/internal/paths"
	"website/internal/version"
)

// LoggerFactory builds the diagnostics logger from configuration and owns
// the files and sinks it opens.
// Level precedence: CLI flag > logging.level > info.
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel string
	console  io.Writer
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory.
// cliLevel is the raw --log-level value; "" means not set.
// console receives the human-readable stream (stderr in production).
func NewLoggerFactory(root string, cfg *config.Config, cliLevel string, console io.Writer) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if console == nil {
		console = io.Discard
	}
	return &LoggerFactory{
		root:     root,
		config:   cfg,
		cliLevel: cliLevel,
		console:  console,
	}
}

// Level returns the effective diagnostics level.
func (f *LoggerFactory) Level() slog.Level {
	if f.cliLevel != "" {
		return LevelFromString(f.cliLevel)
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// ServerLogger returns the logger used by the HTTP server and CLI.
//
// It always writes to the console. logging.file adds a (possibly rotating)
// file and logging.remote.endpoint adds a Loki sink; a sink that cannot be
// opened is reported on the console and skipped.
func (f *LoggerFactory) ServerLogger() *slog.Logger {
	level := f.Level()
	handlers := []slog.Handler{
		NewSiteHandler(f.console, &slog.HandlerOptions{Level: level}),
	}
	console := slog.New(handlers[0])

	if f.config.Logging.File != "" {
		path := paths.Resolve(f.root, f.config.Logging.File)
		if h, err := f.fileHandler(path, level); err != nil {
			console.Warn("Diagnostics log file unavailable", "path", path, "error", err.Error())
		} else {
			handlers = append(handlers, h)
		}
	}

	if f.config.Logging.Remote.Endpoint != "" {
		lh, err := NewLokiHandler(&f.config.Logging.Remote, map[string]string{
			"app":     "website",
			"version": version.Version,
		}, level)
		if err != nil {
			console.Warn("Remote log sink disabled", "error", err.Error())
		} else {
			lh.Start()
			f.closers = append(f.closers, lh)
			handlers = append(handlers, lh)
		}
	}

	if len(handlers) == 1 {
		return console
	}
	return slog.New(NewTeeHandler(handlers...))
}

func (f *LoggerFactory) fileHandler(path string, level slog.Level) (slog.Handler, error) {
	if err := paths.EnsureParentDir(path); err != nil {
		return nil, err
	}
	logger, closer, err := NewFileLoggerWithRotation(path, level, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, closer)
	return logger.Handler(), nil
}

// Close closes every file and sink the factory opened, returning the first error.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
