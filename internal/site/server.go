// Package site wires the website's routes, middleware and background workers into an HTTP server.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"website/internal/config"
	"website/internal/paths"
	"website/internal/reqlog"
	"website/internal/slogutil"
	"website/internal/static"
	"website/internal/version"
	"website/internal/views"
	"website/internal/watcher"
)

// Options configures NewServer. Only Config is required.
type Options struct {
	Config *config.Config
	// Root is the site root that relative directories in Config resolve against.
	Root string
	// FS holds views and public files. Defaults to the OS filesystem.
	FS afero.Fs
	// LogFS receives the request log. Defaults to FS.
	LogFS afero.Fs
	// Console receives request lines and append failures. Defaults to stdout.
	Console io.Writer
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Server is the website: router, middleware chain, renderer and request log.
type Server struct {
	config      *config.Config
	router      chi.Router
	handler     http.Handler
	server      *http.Server
	logger      *slog.Logger
	fs          afero.Fs
	publicDir   string
	views       *views.Renderer
	appender    *reqlog.Appender
	requests    *reqlog.Logger
	watcher     *watcher.Watcher
	maintenance bool
}

// NewServer builds a server from opts. Templates are parsed here, so a
// broken views directory fails at startup rather than on first request.
func NewServer(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("site: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logFS := opts.LogFS
	if logFS == nil {
		logFS = fs
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	console = reqlog.Console(console)
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	viewsDir := paths.Resolve(opts.Root, cfg.ViewsDir)
	partialsDir := ""
	if cfg.PartialsDir != "" {
		partialsDir = paths.Resolve(opts.Root, cfg.PartialsDir)
	}

	readOnly := afero.NewReadOnlyFs(fs)
	renderer, err := views.New(readOnly, viewsDir, partialsDir, views.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		fs:          readOnly,
		publicDir:   paths.Resolve(opts.Root, cfg.PublicDir),
		views:       renderer,
		maintenance: cfg.MaintenanceEnabled(),
	}
	for _, page := range requiredPages(s.maintenance) {
		if !renderer.Has(page) {
			return nil, fmt.Errorf("loading templates: %s has no %s%s", viewsDir, page, views.Ext)
		}
	}

	logPath := paths.Resolve(opts.Root, cfg.LogFile)
	if paths.IsWithin(logPath, s.publicDir) {
		logger.Warn("Request log is inside the public directory and will be served to clients",
			"logFile", logPath, "publicDir", s.publicDir)
	}
	s.appender = reqlog.NewAppender(logFS, logPath, console,
		reqlog.WithLogger(logger.With("component", "reqlog")))
	s.requests = reqlog.NewLogger(console, s.appender, clock)

	if cfg.Watch.Enabled {
		s.watcher = watcher.New(readOnly, renderer.Dirs(), watcher.FromSiteConfig(cfg.Watch),
			logger.With("component", "watcher"), s.reloadTemplates)
	}

	s.router = chi.NewRouter()
	s.registerRoutes()
	s.handler = s.applyMiddleware(s.router)

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  seconds(cfg.Server.ReadTimeoutSec),
		WriteTimeout: seconds(cfg.Server.WriteTimeoutSec),
		IdleTimeout:  seconds(cfg.Server.IdleTimeoutSec),
	}
	return s, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Maintenance reports whether every page request renders the maintenance page.
func (s *Server) Maintenance() bool { return s.maintenance }

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.logger.Warn("Template watcher failed to start", "error", err.Error())
		}
	}

	s.logger.Info("Server is up",
		"addr", ln.Addr().String(),
		"version", version.Info(),
		"pages", len(s.views.Names()),
		"maintenance", s.maintenance,
		"public", humanize.Bytes(s.publicSize()),
		"requestLog", s.appender.Path(),
	)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones, then stops the
// watcher and drains the request log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	err := s.server.Shutdown(ctx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// Close releases the watcher and drains the request log without touching the listener.
func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	return s.appender.Close()
}

// Flush waits until every request line logged so far has reached the log file.
func (s *Server) Flush() {
	s.appender.Flush()
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = s.maintenanceMiddleware(handler)
	handler = static.Middleware(s.fs, s.publicDir)(handler)
	if s.config.Server.Gzip {
		handler = GzipMiddleware()(handler)
	}
	handler = s.requests.Middleware(handler)
	handler = AccessLogMiddleware(s.logger)(handler)
	handler = PoweredByMiddleware()(handler)
	handler = RequestIDMiddleware()(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}

func (s *Server) reloadTemplates(events []watcher.Event) {
	if err := s.views.Reload(); err != nil {
		s.logger.Warn("Template reload failed, keeping previous templates", "error", err.Error())
		return
	}
	s.logger.Info("Templates reloaded", "changes", len(events), "pages", len(s.views.Names()))
}

func (s *Server) publicSize() uint64 {
	var total uint64
	_ = afero.Walk(s.fs, s.publicDir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
