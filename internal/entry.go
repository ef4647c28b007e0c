// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kristianernst/fast-slides/internal/api"
	"github.com/kristianernst/fast-slides/internal/history"
	"github.com/kristianernst/fast-slides/internal/mcpserver"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/registry"
	"github.com/kristianernst/fast-slides/internal/sse"
	"github.com/kristianernst/fast-slides/internal/watcher"
)

// NewLogger builds the structured JSON logger. When app.log_file is set,
// records are also written to a size-rotated file.
func NewLogger(cfg ApplicationConfig, out io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = io.NopCloser(nil)
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(out, rotating)
		closer = rotating
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	return logger, closer
}

// OpenService builds the project service described by cfg. The returned
// close function releases the validation journal.
func OpenService(cfg *Config, logger *slog.Logger, opts ...Option) (*projectsvc.Service, func() error, error) {
	app := &application{config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	home, err := cfg.FastSlides.HomeDir()
	if err != nil {
		return nil, nil, err
	}
	store := registry.NewStore(home, cfg.FastSlides.ProjectsDir)

	userHome, _ := os.UserHomeDir()
	svcOpts := []projectsvc.Option{
		projectsvc.WithLogger(logger),
		projectsvc.WithPreviewURL(cfg.FastSlides.PreviewURL),
		projectsvc.WithSkillDirs(projectsvc.SkillCandidates(cfg.FastSlides.SkillDir, userHome)...),
	}
	if app.shell != nil {
		svcOpts = append(svcOpts, projectsvc.WithShell(app.shell))
	}

	closeFn := func() error { return nil }
	if cfg.History.Enabled {
		if err := os.MkdirAll(home, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create home dir: %w", err)
		}
		db, err := history.Open(cfg.History.DBPath(home))
		if err != nil {
			return nil, nil, fmt.Errorf("init history: %w", err)
		}
		svcOpts = append(svcOpts, projectsvc.WithJournal(db, cfg.History.Keep))
		closeFn = db.Close
	}

	return projectsvc.New(store, svcOpts...), closeFn, nil
}

// Run starts the control plane and the live validation watcher.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{logOut: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger, logCloser := NewLogger(cfg.App, app.logOut)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address),
		slog.String("fastslides_home", cfg.FastSlides.Home),
		slog.String("preview_url", cfg.FastSlides.PreviewURL),
		slog.Bool("history", cfg.History.Enabled),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeSvc, err := OpenService(cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer closeSvc()

	// Normalize and persist the registry once at startup.
	if _, err := svc.AppState(ctx); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address,
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address))

	g, gCtx := errgroup.WithContext(ctx)

	// Start project watcher with SSE callback.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			wopts := watcher.Options{Debounce: cfg.Watch.Debounce, Rescan: cfg.Watch.Rescan}
			err := watcher.Watch(gCtx, svc.Store(), svc.Check, wopts, logger, func(kind, dir string, report *models.ValidationReport) {
				switch kind {
				case watcher.KindValidated:
					broker.PublishValidated(report)
				case watcher.KindRemoved:
					broker.PublishRemoved(dir)
				}
			})
			if err != nil {
				logger.Warn("watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{logOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger, logCloser := NewLogger(app.config.App, app.logOut)
	defer logCloser.Close()
	slog.SetDefault(logger)

	svc, closeSvc, err := OpenService(app.config, logger, opts...)
	if err != nil {
		return err
	}
	defer closeSvc()

	logger.Info("MCP server starting on stdio")
	errCh := make(chan error, 1)
	go func() { errCh <- mcpserver.New(svc).ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
