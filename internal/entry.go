// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/weekplan/internal/api"
	"github.com/starford/weekplan/internal/backup"
	"github.com/starford/weekplan/internal/inbox"
	"github.com/starford/weekplan/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", cfg.App.Timezone),
		slog.Bool("backup", cfg.Backup.Enabled),
		slog.Bool("inbox", cfg.Inbox.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newRouter(svc),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	jobs, err := backgroundJobs(cfg, svc)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	for _, job := range jobs {
		g.Go(func() error {
			return job(gCtx)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
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

		// Unblock the background workers.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

func newRouter(svc *services) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := svc.db.Ping(); err != nil {
			svc.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(svc.events, svc.indicators, svc.broker))
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

// backgroundJobs prepares the workers that run beside the HTTP server. All
// directories are created here so a failure leaves nothing running.
func backgroundJobs(cfg *Config, svc *services) ([]func(context.Context) error, error) {
	jobs := []func(context.Context) error{
		// Cancel drags abandoned mid-gesture.
		func(ctx context.Context) error {
			reapDrags(ctx, svc, cfg.Drag.ReapInterval)
			return nil
		},
	}

	if cfg.Backup.Enabled {
		files, err := storage.NewFS(cfg.Backup.Dir)
		if err != nil {
			return nil, fmt.Errorf("init backup dir: %w", err)
		}
		job := backup.New(svc.db, files, svc.loc, svc.logger)
		jobs = append(jobs, func(ctx context.Context) error {
			return job.Run(ctx, cfg.Backup.Schedule)
		})
	}

	if cfg.Inbox.Enabled {
		files, err := storage.NewFS(cfg.Inbox.Dir)
		if err != nil {
			return nil, fmt.Errorf("init inbox dir: %w", err)
		}
		w := inbox.New(files, svc.events, svc.loc, svc.logger)
		jobs = append(jobs, w.Run)
	}

	return jobs, nil
}

func reapDrags(ctx context.Context, svc *services, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			svc.events.ReapDrags(ctx, now)
		}
	}
}
