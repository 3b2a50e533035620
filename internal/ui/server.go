// Package ui provides the web dashboard for gapview.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/ui/notifier"
	"github.com/leapstack-labs/gapview/internal/ui/router"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

// Server is the dashboard HTTP server.
type Server struct {
	datasets      *dataset.Holder
	datasetConfig dataset.Config
	sessionStore  *sessions.CookieStore
	port          int
	watch         bool
	shutdown      time.Duration
	isDev         bool
	logger        *slog.Logger
	notifier      *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	// Dataset is the initially loaded snapshot.
	Dataset *dataset.Dataset
	// DatasetConfig is used to reload the dataset when Watch is set.
	DatasetConfig dataset.Config
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	// ShutdownTimeout bounds graceful shutdown. Zero means 5s.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 5 * time.Second
	}

	return &Server{
		datasets:      dataset.NewHolder(cfg.Dataset),
		shutdown:      shutdown,
		datasetConfig: cfg.DatasetConfig,
		sessionStore:  sessionStore,
		port:          cfg.Port,
		watch:         cfg.Watch,
		isDev:         cfg.Dev,
		logger:        logger,
		notifier:      notifier.New(),
	}
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.datasets, s.sessionStore, s.notifier, s.logger, s.isDev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchDataset(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Dataset returns the snapshot currently served.
func (s *Server) Dataset() *dataset.Dataset {
	return s.datasets.Load()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Reload reads the dataset again and, on success, publishes it to all open
// pages. On failure the current snapshot stays in place.
func (s *Server) Reload(ctx context.Context) error {
	ds, err := dataset.Load(ctx, s.datasetConfig, s.logger)
	if err != nil {
		return err
	}
	version := s.datasets.Swap(ds)
	s.logger.Info("dataset reloaded", "version", version, "rows", ds.Len())
	s.notifier.Broadcast(notifier.Event{Version: version, Source: ds.Source()})
	return nil
}

// watchDataset reloads the dataset whenever its file changes. The parent
// directory is watched so editors that replace the file by rename are seen.
func (s *Server) watchDataset(ctx context.Context) error {
	src, err := dataset.ParseSource(s.datasetConfig)
	if err != nil {
		return err
	}
	path, ok := dataset.FilePath(src)
	if !ok {
		s.logger.Warn("dataset source cannot be watched", "source", src.String())
		return nil
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		s.logger.Error("failed to watch dataset directory", "error", err)
		// Don't fail - continue without watching
		return nil
	}
	s.logger.Info("watching dataset", "path", path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != path {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("dataset changed, reloading", "file", event.Name)
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed, keeping previous dataset", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
