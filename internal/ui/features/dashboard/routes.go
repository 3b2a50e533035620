// Package dashboard provides the interactive Gapminder dashboard feature.
package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/ui/notifier"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(
	router chi.Router,
	datasets *dataset.Holder,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(datasets, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.Updates)

	router.Route("/api", func(r chi.Router) {
		r.Post("/selection", handlers.SelectionSSE)
		r.Get("/chart.svg", handlers.ChartSVG)
		r.Get("/chart.png", handlers.ChartPNG)
		r.Get("/view", handlers.ViewJSON)
	})

	return nil
}
