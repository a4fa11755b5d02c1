package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Get("/events", h.HandleEvents)

			// Dashboard
			r.Post("/views/single", h.HandleAddSingleView)
			r.Post("/views/pair", h.HandleAddPairView)
			r.Post("/views/template", h.HandleApplyTemplate)
			r.Delete("/views/{index}", h.HandleRemoveView)
			r.Put("/as-of", h.HandleSetAsOf)
			r.Post("/scenario", h.HandleRunScenario)
			r.Post("/montecarlo", h.HandleRunMonteCarlo)

			// Backtest
			r.Post("/backtest/views", h.HandleAddBacktestView)
			r.Delete("/backtest/views/{index}", h.HandleRemoveBacktestView)
			r.Put("/backtest/period", h.HandleSetBacktestPeriod)
			r.Post("/backtest", h.HandleRunBacktest)
		})
	})
}
