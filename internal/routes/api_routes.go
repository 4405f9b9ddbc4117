package routes

import (
	"github.com/go-chi/chi/v5"

	"flightdeck/logbook/internal/api"
	"flightdeck/logbook/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers.
// This keeps API route registration separate from the main router setup.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers) {

	r.Route("/api/v1", func(v1 chi.Router) {
		// global: every route requires an authenticated user
		v1.Use(middleware.AuthMiddleware(deps.Repo.UserGorm, deps.Repo.Keys))

		v1.Route("/logbook", func(lb chi.Router) {
			lb.Post("/upload", handlers.UploadLogbookHandler())
			lb.Get("/aggregates", handlers.GetAggregatesHandler())

			lb.Route("/rows", func(rows chi.Router) {
				rows.Post("/", handlers.SaveLogbookHandler())
				rows.Delete("/", handlers.DeleteAllRowsHandler())
				rows.Put("/{row_id}", handlers.UpdateLogRowHandler())
				rows.Delete("/{row_id}", handlers.DeleteLogRowHandler())
			})
		})
	})
}
