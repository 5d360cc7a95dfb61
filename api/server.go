/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/schedule/*   Resolved views and override documents
  /api/roster/*     Roster management
  /api/rules/*      Recurring rule management
  /api/admin/*      Reminder scheduling
  /api/scenarios/*  Demo data loading

SECURITY NOTE:
  No authentication middleware; auth is owned by the surrounding
  application, not this engine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Schedule views and override documents
		r.Route("/schedule", func(r chi.Router) {
			r.Get("/day", h.GetDaySchedule)
			r.Get("/week", h.GetWeekSchedule)
			r.Get("/month", h.GetMonthSchedule)
			r.Get("/my/{personID}", h.GetMySchedule)
			r.Get("/coverage", h.GetCoverage)

			r.Route("/day/{date}/overrides", func(r chi.Router) {
				r.Get("/", h.GetDayOverrides)
				r.Put("/", h.PutDayOverrides)
				r.Delete("/", h.DeleteDayOverrides)
			})
		})

		// Roster routes
		r.Route("/roster", func(r chi.Router) {
			r.Get("/", h.ListRoster)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Delete("/{id}", h.DeletePerson)
		})

		// Recurring rule routes
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.CreateRule)
			r.Delete("/{id}", h.DeleteRule)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reminders", h.CreateReminder)
		})

		// Demo scenario routes (development/demo only)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
