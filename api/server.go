/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/persons/*       Person, account and sick days lookups
  /api/applications/*  Application for leave lifecycle
  /api/sicknotes/*     Sick note lifecycle and sick pay watch
  /api/departments/*   Department management
  /api/overtime/*      Overtime records
  /api/holidays        Public holidays

SECURITY NOTE:
  The acting person comes from the X-Person-Id header; authentication is
  expected to happen upstream. See handlers.go.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Person-Id"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Person routes
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Get("/{id}/account/{year}", h.GetAccount)
			r.Put("/{id}/account/{year}", h.SaveAccount)
			r.Get("/{id}/sickdays", h.GetSickDays)
		})

		// Application routes
		r.Route("/applications", func(r chi.Router) {
			r.Get("/", h.ListApplications)
			r.Post("/", h.SubmitApplication)
			r.Get("/waiting", h.ListWaitingApplications)
			r.Get("/colleagues", h.ListColleagueApplications)
			r.Get("/{id}", h.GetApplication)
			r.Get("/{id}/comments", h.GetApplicationComments)
			r.Post("/{id}/allow", h.AllowApplication)
			r.Post("/{id}/reject", h.RejectApplication)
			r.Post("/{id}/cancel", h.CancelApplication)
		})

		// Sick note routes
		r.Route("/sicknotes", func(r chi.Router) {
			r.Post("/", h.CreateSickNote)
			r.Get("/end-of-sick-pay", h.ListEndOfSickPay)
			r.Get("/{id}", h.GetSickNote)
			r.Put("/{id}", h.UpdateSickNote)
			r.Get("/{id}/comments", h.GetSickNoteComments)
			r.Post("/{id}/convert", h.ConvertSickNote)
			r.Post("/{id}/cancel", h.CancelSickNote)
		})

		// Department routes
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Post("/", h.CreateDepartment)
			r.Get("/{id}", h.GetDepartment)
			r.Put("/{id}", h.UpdateDepartment)
			r.Delete("/{id}", h.DeleteDepartment)
		})

		// Overtime routes
		r.Route("/overtime", func(r chi.Router) {
			r.Post("/", h.RecordOvertime)
			r.Get("/total", h.GetOvertimeTotal)
			r.Get("/{id}/comments", h.GetOvertimeComments)
		})

		// Public holiday routes
		r.Post("/holidays", h.CreateHoliday)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
