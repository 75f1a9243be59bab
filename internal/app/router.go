package app

import (
	"net/http"
	"taskBoard/internal/handlers"
	"taskBoard/internal/middleware"
	"taskBoard/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (a *App) newRouter() http.Handler {
	h := handlers.NewTaskHandler(a.service)

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.APIKeyHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if rpm := a.config.RateLimit.RequestsPerMinute; rpm > 0 {
		r.Use(middleware.RateLimit(rpm))
	}
	if timeout := a.config.Server.RequestTimeout; timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Handle("/metrics", middleware.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Sessions:          a.sessions,
			APIKey:            a.config.Auth.APIKey,
			RequireCredential: a.service.Backend() == service.BackendBoard,
			Exempt:            []string{"/api/auth/", "/api/health"},
		}))

		r.Get("/health", h.HealthCheck)
		r.Get("/users", h.ListUsers)
		r.Get("/groups", h.ListGroups)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Delete("/{id}", h.DeleteProject)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.Delete("/", h.DeleteTask)

				r.Post("/done", h.MarkDone)
				r.Post("/reopen", h.Reopen)
				r.Post("/cancel", h.Cancel)
			})
		})
	})

	return r
}
