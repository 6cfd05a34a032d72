package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/userdex/internal/metrics"
)

// Routes builds the chi router with middleware, the users API, health and metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(escapedRoutePath)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(textRecoverer(s.logger))

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/create-index", s.CreateIndex)
		r.Post("/add-user", s.AddUser)
		r.Post("/Update-user", s.UpdateUser)
		r.Post("/update-user", s.UpdateUser)
		r.Get("/get-user/{key}", s.GetUser)
		r.Get("/get-all-users", s.GetAllUsers)
		r.Delete("/remove-user/{key}", s.RemoveUser)
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
