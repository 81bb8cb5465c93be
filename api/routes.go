package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))
	s.router.Use(ManagerMiddleware(s.manager))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", s.handleListResources)             // GET /api/v1/resources
			r.Get("/{resourceID}", s.handleGetResource) // GET /api/v1/resources/{resourceID}
		})

		r.Route("/containers/{containerID}", func(r chi.Router) {
			r.Get("/", s.handleGetContainer)              // GET /api/v1/containers/{containerID}
			r.Delete("/", s.handleDismissContainer)       // DELETE /api/v1/containers/{containerID}
			r.Post("/show", s.handleShow)                 // POST /api/v1/containers/{containerID}/show
			r.Put("/fields/{key}", s.handleSetField)      // PUT /api/v1/containers/{containerID}/fields/{key}
			r.Delete("/fields/{key}", s.handleResetField) // DELETE /api/v1/containers/{containerID}/fields/{key}
		})

		r.Get("/preferences/{namespace}", s.handleListPreferences) // GET /api/v1/preferences/{namespace}
	})
}
