// Package rest assembles the chi router for the HTTP API.
package rest

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"worldloom-backend/interfaces/http/rest/handlers"
	restmiddleware "worldloom-backend/interfaces/http/rest/middleware"
	"worldloom-backend/internal/config"
	appmiddleware "worldloom-backend/internal/middleware"
	"worldloom-backend/internal/observability"
	"worldloom-backend/pkg/api"
	"worldloom-backend/pkg/auth"
)

// Handlers groups every endpoint handler the router mounts
type Handlers struct {
	Projects      *handlers.ProjectHandler
	Elements      *handlers.ElementHandler
	Relationships *handlers.RelationshipHandler
	Search        *handlers.SearchHandler
	Transfer      *handlers.TransferHandler
	Diagnostics   *handlers.DiagnosticsHandler
	Health        *handlers.HealthHandler
}

// NewRouter builds the full HTTP surface: public health and docs
// endpoints plus the authenticated /api/v1 tree.
func NewRouter(
	cfg *config.Config,
	h Handlers,
	validator *auth.JWTValidator,
	metrics *observability.Collector,
	logger *zap.Logger,
) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(appmiddleware.RequestID)
	router.Use(appmiddleware.Recovery(logger))
	router.Use(restmiddleware.Logger(logger))
	router.Use(metrics.HTTPMiddleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	}))
	router.Use(appmiddleware.Timeout(cfg.Server.RequestTimeout, logger))
	router.Use(appmiddleware.CircuitBreaker(appmiddleware.DefaultCircuitBreakerConfig("http"), logger))

	// Public endpoints
	router.Get("/health", h.Health.Health)
	router.Get("/ready", h.Health.Ready)
	router.Handle("/metrics", metrics.Handler())
	router.Get("/docs", api.SwaggerUIHandler())
	router.Get("/docs/openapi.yaml", api.SwaggerHandler())

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.Security.EnableAuth {
			r.Use(restmiddleware.Authenticate(validator, logger))
		} else {
			r.Use(restmiddleware.StaticUser("local-dev"))
		}

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.Projects.Create)
			r.Get("/", h.Projects.List)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", h.Projects.Get)
				r.Put("/", h.Projects.Update)
				r.Delete("/", h.Projects.Delete)
				r.Get("/export", h.Transfer.ExportProject)

				r.Route("/elements", func(r chi.Router) {
					r.Post("/", h.Elements.Create)
					r.Get("/", h.Elements.List)

					r.Route("/{elementID}", func(r chi.Router) {
						r.Get("/", h.Elements.Get)
						r.Put("/", h.Elements.Update)
						r.Delete("/", h.Elements.Delete)
						r.Put("/answers/{questionID}", h.Elements.Answer)
						r.Get("/relationships", h.Relationships.ListForElement)
					})
				})

				r.Route("/relationships", func(r chi.Router) {
					r.Post("/", h.Relationships.Create)
					r.Get("/", h.Relationships.List)
					r.Delete("/{relationshipID}", h.Relationships.Delete)
				})
			})
		})

		r.Get("/categories", h.Elements.Categories)
		r.Get("/relationship-types", h.Relationships.Types)

		r.Get("/search", h.Search.Search)
		r.Get("/search/recent", h.Search.Recent)
		r.Delete("/search/recent", h.Search.ClearRecent)

		r.Get("/export", h.Transfer.ExportAll)
		r.Post("/import", h.Transfer.Import)

		r.Post("/diagnostics/run", h.Diagnostics.Run)
	})

	return router
}
