package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/westpoint-robotics/ros-cot/internal/config"
	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/internal/metrics"
	"github.com/westpoint-robotics/ros-cot/internal/storage/sqlite"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	hub        *Hub
	metrics    *metrics.Collector
	config     config.ServerConfig
	logger     *logger.Logger
}

// NewRouter creates a new API router. storage, hub and m may be nil.
func NewRouter(service *geofence.Service, storage *sqlite.EvaluationStorage, hub *Hub, m *metrics.Collector, cfg config.ServerConfig, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(service, storage, log),
		middleware: NewMiddleware(m, log),
		hub:        hub,
		metrics:    m,
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		// Containment
		router.Post("/check", r.handler.CheckPosition)
		router.Get("/areas", r.handler.GetAreas)

		// Local frame
		router.Post("/transform/enu", r.handler.ToENU)
		router.Post("/transform/geodetic", r.handler.ToGeodetic)
		router.Get("/origin", r.handler.GetOrigin)
		router.Post("/origin", r.handler.UpdateOrigin)
		router.Post("/crosstrack", r.handler.CrossTrack)

		// History
		router.Get("/evaluations", r.handler.GetEvaluations)
		router.Get("/evaluations/entity/{id}", r.handler.GetEvaluationsByEntity)
		router.Get("/transitions/entity/{id}", r.handler.GetTransitionsByEntity)

		// WebSocket route
		if r.hub != nil {
			router.Get("/ws", r.hub.ServeHTTP)
		}

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	if r.metrics != nil {
		router.Handle("/metrics", r.metrics.Handler())
	}

	return router
}
