// Package rest wires the HTTP surface: routing, middleware, and the
// response-cache layer in front of the read endpoints.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inventory-backend/application/ports"
	"inventory-backend/application/services"
	"inventory-backend/infrastructure/config"
	"inventory-backend/interfaces/http/rest/handlers"
	"inventory-backend/interfaces/http/rest/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Router creates and configures the HTTP router
type Router struct {
	cfg     *config.Config
	service *services.ProductService
	cache   ports.ResponseCache
	store   Pinger
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	service *services.ProductService,
	responseCache ports.ResponseCache,
	store Pinger,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:     cfg,
		service: service,
		cache:   responseCache,
		store:   store,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Product endpoints, fronted by the response cache. Writes purge the
	// /products key space before their response reaches the client.
	router.Route("/products", func(r chi.Router) {
		r.Use(middleware.InvalidateOnWrite(rt.cache, "/products", rt.logger))
		r.Use(middleware.CacheResponses(rt.cache, time.Duration(rt.cfg.CacheTTL)*time.Second, rt.logger))

		productHandler := handlers.NewProductHandler(rt.service, rt.logger)
		kpiHandler := handlers.NewKPIHandler(rt.service, rt.logger)

		r.Get("/", productHandler.ListProducts)
		r.Get("/kpi", kpiHandler.GetKPIs)
		r.Get("/{id}", productHandler.GetProduct)
		r.Post("/", productHandler.CreateProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the backing store answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := rt.store.PingContext(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
