package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/tasksplit/internal/api"
	"github.com/gaspardpetit/tasksplit/internal/config"
	"github.com/gaspardpetit/tasksplit/internal/metrics"
	"github.com/gaspardpetit/tasksplit/internal/web"
)

// NewRegistry returns a Prometheus registry holding the server metrics and
// the Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	preg := prometheus.NewRegistry()
	preg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(preg)
	return preg
}

// New constructs the HTTP handler for the server.
func New(cfg config.ServerConfig, gen api.Generator, preg *prometheus.Registry, version string) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	r.Get("/healthz", HealthHandler())
	r.Route("/api", func(ar chi.Router) {
		ar.Post("/gemini", api.GeminiHandler(gen))
		ar.Get("/openapi.json", api.OpenAPIHandler(version))
	})
	if preg != nil && !cfg.SeparateMetrics() {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}

	site := web.Handler(web.Assets(cfg.StaticDir))
	r.Get("/", site.ServeHTTP)
	r.Get("/*", site.ServeHTTP)
	return r
}

// MetricsHandler serves preg on a dedicated listener.
func MetricsHandler(preg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	return mux
}
