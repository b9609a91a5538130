package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-service/internal/core/ports"
	"ticket-service/internal/observability"
)

// RouterDeps holds everything the router needs. RateLimiter and JWTSecret are optional.
type RouterDeps struct {
	Service     ports.TicketService
	Logger      *slog.Logger
	RateLimiter *RateLimiterMiddleware
	JWTSecret   string
}

// NewRouter builds the public HTTP API.
func NewRouter(deps RouterDeps) http.Handler {
	handler := NewTicketHandler(deps.Service)

	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		observability.NewLoggerMiddleware(deps.Logger),
		observability.NewMetricsMiddleware(observability.ServiceName),
		observability.NewTracingMiddleware(observability.ServiceName),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": observability.ServiceName,
		}, deps.Logger)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Handler)
		}
		if deps.JWTSecret != "" {
			r.Use(JWTMiddleware([]byte(deps.JWTSecret), deps.Logger))
		}
		r.Get("/prices", handler.HandlePrices)
		r.Post("/purchases", handler.HandlePurchase)
	})

	return r
}
