package http

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"ticket-service/internal/config"
	"ticket-service/internal/core/ports"
)

// RateLimiterMiddleware limits how often a single client IP may call the API.
type RateLimiterMiddleware struct {
	repo   ports.RateLimiterRepository
	cfg    config.RateLimitConfig
	logger *slog.Logger
}

func NewRateLimiterMiddleware(repo ports.RateLimiterRepository, cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Handler is the middleware function.
func (m *RateLimiterMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RealIP may already have replaced RemoteAddr with a bare address.
			ip = r.RemoteAddr
		}

		allowed, err := m.repo.IsAllowed(r.Context(), ip, m.cfg.Requests, m.cfg.Window())
		if err != nil {
			// Fail open: a broken limiter must not take the purchase API down with it.
			m.logger.Error("rate limit check failed", "ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(m.cfg.WindowSeconds))
			writeJSONError(w, "Too Many Requests", http.StatusTooManyRequests, m.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}
