package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ticket-service/internal/core/domain"
)

// Purchase outcomes used as the "outcome" label.
const (
	OutcomeSuccess           = "success"
	OutcomeRejected          = "rejected"
	OutcomePaymentFailed     = "payment_failed"
	OutcomeReservationFailed = "reservation_failed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by outcome.",
		},
		[]string{"outcome"},
	)
	ticketsSoldTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Tickets sold by ticket type.",
		},
		[]string{"type"},
	)
	purchaseAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_purchase_amount_total",
			Help: "Sum of amounts charged for settled purchases.",
		},
	)
)

// NewMetricsMiddleware Creates HTTP middleware for collecting Prometheus metrics.
func NewMetricsMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				duration := time.Since(start)
				path := routePattern(r)

				httpRequestDuration.WithLabelValues(serviceName, r.Method, path).Observe(duration.Seconds())
				httpRequestsTotal.WithLabelValues(serviceName, r.Method, path, strconv.Itoa(ww.Status())).Inc()
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routePattern keeps label cardinality bounded by using the chi route, not the raw URL.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// RecordPurchase counts one purchase attempt.
func RecordPurchase(outcome string) {
	purchasesTotal.WithLabelValues(outcome).Inc()
}

// RecordSale adds a settled purchase to the sales counters.
func RecordSale(result *domain.PurchaseResult) {
	for _, t := range domain.TicketTypes {
		if n := result.TicketCounts.Of(t); n > 0 {
			ticketsSoldTotal.WithLabelValues(t.String()).Add(float64(n))
		}
	}
	purchaseAmountTotal.Add(float64(result.TotalAmount))
}
