package ports

import (
	"context"
	"time"

	"ticket-service/internal/core/domain"
)

// PaymentGateway is an "outgoing port" that charges an account.
// Implementations: HTTP client, log-only stub.
type PaymentGateway interface {
	MakePayment(ctx context.Context, accountID int64, amount int) error
}

// SeatReservationGateway is an outgoing port that books seats for an account.
type SeatReservationGateway interface {
	ReserveSeat(ctx context.Context, accountID int64, seats int) error
}

// RateLimiterRepository keeps request counters for the rate limiting middleware.
type RateLimiterRepository interface {
	IsAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TicketService is an "incoming port" that defines how the outside world can interact with our kernel.
type TicketService interface {
	PurchaseTickets(ctx context.Context, accountID int64, requests ...domain.TicketTypeRequest) (*domain.PurchaseResult, error)
	Pricing() domain.Pricing
	MaxTickets() int
}
