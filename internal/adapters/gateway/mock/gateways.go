package mock

import (
	"context"
	"log/slog"
)

// PaymentGateway - stub for PaymentGateway that only logs the charge.
type PaymentGateway struct {
	logger *slog.Logger
}

func NewPaymentGateway(logger *slog.Logger) *PaymentGateway {
	return &PaymentGateway{logger: logger}
}

func (g *PaymentGateway) MakePayment(ctx context.Context, accountID int64, amount int) error {
	g.logger.InfoContext(ctx, "[MOCK] payment made", "account_id", accountID, "amount", amount)
	return nil
}

// SeatReservationGateway - stub for SeatReservationGateway that only logs the booking.
type SeatReservationGateway struct {
	logger *slog.Logger
}

func NewSeatReservationGateway(logger *slog.Logger) *SeatReservationGateway {
	return &SeatReservationGateway{logger: logger}
}

func (g *SeatReservationGateway) ReserveSeat(ctx context.Context, accountID int64, seats int) error {
	g.logger.InfoContext(ctx, "[MOCK] seats reserved", "account_id", accountID, "seats", seats)
	return nil
}
