package app

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ticket-service/internal/config"
	"ticket-service/internal/core/domain"
	"ticket-service/internal/core/ports"
	"ticket-service/internal/observability"
)

// service is the implementation of the TicketService port
type service struct {
	payments ports.PaymentGateway
	seats    ports.SeatReservationGateway
	pricing  domain.Pricing
	limit    int
	logger   *slog.Logger
}

// NewTicketService is the constructor of our service.
// Prices and the purchase limit are fixed for the lifetime of the service.
func NewTicketService(payments ports.PaymentGateway, seats ports.SeatReservationGateway, cfg config.TicketingConfig, logger *slog.Logger) ports.TicketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		payments: payments,
		seats:    seats,
		pricing:  cfg.Pricing(),
		limit:    cfg.MaxTickets,
		logger:   logger,
	}
}

func (s *service) Pricing() domain.Pricing { return s.pricing }

func (s *service) MaxTickets() int { return s.limit }

// PurchaseTickets validates the request, charges the account and reserves seats.
// Payment always happens before reservation; a failed payment means no reservation.
func (s *service) PurchaseTickets(ctx context.Context, accountID int64, requests ...domain.TicketTypeRequest) (*domain.PurchaseResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "TicketService.PurchaseTickets")
	defer span.End()
	span.SetAttributes(attribute.Int64("account.id", accountID))

	counts, totalAmount, err := s.validate(accountID, requests)
	if err != nil {
		s.logger.InfoContext(ctx, "purchase rejected", "account_id", accountID, "reason", err.Error())
		observability.RecordPurchase(observability.OutcomeRejected)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	totalSeats := counts.Seats()
	span.SetAttributes(
		attribute.Int("purchase.amount", totalAmount),
		attribute.Int("purchase.seats", totalSeats),
	)

	if err := s.payments.MakePayment(ctx, accountID, totalAmount); err != nil {
		s.logger.ErrorContext(ctx, "payment failed", "account_id", accountID, "amount", totalAmount, "error", err)
		observability.RecordPurchase(observability.OutcomePaymentFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment failed")
		return nil, err
	}

	if err := s.seats.ReserveSeat(ctx, accountID, totalSeats); err != nil {
		// The payment has already gone through; nothing is rolled back here.
		s.logger.ErrorContext(ctx, "seat reservation failed after payment", "account_id", accountID, "amount", totalAmount, "seats", totalSeats, "error", err)
		observability.RecordPurchase(observability.OutcomeReservationFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "seat reservation failed")
		return nil, err
	}

	result := &domain.PurchaseResult{
		Status:       domain.StatusSuccess,
		Message:      domain.PurchaseSucceededMessage,
		AccountID:    accountID,
		TotalAmount:  totalAmount,
		TotalSeats:   totalSeats,
		TicketCounts: counts,
	}

	s.logger.InfoContext(ctx, "tickets purchased", "account_id", accountID, "amount", totalAmount, "seats", totalSeats)
	observability.RecordPurchase(observability.OutcomeSuccess)
	observability.RecordSale(result)
	return result, nil
}

// validate runs every check in order and returns the first failure,
// or the aggregated counts and the amount to charge.
func (s *service) validate(accountID int64, requests []domain.TicketTypeRequest) (domain.TicketCounts, int, error) {
	if err := validateAccountID(accountID); err != nil {
		return domain.TicketCounts{}, 0, err
	}
	if err := validateRequests(requests); err != nil {
		return domain.TicketCounts{}, 0, err
	}

	counts := domain.CountTickets(requests)
	if err := s.validatePurchaseRules(counts); err != nil {
		return domain.TicketCounts{}, 0, err
	}

	amount, ok := s.pricing.Total(counts)
	if !ok {
		return domain.TicketCounts{}, 0, domain.NewInvalidPurchase("Total amount exceeds the supported maximum")
	}
	return counts, amount, nil
}

func validateAccountID(accountID int64) error {
	if accountID <= 0 {
		return domain.NewInvalidPurchase("Invalid account ID")
	}
	return nil
}

func validateRequests(requests []domain.TicketTypeRequest) error {
	if len(requests) == 0 {
		return domain.NewInvalidPurchase("At least one ticket must be purchased")
	}

	for _, r := range requests {
		if !r.Type().Valid() {
			return invalidTicketType(r.Type())
		}
		if r.Quantity() <= 0 {
			return domain.NewInvalidPurchase("Number of tickets must be a positive integer")
		}
	}
	return nil
}

// invalidTicketType names the offending type. An unset type has no name of its own.
func invalidTicketType(t domain.TicketType) error {
	if t == 0 {
		return domain.NewInvalidPurchase("Invalid ticket type: missing")
	}
	return domain.NewInvalidPurchase("Invalid ticket type: %s", t)
}

func (s *service) validatePurchaseRules(counts domain.TicketCounts) error {
	total := counts.Total()

	if total == 0 {
		return domain.NewInvalidPurchase("At least one ticket must be purchased")
	}

	if total > s.limit {
		return domain.NewInvalidPurchase("Maximum %d tickets per purchase", s.limit)
	}

	if counts.Adult == 0 && (counts.Child > 0 || counts.Infant > 0) {
		return domain.NewInvalidPurchase("Child and infant tickets require at least one adult ticket")
	}

	if counts.Infant > counts.Adult {
		return domain.NewInvalidPurchase("Infant tickets cannot exceed adult tickets")
	}

	return nil
}
