package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ticket-service/internal/core/domain"
	"ticket-service/internal/core/ports"
	"ticket-service/internal/observability"
)

// TicketHandler serves the purchase API. It logs through the request logger
// placed in the context by observability.NewLoggerMiddleware.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// requestLogger is the context logger, tagged with the JWT subject when the
// route is protected.
func requestLogger(r *http.Request) *slog.Logger {
	logger := observability.LoggerFromContext(r.Context())
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			logger = logger.With("subject", sub)
		}
	}
	return logger
}

// TicketRequest is one line of a purchase request body.
type TicketRequest struct {
	Type     domain.TicketType `json:"type"`
	Quantity int               `json:"quantity"`
}

// PurchaseRequest is the body of POST /api/v1/purchases.
type PurchaseRequest struct {
	AccountID int64           `json:"account_id"`
	Tickets   []TicketRequest `json:"tickets"`
}

// PricesResponse is the body of GET /api/v1/prices.
type PricesResponse struct {
	Prices     domain.Pricing `json:"prices"`
	MaxTickets int            `json:"max_tickets"`
}

func (h *TicketHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		message := decodeErrorMessage(err)
		logger.Info("purchase request rejected", "reason", message)
		writeJSONError(w, message, http.StatusBadRequest, logger)
		return
	}

	requests := make([]domain.TicketTypeRequest, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		requests = append(requests, domain.NewTicketTypeRequest(t.Type, t.Quantity))
	}

	result, err := h.service.PurchaseTickets(r.Context(), req.AccountID, requests...)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPurchase):
			logger.Info("purchase request rejected", "account_id", req.AccountID, "reason", err.Error())
			writeJSONError(w, err.Error(), http.StatusBadRequest, logger)

		case errors.Is(err, domain.ErrPaymentFailed):
			logger.Warn("payment gateway rejected purchase", "account_id", req.AccountID, "error", err)
			writeJSONError(w, "payment failed", http.StatusPaymentRequired, logger)

		case errors.Is(err, domain.ErrReservationFailed):
			logger.Error("seat reservation failed after payment", "account_id", req.AccountID, "error", err)
			writeJSONError(w, "seat reservation failed", http.StatusBadGateway, logger)

		default:
			logger.Error("unexpected error during ticket purchase", "error", err)
			writeJSONError(w, "internal server error", http.StatusInternalServerError, logger)
		}
		return
	}

	logger.Info("purchase completed", "account_id", req.AccountID, "amount", result.TotalAmount, "seats", result.TotalSeats)
	writeJSON(w, http.StatusOK, result, logger)
}

func (h *TicketHandler) HandlePrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PricesResponse{
		Prices:     h.service.Pricing(),
		MaxTickets: h.service.MaxTickets(),
	}, requestLogger(r))
}

// decodeErrorMessage keeps rule messages from the domain (e.g. an unknown ticket
// type) and hides the decoder's internals otherwise.
func decodeErrorMessage(err error) string {
	var invalid *domain.InvalidPurchaseError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "account_id" {
		return "Invalid account ID"
	}
	return "invalid request body"
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// use the logger that came through the structure.
		logger.Error("failed to write json response", "ERROR", err)
	}
}

// writeJSONError is a helper for sending errors in JSON format.
func writeJSONError(w http.ResponseWriter, message string, status int, logger *slog.Logger) {
	writeJSON(w, status, map[string]string{"error": message}, logger)
}
