package httpclient

import (
	"context"
	"fmt"
	"time"

	"ticket-service/internal/core/domain"
)

// SeatReservationClient is an implementation of the SeatReservationGateway port over HTTP.
type SeatReservationClient struct {
	client client
}

func NewSeatReservationClient(baseURL string, timeout time.Duration) *SeatReservationClient {
	return &SeatReservationClient{client: newClient(baseURL, timeout)}
}

type reservationRequest struct {
	AccountID int64 `json:"account_id"`
	Seats     int   `json:"seats"`
}

func (c *SeatReservationClient) ReserveSeat(ctx context.Context, accountID int64, seats int) error {
	err := c.client.post(ctx, "/reservations", reservationRequest{AccountID: accountID, Seats: seats})
	if err != nil {
		return fmt.Errorf("%w: account %d: %w", domain.ErrReservationFailed, accountID, err)
	}
	return nil
}
