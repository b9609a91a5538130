package httpclient

import (
	"context"
	"fmt"
	"time"

	"ticket-service/internal/core/domain"
)

// PaymentClient is an implementation of the PaymentGateway port over HTTP.
type PaymentClient struct {
	client client
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{client: newClient(baseURL, timeout)}
}

type paymentRequest struct {
	AccountID int64 `json:"account_id"`
	Amount    int   `json:"amount"`
}

// MakePayment charges amount to the account.
func (c *PaymentClient) MakePayment(ctx context.Context, accountID int64, amount int) error {
	err := c.client.post(ctx, "/payments", paymentRequest{AccountID: accountID, Amount: amount})
	if err != nil {
		return fmt.Errorf("%w: account %d: %w", domain.ErrPaymentFailed, accountID, err)
	}
	return nil
}
