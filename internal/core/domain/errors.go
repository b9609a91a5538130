package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPurchase   = errors.New("invalid purchase")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrReservationFailed = errors.New("seat reservation failed")
)

// InvalidPurchaseError rejects a purchase request. The message says which rule failed.
type InvalidPurchaseError struct {
	Message string
}

func NewInvalidPurchase(format string, args ...any) *InvalidPurchaseError {
	return &InvalidPurchaseError{Message: fmt.Sprintf(format, args...)}
}

func (e *InvalidPurchaseError) Error() string {
	return e.Message
}

func (e *InvalidPurchaseError) Is(target error) bool {
	return target == ErrInvalidPurchase
}
