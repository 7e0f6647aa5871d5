package ports

import (
	"context"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// PaymentLedger records payments for accepted callbacks
type PaymentLedger interface {
	// RecordPayment persists payment and reports whether a row was written.
	// Recording the same processor transaction twice is not an error; the second
	// call returns false and leaves the stored row unchanged.
	RecordPayment(ctx context.Context, payment *domain.Payment) (bool, error)
}
