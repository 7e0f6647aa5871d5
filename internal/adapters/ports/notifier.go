package ports

import (
	"context"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// Notifier delivers the payment report to the customer
type Notifier interface {
	Notify(ctx context.Context, order domain.OrderRef, message string, report domain.PaymentReport) error
}
