package ports

import (
	"context"
	"time"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// OrderProvider supplies order snapshots to the checkout flow.
// Save returns domain.ErrOrderExists (by code) while a snapshot with the same ID is live.
// Get returns domain.ErrOrderNotFound (by code) when the snapshot is missing or expired.
type OrderProvider interface {
	Save(ctx context.Context, order domain.OrderRef, ttl time.Duration) error
	Get(ctx context.Context, orderID string) (domain.OrderRef, error)
}
