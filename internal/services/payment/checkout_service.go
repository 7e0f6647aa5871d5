package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/kevin07696/intesa-checkout/pkg/observability"
)

// Redirect is the signed form the buyer's browser posts to the processor
type Redirect struct {
	URL    string
	Fields domain.OutboundFields
}

// CheckoutService stores order snapshots and builds signed redirects for them
type CheckoutService struct {
	config   domain.GatewayConfig
	gateway  ports.OffsiteGateway
	orders   ports.OrderProvider
	orderTTL time.Duration
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	config domain.GatewayConfig,
	gateway ports.OffsiteGateway,
	orders ports.OrderProvider,
	orderTTL time.Duration,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		config:   config,
		gateway:  gateway,
		orders:   orders,
		orderTTL: orderTTL,
		logger:   logger,
	}
}

// CreateOrder validates and stores an order snapshot. The currency is always RSD.
func (s *CheckoutService) CreateOrder(ctx context.Context, order domain.OrderRef) error {
	order.Currency = domain.CurrencyRSD
	if err := order.Validate(); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, order, s.orderTTL); err != nil {
		return fmt.Errorf("save order %s: %w", order.ID, err)
	}

	s.logger.Info("Order snapshot stored",
		zap.String("order_id", order.ID),
		zap.String("amount", order.FormattedTotal()),
		zap.Duration("ttl", s.orderTTL),
	)
	return nil
}

// PrepareRedirect signs a fresh redirect for a stored order
func (s *CheckoutService) PrepareRedirect(ctx context.Context, orderID string) (*Redirect, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	redirect := &Redirect{
		URL:    s.gateway.RedirectURL(),
		Fields: s.gateway.BuildOutbound(order),
	}
	observability.RecordOutboundRequest(string(s.config.Mode))
	return redirect, nil
}
