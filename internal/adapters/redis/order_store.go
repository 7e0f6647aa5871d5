package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// kvClient is the subset of go-redis commands the store uses
type kvClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// orderSnapshot is the stored form of an OrderRef. The total is kept as text so
// "10.00" reads back as "10.00".
type orderSnapshot struct {
	ID                    string `json:"id"`
	Total                 string `json:"total"`
	Currency              string `json:"currency"`
	ReturnURL             string `json:"return_url"`
	CancelURL             string `json:"cancel_url"`
	CustomerEmail         string `json:"customer_email,omitempty"`
	CustomerLangcode      string `json:"customer_langcode,omitempty"`
	CustomerAuthenticated bool   `json:"customer_authenticated,omitempty"`
}

// OrderStore keeps order snapshots in Redis between redirect and callback
type OrderStore struct {
	client    kvClient
	keyPrefix string
	logger    *zap.Logger
}

var _ ports.OrderProvider = (*OrderStore)(nil)

// NewClient creates the go-redis client used by the store and health checks
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})
}

// NewOrderStore creates an order store over client
func NewOrderStore(client kvClient, keyPrefix string, logger *zap.Logger) *OrderStore {
	return &OrderStore{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (s *OrderStore) key(orderID string) string {
	return s.keyPrefix + orderID
}

// Save stores order for ttl. A live snapshot under the same ID is never replaced;
// Save returns ORDER_EXISTS instead.
func (s *OrderStore) Save(ctx context.Context, order domain.OrderRef, ttl time.Duration) error {
	data, err := json.Marshal(orderSnapshot{
		ID:                    order.ID,
		Total:                 order.FormattedTotal(),
		Currency:              order.Currency,
		ReturnURL:             order.ReturnURL,
		CancelURL:             order.CancelURL,
		CustomerEmail:         order.CustomerEmail,
		CustomerLangcode:      order.CustomerLangcode,
		CustomerAuthenticated: order.CustomerAuthenticated,
	})
	if err != nil {
		return fmt.Errorf("[orders] failed to marshal order %s: %w", order.ID, err)
	}

	created, err := s.client.SetNX(ctx, s.key(order.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("[orders] failed to save order %s: %w", order.ID, err)
	}
	if !created {
		s.logger.Warn("Order snapshot already exists", zap.String("order_id", order.ID))
		return domain.NewDomainError(domain.ErrorCodeOrderExists, "order already exists").
			WithDetail("order_id", order.ID)
	}

	s.logger.Debug("Order snapshot saved",
		zap.String("order_id", order.ID),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// Get loads the snapshot for orderID
func (s *OrderStore) Get(ctx context.Context, orderID string) (domain.OrderRef, error) {
	raw, err := s.client.Get(ctx, s.key(orderID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.OrderRef{}, domain.NewDomainError(domain.ErrorCodeOrderNotFound, "order not found").
			WithDetail("order_id", orderID)
	}
	if err != nil {
		return domain.OrderRef{}, fmt.Errorf("[orders] failed to load order %s: %w", orderID, err)
	}

	var snap orderSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.OrderRef{}, fmt.Errorf("[orders] failed to unmarshal order %s: %w", orderID, err)
	}

	total, err := decimal.NewFromString(snap.Total)
	if err != nil {
		return domain.OrderRef{}, fmt.Errorf("[orders] order %s has invalid total %q: %w", orderID, snap.Total, err)
	}

	return domain.OrderRef{
		ID:                    snap.ID,
		Total:                 total,
		Currency:              snap.Currency,
		ReturnURL:             snap.ReturnURL,
		CancelURL:             snap.CancelURL,
		CustomerEmail:         snap.CustomerEmail,
		CustomerLangcode:      snap.CustomerLangcode,
		CustomerAuthenticated: snap.CustomerAuthenticated,
	}, nil
}
