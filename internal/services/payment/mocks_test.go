package payment_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// MockOrderProvider mocks ports.OrderProvider
type MockOrderProvider struct {
	mock.Mock
}

func (m *MockOrderProvider) Save(ctx context.Context, order domain.OrderRef, ttl time.Duration) error {
	args := m.Called(ctx, order, ttl)
	return args.Error(0)
}

func (m *MockOrderProvider) Get(ctx context.Context, orderID string) (domain.OrderRef, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.OrderRef), args.Error(1)
}

// MockLedger mocks ports.PaymentLedger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordPayment(ctx context.Context, payment *domain.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

// MockNotifier mocks ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, order domain.OrderRef, message string, report domain.PaymentReport) error {
	args := m.Called(ctx, order, message, report)
	return args.Error(0)
}
