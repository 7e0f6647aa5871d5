package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevin07696/intesa-checkout/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeKV is an in-memory kvClient
type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failSet error
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	if f.failSet != nil {
		return goredis.NewBoolResult(false, f.failSet)
	}
	if _, ok := f.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeKV) Get(ctx context.Context, key string) *goredis.StringCmd {
	if f.failGet != nil {
		return goredis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func TestOrderStore_SaveGet(t *testing.T) {
	kv := newFakeKV()
	store := NewOrderStore(kv, "intesa:order:", zaptest.NewLogger(t))
	ctx := context.Background()

	order := domain.OrderRef{
		ID:                    "1001",
		Total:                 decimal.RequireFromString("10.00"),
		Currency:              domain.CurrencyRSD,
		ReturnURL:             "https://shop.example/ok",
		CancelURL:             "https://shop.example/fail",
		CustomerEmail:         "buyer@example.com",
		CustomerLangcode:      "sr",
		CustomerAuthenticated: true,
	}

	require.NoError(t, store.Save(ctx, order, time.Hour))
	assert.Equal(t, time.Hour, kv.ttls["intesa:order:1001"])
	assert.Contains(t, kv.data["intesa:order:1001"], `"total":"10.00"`)

	got, err := store.Get(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.FormattedTotal())
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.ReturnURL, got.ReturnURL)
	assert.Equal(t, order.CancelURL, got.CancelURL)
	assert.Equal(t, order.CustomerEmail, got.CustomerEmail)
	assert.Equal(t, order.CustomerLangcode, got.CustomerLangcode)
	assert.True(t, got.CustomerAuthenticated)
}

func TestOrderStore_SaveRefusesExistingOrder(t *testing.T) {
	kv := newFakeKV()
	store := NewOrderStore(kv, "intesa:order:", zaptest.NewLogger(t))
	ctx := context.Background()

	first := domain.OrderRef{ID: "1001", Total: decimal.RequireFromString("250.00"), CustomerEmail: "buyer@example.com"}
	require.NoError(t, store.Save(ctx, first, time.Hour))

	second := domain.OrderRef{ID: "1001", Total: decimal.RequireFromString("1.00"), CustomerEmail: "other@example.com"}
	err := store.Save(ctx, second, time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrderExists)

	got, err := store.Get(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "250.00", got.FormattedTotal())
	assert.Equal(t, "buyer@example.com", got.CustomerEmail)
}

func TestOrderStore_GetMissing(t *testing.T) {
	store := NewOrderStore(newFakeKV(), "p:", zaptest.NewLogger(t))

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestOrderStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("set failure", func(t *testing.T) {
		kv := newFakeKV()
		kv.failSet = errors.New("READONLY")
		store := NewOrderStore(kv, "p:", zaptest.NewLogger(t))

		err := store.Save(ctx, domain.OrderRef{ID: "1", Total: decimal.NewFromInt(1)}, time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "READONLY")
	})

	t.Run("get failure is not not-found", func(t *testing.T) {
		kv := newFakeKV()
		kv.failGet = errors.New("connection reset")
		store := NewOrderStore(kv, "p:", zaptest.NewLogger(t))

		_, err := store.Get(ctx, "1")
		require.Error(t, err)
		assert.False(t, domain.IsNotFoundError(err))
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		kv := newFakeKV()
		kv.data["p:1"] = `{"id":"1","total":"ten"}`
		store := NewOrderStore(kv, "p:", zaptest.NewLogger(t))

		_, err := store.Get(ctx, "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid total")
	})
}
