package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"go.uber.org/zap"
)

// execer is satisfied by *pgxpool.Pool, pgx.Tx and *pgx.Conn
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertPaymentSQL = `
INSERT INTO intesa_payments (
    id, order_id, amount, currency, state, remote_id, remote_state,
    authorized_at, avs_response_code, avs_response_code_label, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (remote_id) DO NOTHING`

// PaymentLedger writes accepted payments to PostgreSQL
type PaymentLedger struct {
	db           execer
	queryTimeout time.Duration
	logger       *zap.Logger
}

var _ ports.PaymentLedger = (*PaymentLedger)(nil)

// NewPaymentLedger creates a ledger over db. A zero queryTimeout disables the per-statement timeout.
func NewPaymentLedger(db execer, queryTimeout time.Duration, logger *zap.Logger) *PaymentLedger {
	return &PaymentLedger{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// RecordPayment inserts payment, assigning a UUID when ID is empty, and reports whether
// a row was written. A second callback for the same processor transaction returns false.
func (l *PaymentLedger) RecordPayment(ctx context.Context, payment *domain.Payment) (bool, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	id, err := uuid.Parse(payment.ID)
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeLedgerError, "payment ID is not a UUID", err).
			WithDetail("payment_id", payment.ID)
	}

	if l.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.queryTimeout)
		defer cancel()
	}

	tag, err := l.db.Exec(ctx, insertPaymentSQL,
		id,
		payment.OrderID,
		decimalToNumeric(payment.Amount),
		payment.Currency,
		string(payment.State),
		payment.RemoteID,
		payment.RemoteState,
		nullTime(payment.AuthorizedAt),
		nullText(payment.AVSResponseCode),
		nullText(payment.AVSResponseCodeLabel),
		payment.CreatedAt,
	)
	if err != nil {
		l.logger.Error("Failed to record payment",
			zap.String("order_id", payment.OrderID),
			zap.String("remote_id", payment.RemoteID),
			zap.Error(err),
		)
		return false, domain.WrapError(domain.ErrorCodeLedgerError, "failed to record payment", err).
			WithDetail("order_id", payment.OrderID)
	}

	if tag.RowsAffected() == 0 {
		l.logger.Warn("Payment already recorded for processor transaction",
			zap.String("order_id", payment.OrderID),
			zap.String("remote_id", payment.RemoteID),
		)
		return false, nil
	}

	l.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("remote_id", payment.RemoteID),
		zap.String("remote_state", payment.RemoteState),
	)
	return true, nil
}

