package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState is the local lifecycle state of a recorded payment
type PaymentState string

const (
	PaymentStateCompleted PaymentState = "completed"
)

// Payment is the ledger record written after an accepted callback
type Payment struct {
	ID                   string
	OrderID              string
	Amount               decimal.Decimal
	Currency             string
	State                PaymentState
	RemoteID             string    // processor TransId
	RemoteState          string    // processor Response
	AuthorizedAt         time.Time // parsed EXTRA_TRXDATE, zero if unparseable
	AVSResponseCode      string    // AuthCode
	AVSResponseCodeLabel string    // "mdStatus||ProcReturnCode"
	CreatedAt            time.Time
}

// NewPaymentFromOutcome builds the ledger record for an accepted outcome.
// Any other outcome yields an OUTCOME_NOT_ACCEPTED error.
func NewPaymentFromOutcome(id string, order OrderRef, outcome CallbackOutcome, now time.Time) (*Payment, error) {
	if !outcome.Accepted() {
		return nil, NewDomainError(ErrorCodeOutcomeNotAccepted, "payment can only be recorded for an accepted callback").
			WithDetail("reason", string(outcome.Reason))
	}

	txn := outcome.Transaction
	return &Payment{
		ID:                   id,
		OrderID:              order.ID,
		Amount:               order.Total,
		Currency:             order.Currency,
		State:                PaymentStateCompleted,
		RemoteID:             txn.TransactionID,
		RemoteState:          txn.Response,
		AuthorizedAt:         txn.TransactionTime,
		AVSResponseCode:      txn.AuthCode,
		AVSResponseCodeLabel: txn.MDStatus + "||" + txn.ReturnCode,
		CreatedAt:            now,
	}, nil
}
