package domain

import (
	"net/url"
	"time"
)

// OutboundField is a single name/value pair posted to the processor
type OutboundField struct {
	Name  string
	Value string
}

// OutboundFields is the ordered POST body of the redirect form
type OutboundFields []OutboundField

// Get returns the value of the named field, or "" when absent
func (f OutboundFields) Get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// Values converts the fields to url.Values for form encoding
func (f OutboundFields) Values() url.Values {
	values := make(url.Values, len(f))
	for _, field := range f {
		values.Set(field.Name, field.Value)
	}
	return values
}

// InboundFields holds the processor callback. A missing key reads as the empty string.
type InboundFields map[string]string

// Get returns the value for key, or "" when the processor did not send it
func (f InboundFields) Get(key string) string {
	return f[key]
}

// InboundFieldsFromForm flattens a parsed form, keeping the first value of each key
func InboundFieldsFromForm(form url.Values) InboundFields {
	fields := make(InboundFields, len(form))
	for key, values := range form {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields
}

// OutcomeStatus tags a CallbackOutcome
type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "accepted"
	OutcomeRejected OutcomeStatus = "rejected"
)

// RejectionReason explains a rejected callback. Exactly one is reported per callback.
type RejectionReason string

const (
	ReasonOrderMismatch     RejectionReason = "order_mismatch"
	ReasonClientMismatch    RejectionReason = "client_mismatch"
	ReasonInvalidSignature  RejectionReason = "invalid_signature"
	ReasonProcessorDeclined RejectionReason = "processor_declined"
)

// AcceptedTransaction carries the processor's transaction attributes verbatim
type AcceptedTransaction struct {
	TransactionID   string
	Response        string
	TransactionTime time.Time // zero when EXTRA_TRXDATE could not be parsed
	TransactionDate string    // EXTRA_TRXDATE as received
	AuthCode        string
	MDStatus        string
	ReturnCode      string
}

// CallbackOutcome is the result of classifying one callback. It is produced once
// and consumed immediately; it is never cached or retried.
type CallbackOutcome struct {
	Status      OutcomeStatus
	Reason      RejectionReason
	ReturnCode  string // ProcReturnCode as received, set for every outcome
	Transaction AcceptedTransaction
}

// Accepted reports whether every check passed
func (o CallbackOutcome) Accepted() bool {
	return o.Status == OutcomeAccepted
}

// Message is a human-readable explanation of the outcome, meant for logs and operators
func (o CallbackOutcome) Message() string {
	switch o.Reason {
	case ReasonOrderMismatch:
		return "the processor order ID is not valid or missing"
	case ReasonClientMismatch:
		return "the processor client ID is not valid or missing"
	case ReasonInvalidSignature:
		return "the processor digital signature is not valid"
	case ReasonProcessorDeclined:
		return "unexpected processor order status response code " + o.ReturnCode
	}
	if o.Accepted() {
		return "payment approved"
	}
	return ""
}

// DeclineTier groups cancel-path return codes by the message the buyer should see
type DeclineTier string

const (
	DeclineNone              DeclineTier = "none"
	DeclineProcessingError   DeclineTier = "processing_error"
	DeclineInsufficientFunds DeclineTier = "insufficient_funds"
	DeclineGeneric           DeclineTier = "generic_decline"
)

// Decline is the classification of a cancel callback
type Decline struct {
	Tier       DeclineTier
	ReturnCode string
}

// ReportRow is one labelled line of a PaymentReport
type ReportRow struct {
	Label string
	Value string
}

// PaymentReport is a display-only projection of a callback. It is not evidence of authenticity.
type PaymentReport []ReportRow
