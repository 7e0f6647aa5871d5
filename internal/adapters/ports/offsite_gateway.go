package ports

import (
	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// OffsiteGateway is the capability set of a hosted-redirect payment gateway.
// The buyer's browser posts the outbound fields to the processor and the processor
// posts a callback back to us, so nothing here makes network calls.
type OffsiteGateway interface {
	// RedirectURL is the processor endpoint the checkout form posts to
	RedirectURL() string

	// BuildOutbound returns the signed form fields for order. Each call uses a fresh nonce,
	// so two builds for the same order carry different hashes.
	BuildOutbound(order domain.OrderRef) domain.OutboundFields

	// Classify decides whether a success callback can be trusted. The first failing check
	// (order ID, client ID, signature, return code) is the reported reason.
	Classify(order domain.OrderRef, inbound domain.InboundFields) domain.CallbackOutcome

	// ClassifyDecline maps a cancel callback to the tier of message shown to the buyer
	ClassifyDecline(inbound domain.InboundFields) domain.Decline

	// ExtractReport projects the callback into display rows. It performs no validation
	// and must not be treated as proof that the callback is authentic.
	ExtractReport(inbound domain.InboundFields) domain.PaymentReport
}
