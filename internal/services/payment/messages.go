package payment

import (
	"strings"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

const gatewayPlaceholder = "@gateway"

// Buyer-facing message templates. @gateway is replaced with the configured gateway name.
const (
	MessageCompleted         = "Payment completed successfully at @gateway."
	MessageSomethingWrong    = "Something went wrong at @gateway. Please review your information and try again."
	MessageInsufficientFunds = "Payment declined at @gateway. Your account has insufficient funds or you have hit your limit."
	MessageDeclined          = "Payment declined at @gateway. Please review your information and try again."
)

func formatMessage(template, gatewayName string) string {
	return strings.ReplaceAll(template, gatewayPlaceholder, gatewayName)
}

// declineMessage returns the template for a cancel tier. A cancel callback carrying 00
// has no message.
func declineMessage(tier domain.DeclineTier) string {
	switch tier {
	case domain.DeclineProcessingError:
		return MessageSomethingWrong
	case domain.DeclineInsufficientFunds:
		return MessageInsufficientFunds
	case domain.DeclineGeneric:
		return MessageDeclined
	}
	return ""
}
