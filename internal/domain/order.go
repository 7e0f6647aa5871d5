package domain

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// CurrencyRSD is the numeric ISO 4217 code the processor expects (Serbian dinar)
const CurrencyRSD = "941"

// OrderRef is an immutable snapshot of the order taken when the redirect is built.
// It carries no JSON tags: decimal.Decimal drops trailing zeros when marshalled, so
// adapters persist it through their own DTOs using FormattedTotal.
type OrderRef struct {
	ID        string
	Total     decimal.Decimal
	Currency  string
	ReturnURL string
	CancelURL string

	// Used only for the payment report email
	CustomerEmail         string
	CustomerLangcode      string
	CustomerAuthenticated bool
}

// FormattedTotal renders the total with a '.' decimal point, no grouping, and as many
// fractional digits as the stored amount carries ("10.00" stays "10.00").
func (o OrderRef) FormattedTotal() string {
	return FormatAmount(o.Total)
}

// FormatAmount renders an exact decimal without losing trailing zeros
func FormatAmount(amount decimal.Decimal) string {
	if exp := amount.Exponent(); exp < 0 {
		return amount.StringFixed(-exp)
	}
	return amount.String()
}

// Validate checks what BuildOutbound and Classify need from the order
func (o OrderRef) Validate() error {
	if o.ID == "" {
		return NewDomainError(ErrorCodeOrderInvalid, "order ID is required")
	}
	if !o.Total.IsPositive() {
		return NewDomainError(ErrorCodeOrderInvalid, "order total must be positive").
			WithDetail("total", o.Total.String())
	}
	for name, raw := range map[string]string{"return_url": o.ReturnURL, "cancel_url": o.CancelURL} {
		if u, err := url.ParseRequestURI(raw); err != nil || u.Host == "" {
			return NewDomainError(ErrorCodeOrderInvalid, name+" must be an absolute URL").
				WithDetail(name, raw)
		}
	}
	return nil
}
