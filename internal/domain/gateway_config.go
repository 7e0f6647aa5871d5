package domain

import (
	"fmt"
)

// Mode selects which processor endpoint receives the redirect
type Mode string

const (
	ModeLive Mode = "live"
	ModeTest Mode = "test"
)

const (
	// DefaultTestRedirectURL is the processor's sandbox 3-D gate
	DefaultTestRedirectURL = "https://testsecurepay.eway2pay.com/fim/est3Dgate"
	// DefaultLiveRedirectURL is the processor's production 3-D gate
	DefaultLiveRedirectURL = "https://bib.eway2pay.com/fim/est3Dgate"
)

// OnOutcome holds a pair of switches keyed by payment result
type OnOutcome struct {
	Success bool
	Fail    bool
}

// APILogging controls debug logging of processor payloads
type APILogging struct {
	Request  bool
	Response bool
}

// GatewayConfig is the merchant's gateway configuration, loaded once per transaction
// from the configuration store and treated as read-only afterwards.
//
// StoreKey is the shared secret. It must never be logged or sent to the processor.
type GatewayConfig struct {
	MerchantID      string
	StoreKey        string
	Mode            Mode
	LiveRedirectURL string
	TestRedirectURL string
	ShopURL         string

	// Gateway naming for user-facing messages
	Label          string
	DisplayLabel   string
	UseDisplayName bool

	SendMail   OnOutcome
	ShowReport OnOutcome
	APILogging APILogging
}

// Validate checks the preconditions every hash computation relies on
func (c *GatewayConfig) Validate() error {
	if c.MerchantID == "" {
		return NewDomainError(ErrorCodeConfigInvalid, "merchant ID is required")
	}
	if c.StoreKey == "" {
		return NewDomainError(ErrorCodeConfigInvalid, "store key is required")
	}
	switch c.Mode {
	case ModeLive, ModeTest:
	default:
		return NewDomainError(ErrorCodeConfigInvalid, fmt.Sprintf("unknown mode %q", c.Mode)).
			WithDetail("mode", string(c.Mode))
	}
	return nil
}

// RedirectURL returns the processor endpoint for the configured mode.
// Anything other than live goes to the test endpoint.
func (c *GatewayConfig) RedirectURL() string {
	if c.Mode == ModeLive {
		return c.LiveRedirectURL
	}
	return c.TestRedirectURL
}

// GatewayName is the name shown to buyers in payment messages
func (c *GatewayConfig) GatewayName() string {
	if c.UseDisplayName && c.DisplayLabel != "" {
		return c.DisplayLabel
	}
	return c.Label
}

// String redacts the store key so the config is safe to pass to a logger
func (c GatewayConfig) String() string {
	return fmt.Sprintf("GatewayConfig{MerchantID:%s Mode:%s StoreKey:[REDACTED]}", c.MerchantID, c.Mode)
}
