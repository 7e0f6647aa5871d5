package intesa

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"go.uber.org/zap"
)

// Constant outbound field values for the 3D Pay Hosting model
const (
	TransactionTypePreAuth = "PreAuth"
	StoreType3DPayHosting  = "3d_pay_hosting"
	LanguageSerbian        = "sr"
	EncodingUTF8           = "utf-8"
	HashAlgorithmVer2      = "ver2"
)

// Outbound field names, in the order they are posted
const (
	FieldCurrency      = "currency"
	FieldTranType      = "trantype"
	FieldOkURL         = "okUrl"
	FieldFailURL       = "failUrl"
	FieldAmount        = "amount"
	FieldOrderID       = "oid"
	FieldClientID      = "clientid"
	FieldStoreType     = "storetype"
	FieldLang          = "lang"
	FieldRnd           = "rnd"
	FieldEncoding      = "encoding"
	FieldShopURL       = "shopurl"
	FieldHashAlgorithm = "hashAlgorithm"
	FieldHash          = "hash"
)

// NonceSource produces the rnd token bound into each outbound hash
type NonceSource func() string

// RandomNonce returns 32 lowercase hex characters from crypto/rand
func RandomNonce() string {
	b := make([]byte, 16)
	// crypto/rand.Read never returns an error since Go 1.24
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Option configures a Gateway
type Option func(*gateway)

// WithNonceSource replaces the random nonce generator
func WithNonceSource(source NonceSource) Option {
	return func(g *gateway) {
		g.nonce = source
	}
}

// gateway implements the OffsiteGateway port for Banca Intesa
type gateway struct {
	config domain.GatewayConfig
	logger *zap.Logger
	nonce  NonceSource
}

// NewGateway creates a Banca Intesa gateway. The config is copied and validated once;
// hashing relies on a merchant ID and store key being present.
func NewGateway(config domain.GatewayConfig, logger *zap.Logger, opts ...Option) (ports.OffsiteGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("intesa gateway: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &gateway{
		config: config,
		logger: logger,
		nonce:  RandomNonce,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// RedirectURL returns the processor endpoint for the configured mode
func (g *gateway) RedirectURL() string {
	return g.config.RedirectURL()
}

// BuildOutbound signs order and returns the fields for the auto-submitting form
func (g *gateway) BuildOutbound(order domain.OrderRef) domain.OutboundFields {
	fields := BuildOutbound(g.config, order, g.nonce())

	if g.config.APILogging.Request {
		g.logger.Debug("Intesa outbound request",
			zap.String("order_id", order.ID),
			zap.String("amount", fields.Get(FieldAmount)),
			zap.String("rnd", fields.Get(FieldRnd)),
			zap.String("hash_fingerprint", fingerprint(fields.Get(FieldHash))),
			zap.String("redirect_url", g.RedirectURL()),
		)
	}
	return fields
}

// Classify evaluates a success callback against order
func (g *gateway) Classify(order domain.OrderRef, inbound domain.InboundFields) domain.CallbackOutcome {
	g.logResponse(order.ID, inbound)

	outcome := Classify(g.config, order, inbound)
	if !outcome.Accepted() {
		g.logger.Warn("Intesa callback rejected",
			zap.String("order_id", order.ID),
			zap.String("reason", string(outcome.Reason)),
			zap.String("proc_return_code", outcome.ReturnCode),
		)
	}
	return outcome
}

// ClassifyDecline maps a cancel callback to a decline tier
func (g *gateway) ClassifyDecline(inbound domain.InboundFields) domain.Decline {
	g.logResponse(inbound.Get(InboundReturnOid), inbound)
	return ClassifyDecline(inbound)
}

// ExtractReport projects the callback into display rows
func (g *gateway) ExtractReport(inbound domain.InboundFields) domain.PaymentReport {
	return ExtractReport(inbound)
}

func (g *gateway) logResponse(orderID string, inbound domain.InboundFields) {
	if !g.config.APILogging.Response {
		return
	}
	fields := make([]zap.Field, 0, len(inbound)+1)
	fields = append(fields, zap.String("order_id", orderID))
	for key, value := range inbound {
		if key == InboundHash {
			value = fingerprint(value)
		}
		fields = append(fields, zap.String(key, value))
	}
	g.logger.Debug("Intesa callback response", fields...)
}

// BuildOutbound assembles and signs the outbound fields using rnd as the nonce.
// Values are posted as given; escaping only applies to the hash input.
func BuildOutbound(config domain.GatewayConfig, order domain.OrderRef, rnd string) domain.OutboundFields {
	amount := order.FormattedTotal()
	hash := ComputeHash(OutboundHashValues(config.MerchantID, order, amount, rnd), config.StoreKey)

	return domain.OutboundFields{
		{Name: FieldCurrency, Value: domain.CurrencyRSD},
		{Name: FieldTranType, Value: TransactionTypePreAuth},
		{Name: FieldOkURL, Value: order.ReturnURL},
		{Name: FieldFailURL, Value: order.CancelURL},
		{Name: FieldAmount, Value: amount},
		{Name: FieldOrderID, Value: order.ID},
		{Name: FieldClientID, Value: config.MerchantID},
		{Name: FieldStoreType, Value: StoreType3DPayHosting},
		{Name: FieldLang, Value: LanguageSerbian},
		{Name: FieldRnd, Value: rnd},
		{Name: FieldEncoding, Value: EncodingUTF8},
		{Name: FieldShopURL, Value: config.ShopURL},
		{Name: FieldHashAlgorithm, Value: HashAlgorithmVer2},
		{Name: FieldHash, Value: hash},
	}
}

// OutboundHashValues returns the hash input in processor order. The empty strings hold the
// positions of optional processor fields (installment, callback URL and similar) that are
// never sent but still count in the hash.
func OutboundHashValues(merchantID string, order domain.OrderRef, amount, rnd string) []string {
	return []string{
		merchantID,
		order.ID,
		amount,
		order.ReturnURL,
		order.CancelURL,
		TransactionTypePreAuth,
		"",
		"",
		rnd,
		"",
		"",
		"",
		"",
		domain.CurrencyRSD,
	}
}
