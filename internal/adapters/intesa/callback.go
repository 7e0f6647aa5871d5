package intesa

import (
	"crypto/hmac"
	"strings"

	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/kevin07696/intesa-checkout/pkg/timeutil"
)

// Inbound callback field names
const (
	InboundReturnOid      = "ReturnOid"
	InboundOrderID        = "oid"
	InboundClientID       = "clientid"
	InboundProcReturnCode = "ProcReturnCode"
	InboundHash           = "HASH"
	InboundHashParams     = "HASHPARAMS"
	InboundAuthCode       = "AuthCode"
	InboundResponse       = "Response"
	InboundTransID        = "TransId"
	InboundTrxDate        = "EXTRA_TRXDATE"
	InboundMDStatus       = "mdStatus"
)

// Processor return codes with dedicated handling
const (
	ReturnCodeApproved          = "00"
	ReturnCodeInsufficientFunds = "51"
	ReturnCodeProcessingError   = "99"
)

// trxDateLayouts are tried in order; the processor sends the first
var trxDateLayouts = []string{
	"20060102 15:04:05",
	"2006-01-02 15:04:05",
	"20060102150405",
}

// VerifyHash recomputes the callback hash from the fields HASHPARAMS names.
// Named fields that are missing count as empty strings. A callback without
// HASH or HASHPARAMS never verifies.
func VerifyHash(config domain.GatewayConfig, inbound domain.InboundFields) bool {
	received := inbound.Get(InboundHash)
	params := inbound.Get(InboundHashParams)
	if received == "" || params == "" {
		return false
	}

	names := strings.Split(params, "|")
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = inbound.Get(name)
	}

	expected := ComputeHash(values, config.StoreKey)
	return hmac.Equal([]byte(expected), []byte(received))
}

// Classify runs the callback checks in order and reports the first one that fails:
// order ID, client ID, signature, then the processor return code.
func Classify(config domain.GatewayConfig, order domain.OrderRef, inbound domain.InboundFields) domain.CallbackOutcome {
	returnCode := inbound.Get(InboundProcReturnCode)
	rejected := func(reason domain.RejectionReason) domain.CallbackOutcome {
		return domain.CallbackOutcome{
			Status:     domain.OutcomeRejected,
			Reason:     reason,
			ReturnCode: returnCode,
		}
	}

	if inbound.Get(InboundReturnOid) != order.ID {
		return rejected(domain.ReasonOrderMismatch)
	}
	if inbound.Get(InboundClientID) != config.MerchantID {
		return rejected(domain.ReasonClientMismatch)
	}
	if !VerifyHash(config, inbound) {
		return rejected(domain.ReasonInvalidSignature)
	}
	if returnCode != ReturnCodeApproved {
		return rejected(domain.ReasonProcessorDeclined)
	}

	trxDate := inbound.Get(InboundTrxDate)
	// An unparseable date leaves TransactionTime zero; the raw value is kept alongside
	trxTime, _ := timeutil.ParseFirst(trxDateLayouts, trxDate, timeutil.ProcessorLocation())

	return domain.CallbackOutcome{
		Status:     domain.OutcomeAccepted,
		ReturnCode: returnCode,
		Transaction: domain.AcceptedTransaction{
			TransactionID:   inbound.Get(InboundTransID),
			Response:        inbound.Get(InboundResponse),
			TransactionTime: trxTime,
			TransactionDate: trxDate,
			AuthCode:        inbound.Get(InboundAuthCode),
			MDStatus:        inbound.Get(InboundMDStatus),
			ReturnCode:      returnCode,
		},
	}
}

// ClassifyDecline maps the cancel-path return code to a message tier
func ClassifyDecline(inbound domain.InboundFields) domain.Decline {
	code := inbound.Get(InboundProcReturnCode)

	tier := domain.DeclineGeneric
	switch code {
	case ReturnCodeApproved:
		tier = domain.DeclineNone
	case ReturnCodeProcessingError:
		tier = domain.DeclineProcessingError
	case ReturnCodeInsufficientFunds:
		tier = domain.DeclineInsufficientFunds
	}
	return domain.Decline{Tier: tier, ReturnCode: code}
}

// reportFields is the fixed label order of a PaymentReport
var reportFields = []struct {
	label string
	key   string
}{
	{"Order ID", InboundOrderID},
	{"Authorization code", InboundAuthCode},
	{"Payment status", InboundResponse},
	{"Transaction status code", InboundProcReturnCode},
	{"Transaction ID", InboundTransID},
	{"Transaction date", InboundTrxDate},
	{"Status code for the 3D transaction", InboundMDStatus},
}

// ExtractReport returns exactly seven rows. Absent fields yield empty values.
func ExtractReport(inbound domain.InboundFields) domain.PaymentReport {
	report := make(domain.PaymentReport, len(reportFields))
	for i, f := range reportFields {
		report[i] = domain.ReportRow{Label: f.label, Value: inbound.Get(f.key)}
	}
	return report
}
