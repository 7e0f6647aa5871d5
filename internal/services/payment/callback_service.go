package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/kevin07696/intesa-checkout/pkg/observability"
	"github.com/kevin07696/intesa-checkout/pkg/timeutil"
)

// Callback paths used as metric labels
const (
	PathReturn = "return"
	PathCancel = "cancel"
)

// CallbackResult is what the HTTP layer needs to render a callback page
type CallbackResult struct {
	OrderID string
	// Accepted is true only for a verified, approved success callback
	Accepted bool
	// Message is the buyer-facing text with the gateway name filled in
	Message string
	// Report is set only when the config asks for the report table on this outcome
	Report    domain.PaymentReport
	Outcome   domain.CallbackOutcome
	Decline   domain.Decline
	PaymentID string
	// AlreadyRecorded marks a replayed success callback whose payment was stored earlier
	AlreadyRecorded bool
	// ContinueURL links the buyer back to the shop; empty when none is configured
	ContinueURL string
}

// CallbackService handles the processor's return and cancel callbacks
type CallbackService struct {
	config   domain.GatewayConfig
	gateway  ports.OffsiteGateway
	orders   ports.OrderProvider
	ledger   ports.PaymentLedger
	notifier ports.Notifier
	logger   *zap.Logger
	newID    func() string
	now      func() time.Time
}

// NewCallbackService creates a new callback service. notifier may be nil when mail is disabled.
func NewCallbackService(
	config domain.GatewayConfig,
	gateway ports.OffsiteGateway,
	orders ports.OrderProvider,
	ledger ports.PaymentLedger,
	notifier ports.Notifier,
	logger *zap.Logger,
) *CallbackService {
	return &CallbackService{
		config:   config,
		gateway:  gateway,
		orders:   orders,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		newID:    uuid.NewString,
		now:      timeutil.Now,
	}
}

// HandleReturn classifies a success callback. An accepted callback is recorded in the
// ledger before anything else; if that fails the error is returned and no mail is sent.
// A replayed callback renders the success page again without a second mail.
// A rejected callback is not an error: the result carries the reason and the failure message.
func (s *CallbackService) HandleReturn(ctx context.Context, orderID string, inbound domain.InboundFields) (*CallbackResult, error) {
	start := time.Now()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	outcome := s.gateway.Classify(order, inbound)
	result := &CallbackResult{OrderID: order.ID, Outcome: outcome, ContinueURL: s.config.ShopURL}

	if !outcome.Accepted() {
		s.logger.Warn("Callback rejected",
			zap.String("order_id", order.ID),
			zap.String("reason", string(outcome.Reason)),
			zap.String("return_code", outcome.ReturnCode),
			zap.Error(domain.RejectionError(outcome)),
		)
		result.Message = formatMessage(MessageSomethingWrong, s.config.GatewayName())
		s.report(ctx, order, result, inbound, s.config.SendMail.Fail, s.config.ShowReport.Fail)
		observability.RecordCallback(PathReturn, string(outcome.Status), string(outcome.Reason), time.Since(start).Seconds())
		return result, nil
	}

	payment, err := domain.NewPaymentFromOutcome(s.newID(), order, outcome, s.now())
	if err != nil {
		return nil, err
	}
	recorded, err := s.ledger.RecordPayment(ctx, payment)
	if err != nil {
		observability.RecordCallback(PathReturn, "ledger_error", "", time.Since(start).Seconds())
		return nil, fmt.Errorf("record payment for order %s: %w", order.ID, err)
	}

	result.Accepted = true
	result.Message = formatMessage(MessageCompleted, s.config.GatewayName())

	if !recorded {
		s.logger.Info("Payment already recorded, not notifying again",
			zap.String("order_id", order.ID),
			zap.String("remote_id", payment.RemoteID),
		)
		result.AlreadyRecorded = true
		s.report(ctx, order, result, inbound, false, s.config.ShowReport.Success)
		observability.RecordCallback(PathReturn, string(outcome.Status), "duplicate", time.Since(start).Seconds())
		return result, nil
	}

	s.logger.Info("Payment completed",
		zap.String("order_id", order.ID),
		zap.String("payment_id", payment.ID),
		zap.String("remote_id", payment.RemoteID),
	)

	result.PaymentID = payment.ID
	s.report(ctx, order, result, inbound, s.config.SendMail.Success, s.config.ShowReport.Success)
	observability.RecordCallback(PathReturn, string(outcome.Status), "", time.Since(start).Seconds())
	return result, nil
}

// HandleCancel classifies a cancel callback into a decline tier. Nothing is recorded.
func (s *CallbackService) HandleCancel(ctx context.Context, orderID string, inbound domain.InboundFields) (*CallbackResult, error) {
	start := time.Now()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	decline := s.gateway.ClassifyDecline(inbound)
	result := &CallbackResult{
		OrderID:     order.ID,
		Decline:     decline,
		Message:     formatMessage(declineMessage(decline.Tier), s.config.GatewayName()),
		ContinueURL: s.config.ShopURL,
	}

	s.logger.Info("Payment cancelled",
		zap.String("order_id", order.ID),
		zap.String("tier", string(decline.Tier)),
		zap.String("return_code", decline.ReturnCode),
	)

	s.report(ctx, order, result, inbound, s.config.SendMail.Fail, s.config.ShowReport.Fail)
	observability.RecordDeclineTier(string(decline.Tier))
	observability.RecordCallback(PathCancel, "declined", string(decline.Tier), time.Since(start).Seconds())
	return result, nil
}

// report attaches the report table and sends mail as the flags ask.
// Mail failures are logged and never change the callback result.
func (s *CallbackService) report(ctx context.Context, order domain.OrderRef, result *CallbackResult, inbound domain.InboundFields, sendMail, showReport bool) {
	if !sendMail && !showReport {
		return
	}

	report := s.gateway.ExtractReport(inbound)
	if showReport {
		result.Report = report
	}
	if !sendMail {
		return
	}
	if s.notifier == nil {
		s.logger.Warn("Mail requested but no notifier is configured", zap.String("order_id", order.ID))
		return
	}
	if err := s.notifier.Notify(ctx, order, result.Message, report); err != nil {
		s.logger.Error("Failed to send payment report",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
