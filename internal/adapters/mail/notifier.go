package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/kevin07696/intesa-checkout/pkg/encoding"
	"github.com/kevin07696/intesa-checkout/pkg/resilience"
	"go.uber.org/zap"
)

// Config holds SMTP connection settings and the store's sender address
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var reportTemplate = template.Must(template.New("payment_report").Parse(`<html>
<body>
<p>{{.Message}}</p>
<table>
{{range .Report}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// Notifier emails the payment report to the customer
type Notifier struct {
	config   Config
	send     SendFunc
	logger   *zap.Logger
	attempts int
	backoff  resilience.BackoffStrategy
}

// Option configures a Notifier
type Option func(*Notifier)

// WithRetry sets how many times a failed send is attempted and the delay between attempts
func WithRetry(attempts int, backoff resilience.BackoffStrategy) Option {
	return func(n *Notifier) {
		n.attempts = attempts
		n.backoff = backoff
	}
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates an SMTP notifier. A nil send uses smtp.SendMail.
func NewNotifier(config Config, send SendFunc, logger *zap.Logger, opts ...Option) *Notifier {
	if send == nil {
		send = smtp.SendMail
	}
	n := &Notifier{
		config:   config,
		send:     send,
		logger:   logger,
		attempts: 3,
		backoff:  resilience.MailBackoff(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subject returns the report email subject for orderID
func Subject(orderID string) string {
	return "Payment report for order #" + orderID
}

// Notify sends message and report from the configured store address to the customer.
// The language header is only set for authenticated customers.
func (n *Notifier) Notify(ctx context.Context, order domain.OrderRef, message string, report domain.PaymentReport) error {
	if n.config.From == "" {
		return domain.NewDomainError(domain.ErrorCodeNotifyError, "no sender address configured").
			WithDetail("order_id", order.ID)
	}
	if order.CustomerEmail == "" {
		return domain.NewDomainError(domain.ErrorCodeNotifyError, "order has no customer email").
			WithDetail("order_id", order.ID)
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrorCodeNotifyError, "notification cancelled", err)
	}

	msg, err := n.buildMessage(order, message, report)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeNotifyError, "failed to render payment report", err).
			WithDetail("order_id", order.ID)
	}

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}
	addr := net.JoinHostPort(n.config.Host, strconv.Itoa(n.config.Port))

	err = resilience.Retry(ctx, n.attempts, n.backoff, func(attempt int) error {
		sendErr := n.send(addr, auth, n.config.From, []string{order.CustomerEmail}, msg)
		if sendErr != nil && attempt < n.attempts-1 {
			n.logger.Warn("Retrying payment report",
				zap.String("order_id", order.ID),
				zap.Int("attempt", attempt+1),
				zap.Error(sendErr),
			)
		}
		return sendErr
	})
	if err != nil {
		n.logger.Error("Failed to send payment report",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return domain.WrapError(domain.ErrorCodeNotifyError, "failed to send payment report", err).
			WithDetail("order_id", order.ID)
	}

	n.logger.Info("Payment report sent",
		zap.String("order_id", order.ID),
		zap.Int("report_rows", len(report)),
	)
	return nil
}

func (n *Notifier) buildMessage(order domain.OrderRef, message string, report domain.PaymentReport) ([]byte, error) {
	body := encoding.GetBuffer()
	defer encoding.PutBuffer(body)

	if err := reportTemplate.Execute(body, struct {
		Message string
		Report  domain.PaymentReport
	}{message, report}); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	writeHeader(&msg, "From", n.config.From)
	writeHeader(&msg, "To", order.CustomerEmail)
	writeHeader(&msg, "Subject", mime.QEncoding.Encode("utf-8", Subject(order.ID)))
	if order.CustomerAuthenticated && order.CustomerLangcode != "" {
		writeHeader(&msg, "Content-Language", order.CustomerLangcode)
	}
	writeHeader(&msg, "MIME-Version", "1.0")
	writeHeader(&msg, "Content-Type", `text/html; charset="utf-8"`)
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// writeHeader drops CR and LF so values cannot inject extra headers
func writeHeader(b *bytes.Buffer, name, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	fmt.Fprintf(b, "%s: %s\r\n", name, value)
}
