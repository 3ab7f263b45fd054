package notify

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/openmall/openmall/config"
	"github.com/openmall/openmall/internal/domain"
)

// Mailer sends transactional mail off the request path through a small
// goroutine pool. When SMTP is disabled every send is a no-op.
type Mailer struct {
	cfg    config.SmtpConfig
	dialer *gomail.Dialer
	pool   *ants.Pool
}

func NewMailer(cfg config.SmtpConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if !cfg.Enable {
		return m
	}

	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	pool, err := ants.NewPool(4, ants.WithNonblocking(true))
	if err != nil {
		zap.L().Error("failed to create mail pool", zap.Error(err))
		return m
	}
	m.pool = pool
	return m
}

// SendOrderConfirmation dispatches an order confirmation to the given
// address. Errors are logged, never surfaced to the checkout path.
func (m *Mailer) SendOrderConfirmation(to, subject string, order *domain.Order) {
	if m == nil || m.pool == nil || m.dialer == nil || to == "" {
		return
	}

	ref := order.OrderRef
	total := order.Total.StringFixed(2)
	err := m.pool.Submit(func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", fmt.Sprintf(
			"Thank you for your order.\n\nOrder reference: %s\nOrder total: %s\n", ref, total))

		if err := m.dialer.DialAndSend(msg); err != nil {
			zap.L().Error("order confirmation mail failed",
				zap.String("to", to),
				zap.String("order_ref", ref),
				zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail pool saturated, confirmation dropped", zap.String("order_ref", ref))
	}
}

// Release stops the worker pool.
func (m *Mailer) Release() {
	if m != nil && m.pool != nil {
		m.pool.Release()
	}
}
