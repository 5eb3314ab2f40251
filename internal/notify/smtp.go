package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"cafeprep/internal/core"
)

// Port 465 speaks TLS from the first byte; other ports use STARTTLS when
// the server offers it.
const implicitTLSPort = 465

var ErrNoRecipients = errors.New("no recipients configured")

type SMTPConfig struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Receivers []string
}

// SMTPNotifier sends the composed message as a plain-text email.
type SMTPNotifier struct {
	cfg    SMTPConfig
	addr   string
	auth   smtp.Auth
	logger *slog.Logger
	send   func(e *email.Email) error
}

func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = implicitTLSPort
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &SMTPNotifier{
		cfg:    cfg,
		addr:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth:   smtp.PlainAuth("", cfg.Sender, cfg.Password, cfg.Host),
		logger: logger.With("component", "notify", "notifier", "smtp", "host", cfg.Host),
	}
	n.send = n.deliver
	return n
}

func (n *SMTPNotifier) deliver(e *email.Email) error {
	if n.cfg.Port == implicitTLSPort {
		return e.SendWithTLS(n.addr, n.auth, &tls.Config{ServerName: n.cfg.Host})
	}
	return e.Send(n.addr, n.auth)
}

func (n *SMTPNotifier) Notify(ctx context.Context, entry core.Entry, daily []core.ItemTotals) error {
	if len(n.cfg.Receivers) == 0 {
		return fmt.Errorf("%w: smtp: %w", core.ErrNotify, ErrNoRecipients)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: smtp: %w", core.ErrNotify, err)
	}

	msg := Compose(entry, daily)
	e := email.NewEmail()
	e.From = n.cfg.Sender
	e.To = append([]string(nil), n.cfg.Receivers...)
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	if err := n.send(e); err != nil {
		n.logger.ErrorContext(ctx, "Email failed to send", "subject", msg.Subject, "error", err)
		return fmt.Errorf("%w: smtp: %w", core.ErrNotify, err)
	}
	n.logger.InfoContext(ctx, "Email sent", "subject", msg.Subject, "recipients", len(e.To))
	return nil
}
