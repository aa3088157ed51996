package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	appnotification "github.com/hotel/backoffice/internal/application/notification"
	"github.com/hotel/backoffice/internal/infrastructure/config"
)

// SMTPMailer delivers receipt emails over plain SMTP with optional
// AUTH. Delivery runs post-commit from the outbox processor, so a
// slow or failing relay never blocks a payment write.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer creates the mailer
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger.Named("mailer")}
}

// Send delivers one message
func (m *SMTPMailer) Send(ctx context.Context, msg appnotification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := append(append([]string{}, msg.To...), msg.CC...)
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, recipients, m.compose(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.logger.Debug("mail delivered",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) compose(msg appnotification.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

var _ appnotification.Mailer = (*SMTPMailer)(nil)
