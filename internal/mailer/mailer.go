package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/brikomag/pricewatch/internal/config"
)

// Mailer sends report mails over SMTP. With empty credentials it talks to
// an unauthenticated local relay.
type Mailer struct {
	cfg config.SMTPConfig
}

// New constructs a Mailer from SMTP config.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a plain-text mail, attaching attachmentPath when non-empty.
// Failures propagate to the caller; the next scheduled firing is the retry.
func (m *Mailer) Send(to, subject, body, attachmentPath string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if attachmentPath != "" {
		msg.Attach(attachmentPath)
	}

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
