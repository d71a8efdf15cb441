/*
Package mail delivers transactional email (password reset codes, contact
requests) through a plain SMTP relay.

Delivery is best-effort: the Mailer interface lets callers inject a no-op
implementation in tests and lets the server run without a configured relay.
*/
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"ecotrade/internal/pkg/logx"
)

// Mailer sends a single plain-text message to one recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds the connection settings for the outbound relay.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer returns a Mailer backed by the given relay. When no host is
// configured it returns a disabled mailer that logs instead of sending, so
// development setups work without SMTP credentials.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		logx.Warn("SMTP_HOST not configured. Outbound mail is disabled.")
		return disabledMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}

	return nil
}

type disabledMailer struct{}

func (disabledMailer) Send(to, subject, _ string) error {
	logx.Info("Mail delivery skipped (SMTP disabled).", "to", to, "subject", subject)
	return nil
}
