package mailer

import (
	"context"
	"fmt"

	"tangle_backend/internal/common"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Config holds the outbound relay settings. They come from the environment at
// startup.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c Config) configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// SMTPMailer sends mail with one file attachment through an authenticated relay.
// Port 465 uses implicit TLS; other ports upgrade with STARTTLS.
type SMTPMailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	m := &SMTPMailer{cfg: cfg}
	if cfg.configured() {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body, attachmentPath string) error {
	if m.dialer == nil {
		return fmt.Errorf("mailer: relay not configured: %w", common.ErrServiceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := BuildMessage(m.cfg.From, to, subject, body, attachmentPath)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("report email sent")
	return nil
}

func BuildMessage(from, to, subject, body, attachmentPath string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if attachmentPath != "" {
		msg.Attach(attachmentPath)
	}
	return msg
}
