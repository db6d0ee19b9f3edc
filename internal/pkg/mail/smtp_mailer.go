package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

// Mailer sends emails via SMTP.
type Mailer struct {
	cfg config.SMTP
}

func NewMailer(cfg config.SMTP) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to string, subject string, body string) error {
	sender := m.cfg.Sender
	if sender == "" {
		sender = "no-reply@localhost"
		log.Warnf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("SMTP send error: %v", err)
	} else {
		log.Infof("Email sent to %s via %s", to, addr)
	}
	return err
}
