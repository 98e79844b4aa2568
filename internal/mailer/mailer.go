package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/config"
)

// Mailer sends transactional email over SMTP. When no SMTP host is
// configured (local dev) messages are logged instead of sent.
type Mailer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendVerification(to, name, token string) error {
	link := m.cfg.FrontendURL + "/verify-email?token=" + token
	subject := "Verify your Groovetree email"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nConfirm your email address by opening the link below:\r\n\r\n%s\r\n\r\nThe link expires in 24 hours. If you did not sign up, ignore this message.\r\n",
		name, link)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		log.Info().Str("to", to).Str("subject", subject).Msg("SMTP not configured, skipping email send")
		return nil
	}

	msg := []byte("From: " + m.cfg.SMTPFrom + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var a smtp.Auth
	if m.cfg.SMTPUser != "" {
		a = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, a, m.cfg.SMTPFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
