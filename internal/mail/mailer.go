package mail

import (
	"fmt"
	"net/smtp"

	"marketplace-service/pkg/config"
)

// Welcome mail sent after registration
const (
	welcomeSubject = "Registration Successful!"
	welcomeBody    = "Welcome to RareCraft. Thank you for registering with us."
)

// Mailer delivers transactional mail. Delivery failures are reported
// but registration never fails on them.
type Mailer interface {
	SendWelcome(to string) error
}

// SMTPMailer sends through a plain SMTP relay
type SMTPMailer struct {
	host     string
	port     string
	from     string
	password string
}

// NewSMTPMailer builds a mailer from configuration. Returns nil when
// no SMTP host is configured; callers treat a nil Mailer as disabled.
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

// SendWelcome delivers the registration mail
func (m *SMTPMailer) SendWelcome(to string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, welcomeSubject, welcomeBody)
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg))
}

var _ Mailer = (*SMTPMailer)(nil)
