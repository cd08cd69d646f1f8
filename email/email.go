package email

import (
	"fmt"
	"net/smtp"

	"inkwell/common"
)

type Mailer struct {
	host     string
	port     string
	user     string
	password string
	to       string // fixed operator address that receives contact messages
}

func NewMailer(cfg *common.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		to:       cfg.ContactEmail,
	}
}

// SendContactMessage submits one mail for a contact-form post. The envelope
// sender is the visitor's address, the recipient is the operator, and the
// body interpolates the submitted fields. Blocks until the relay session
// completes; the caller decides how to surface a failure.
func (m *Mailer) SendContactMessage(name, fromEmail, phone, message string) error {
	body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nMessage: %s\n",
		name, fromEmail, phone, message)

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Reply-To: %s\r\n"+
		"Subject: New message\r\n"+
		"\r\n"+
		"%s\r\n", fromEmail, m.to, fromEmail, body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, fromEmail, []string{m.to}, []byte(msg)); err != nil {
		return fmt.Errorf("error sending contact email: %v", err)
	}

	return nil
}
