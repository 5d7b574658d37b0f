package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSettings is the resolved server configuration for one send. The
// worker fills it from tenant settings or the process-level fallback.
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.FromEmail != ""
}

// Message is one rendered email ready for delivery.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(smtp SMTPSettings, msg Message) error
}

// GomailSender sends over SMTP with STARTTLS when the server offers it.
type GomailSender struct{}

func NewGomailSender() *GomailSender {
	return &GomailSender{}
}

func (s *GomailSender) Send(smtp SMTPSettings, msg Message) error {
	if !smtp.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", smtp.FromEmail, smtp.FromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", PlainText(msg.HTMLBody))
	m.AddAlternative("text/html", msg.HTMLBody)

	port := smtp.Port
	if port == 0 {
		port = 587
	}
	d := gomail.NewDialer(smtp.Host, port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
