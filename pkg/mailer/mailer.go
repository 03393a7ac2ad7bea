package mailer

import (
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"os"
	"strings"
)

// Mailer sends plain text mail. Wrapped in an interface so engine tests can
// swap in a fake and side-effect failures stay observable.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPMailer builds a Mailer from SMTP_* environment variables. Returns an
// error when the transport is not configured; callers may treat that as
// "email disabled" and keep going.
func NewSMTPMailer() (Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return nil, fmt.Errorf("smtp not configured")
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	fromName := os.Getenv("SMTP_FROM_NAME")
	if fromName == "" {
		fromName = "SalonStreak"
	}

	return &smtpMailer{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
		fromName: fromName,
	}, nil
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.host, m.port)

	headers := []string{
		fmt.Sprintf("From: %s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}

	var msg strings.Builder
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String()))
}
