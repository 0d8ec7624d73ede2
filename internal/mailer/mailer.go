// Package mailer delivers transactional email. Send failures never unwind
// the operation that triggered them; callers log and carry on.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends a single message with an HTML and a plain-text body.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTP delivers mail over a configured SMTP relay. An empty host disables
// delivery: messages are logged and dropped, like an unconfigured notifier.
type SMTP struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTP constructs an SMTP mailer.
func NewSMTP(host, port, username, password, from string) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers the message as multipart/alternative.
func (m *SMTP) Send(to, subject, htmlBody, textBody string) error {
	if m.host == "" {
		log.Printf("[Mailer] SMTP host not configured, dropping mail to %s (%q)", to, subject)
		return nil
	}

	const boundary = "campsbay-alt-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String())); err != nil {
		log.Printf("[Mailer] Failed to send mail to %s: %v", to, err)
		return err
	}

	return nil
}
