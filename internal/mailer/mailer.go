// Package mailer sends notification email over a plain SMTP relay.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer wraps an SMTP relay.  An empty Host disables sending; Send
// then becomes a no-op so the consumer keeps draining the queue in
// environments without a relay.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func New(host, port, user, pass, from string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// Enabled reports whether a relay is configured.
func (m *Mailer) Enabled() bool { return m.Host != "" }

// Send delivers one plain-text message to the given recipients.
func (m *Mailer) Send(to []string, subject, body string) error {
	if !m.Enabled() || len(to) == 0 {
		return nil
	}
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	return smtp.SendMail(addr, auth, m.From, to, []byte(msg))
}
