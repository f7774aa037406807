// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers emails. Implementations must be safe for concurrent use.
type Sender interface {
	Send(email Email) error
}

// SMTPSender sends mail through a plain SMTP relay (Mailpit in dev, SES or
// similar in production).
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	log      *zap.Logger
}

// NewSMTPSender builds a sender for the given relay. user/pass may be empty
// for unauthenticated relays.
func NewSMTPSender(host string, port int, user, pass, from, fromName string, logger *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", host, port),
		auth:     auth,
		from:     from,
		fromName: fromName,
		log:      logger,
	}
}

// Send delivers one email. Multipart (text + HTML) when both bodies are set.
func (s *SMTPSender) Send(email Email) error {
	var msg strings.Builder
	boundary := "boundary-counselhub-mail"

	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case email.HTMLBody != "" && email.TextBody != "":
		fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, email.TextBody)
		fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, email.HTMLBody)
		fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	case email.HTMLBody != "":
		msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		msg.WriteString(email.HTMLBody)
	default:
		msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		msg.WriteString(email.TextBody)
	}

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{email.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	s.log.Debug("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
	return nil
}
