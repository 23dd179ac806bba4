package services

import (
	"fmt"
	"net/smtp"
	"net/textproto"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

// Mailer sends transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendInvitation(toEmail, inviterName, groupName, inviteURL string) error
}

type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

func NewSMTPMailer(host string, port int, username, password, sender string) Mailer {
	return &smtpMailer{host: host, port: port, username: username, password: password, sender: sender}
}

func (m *smtpMailer) SendInvitation(toEmail, inviterName, groupName, inviteURL string) error {
	e := &email.Email{
		From:    fmt.Sprintf("TripMate <%s>", m.sender),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s invited you to join %q on TripMate", inviterName, groupName),
		Text: []byte(fmt.Sprintf(
			"%s invited you to plan a trip together in %q.\n\nAccept the invitation:\n%s\n\nIf you were not expecting this email you can ignore it.",
			inviterName, groupName, inviteURL)),
		HTML: []byte(fmt.Sprintf(
			`<p><strong>%s</strong> invited you to plan a trip together in <strong>%s</strong>.</p>
<p><a href="%s">Accept the invitation</a></p>
<p style="color:#888">If you were not expecting this email you can ignore it.</p>`,
			inviterName, groupName, inviteURL)),
		Headers: textproto.MIMEHeader{},
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("sending invitation email: %w", err)
	}
	return nil
}

// noopMailer stands in when SMTP is not configured, so local development
// works without a mail server.
type noopMailer struct{}

func NewNoopMailer() Mailer {
	return noopMailer{}
}

func (noopMailer) SendInvitation(toEmail, inviterName, groupName, inviteURL string) error {
	zap.L().Info("Mail disabled, skipping invitation email",
		zap.String("to", toEmail),
		zap.String("group", groupName))
	return nil
}
