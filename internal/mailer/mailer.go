// Package mailer sends transactional email (currently the welcome note for
// new members) over SMTP. In development point it at a sandbox such as Mailtrap.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"

	"wheelsup-backend-go/internal/models"
)

// Config holds SMTP settings.
type Config struct {
	Host   string
	Port   string
	User   string
	Pass   string
	Sender string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through one SMTP relay.
type SMTPMailer struct {
	cfg  Config
	send sendFunc
}

// New validates cfg and returns a mailer.
func New(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, errors.New("SMTP host and port must be provided")
	}
	if cfg.User == "" || cfg.Pass == "" {
		return nil, errors.New("SMTP username and password must be provided")
	}
	if cfg.Sender == "" {
		return nil, errors.New("sender email address cannot be empty")
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}, nil
}

// buildMessage renders RFC 5322 headers and body. HTML is detected from <html> or <p>.
func buildMessage(recipient, sender, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))
}

// SendEmail delivers one message.
func (m *SMTPMailer) SendEmail(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.Sender, []string{recipient}, buildMessage(recipient, m.cfg.Sender, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var welcomeBody = template.Must(template.New("welcome").Parse(`<html><p>Hi {{.Name}},</p>` +
	`<p>Welcome to WheelsUp! Verify your phone number from your profile so drivers and passengers can reach you.</p>` +
	`<p>See you on the road.</p></html>`))

// SendWelcome greets a member whose profile was just created.
func (m *SMTPMailer) SendWelcome(ctx context.Context, user models.User) error {
	if user.Email == "" {
		return nil
	}
	// Display names come from the identity provider; the template escapes them.
	var body strings.Builder
	if err := welcomeBody.Execute(&body, user); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return m.SendEmail(ctx, user.Email, "Welcome to WheelsUp", body.String())
}
