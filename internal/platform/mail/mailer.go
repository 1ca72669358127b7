package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
)

const resetEmailSubject = "Reset your ResumeForge password"

var resetEmailTemplate = template.Must(template.New("reset").Parse(`<p>Please click on the link below to reset your password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request a password reset, you can safely ignore this email.</p>`))

// SMTPMailer sends transactional email over SMTP with STARTTLS.
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	from      string
	fromName  string
	publicURL string
}

// NewSMTPMailer creates a mailer from application configuration.
func NewSMTPMailer(cfg *config.Config) portssvc.MailSenderSvcFacade {
	return &SMTPMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		from:      cfg.MailFrom,
		fromName:  cfg.MailFromName,
		publicURL: cfg.PublicURL,
	}
}

var _ portssvc.MailSenderSvcFacade = (*SMTPMailer)(nil)

// SendPasswordResetEmail sends the reset link embedding the given token.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to string, resetToken string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	link := fmt.Sprintf("%s/auth/reset-password?token=%s", m.publicURL, url.QueryEscape(resetToken))

	var body bytes.Buffer
	if err := resetEmailTemplate.Execute(&body, map[string]string{"Link": link}); err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}

	fromHeader := fmt.Sprintf("%s <%s>", m.fromName, m.from)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", resetEmailSubject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")

	return m.send(ctx, to, []byte(msg))
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	dialer := &net.Dialer{Timeout: 8 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	// Deadline covers the whole SMTP conversation.
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	return w.Close()
}
