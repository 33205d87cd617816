package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPConfig wires an SMTP relay plus the two link bases. APIBaseURL is
// where the verification endpoint lives; ClientBaseURL is the front-end
// that renders the reset form.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	APIBaseURL    string
	ClientBaseURL string

	// Subject prefix, e.g. "[zetsy]". Optional.
	SubjectPrefix string
}

// SMTP delivers account mail over gomail. Each send dials a fresh
// connection, which suits the low volume of auth mail.
type SMTP struct {
	cfg SMTPConfig
}

// NewSMTP validates cfg and returns a ready notifier.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("notify: smtp host and port are required")
	}
	if cfg.From == "" {
		return nil, errors.New("notify: from address is required")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.ClientBaseURL = strings.TrimRight(cfg.ClientBaseURL, "/")

	return &SMTP{cfg: cfg}, nil
}

func (n *SMTP) SendVerificationLink(_ context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", n.cfg.APIBaseURL, token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Verify your account</h2>
    <p>Thank you for registering. Click the link below to verify your account:</p>
    <p><a href="%s" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; display: inline-block;">Verify Account</a></p>
    <p style="font-size: 12px; color: #6b7280;">The link is valid for 24 hours. If you did not register, ignore this mail.</p>
  </div>
</body>
</html>`, link)

	return n.send(email, "Verify your account", body)
}

func (n *SMTP) SendResetLink(_ context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", n.cfg.ClientBaseURL, token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>A password reset was requested for this address. Open the link below to choose a new password:</p>
    <p><a href="%s">%s</a></p>
    <p style="font-size: 12px; color: #6b7280;">The link expires in 1 hour. If you did not request a reset, ignore this mail and your password stays unchanged.</p>
  </div>
</body>
</html>`, link, link)

	return n.send(email, "Reset your password", body)
}

func (n *SMTP) send(to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("notify: empty recipient")
	}
	if n.cfg.SubjectPrefix != "" {
		subject = n.cfg.SubjectPrefix + " " + subject
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}

	return nil
}
