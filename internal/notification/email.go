package notification

import (
	"fmt"
	"net/smtp"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	FromName   string
	AppBaseURL string
}

// EmailService delivers verification links and two-factor codes over SMTP.
// Delivery failure is a soft failure for the login flow; callers dispatch
// and log, they do not wait.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service.
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SendVerificationEmail mails the confirmation link for a freshly issued
// verification token.
func (s *EmailService) SendVerificationEmail(to, token string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s", s.config.AppBaseURL, token)
	subject := "Confirm your email"
	body := fmt.Sprintf(`<html><body>
		<h2>Confirm your email</h2>
		<p>To finish signing in, please confirm your email address.</p>
		<p><a href="%s">Click here to confirm your email</a></p>
		<p>Or copy this link to your browser: %s</p>
		<p>This link will expire in 1 hour.</p>
	</body></html>`, verifyURL, verifyURL)
	return s.sendEmail(to, subject, body)
}

// SendTwoFactorEmail mails a one-time login code.
func (s *EmailService) SendTwoFactorEmail(to, code string) error {
	subject := "Your login code"
	body := fmt.Sprintf(`<html><body>
		<h2>Your login code</h2>
		<p>Your two-factor code is: <strong>%s</strong></p>
		<p>It expires in a few minutes. If you did not try to sign in, you can ignore this email.</p>
	</body></html>`, code)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
