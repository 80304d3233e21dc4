package services

import (
	"fmt"
	"net/url"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email string) error
	SendOTPEmail(email, code string, ttlMinutes int) error
	SendPasswordResetEmail(email, link string, ttlMinutes int) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email string) error {
	body := `
		<h2>Welcome to SkinMuse!</h2>
		<p>Your account has been successfully created.</p>
		<p>Best regards,<br>The SkinMuse Team</p>
	`
	if err := s.send(email, "Welcome to SkinMuse!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendOTPEmail(email, code string, ttlMinutes int) error {
	body := fmt.Sprintf(`
		<h3>Your Login Verification Code</h3>
		<p>Your OTP is <strong>%s</strong>. It will expire in %d minutes.</p>
		<p>If you did not try to log in, please change your password.</p>
	`, code, ttlMinutes)
	if err := s.send(email, "Your Login Verification Code", body); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, link string, ttlMinutes int) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Reset your password</a>. The link expires in %d minutes.</p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, link, ttlMinutes)
	if err := s.send(email, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

// BuildResetLink: <base>?token=...&email=...
func BuildResetLink(base, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return base + "?" + q.Encode()
}
