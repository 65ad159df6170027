package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/hebamio/midwife-api/config"
	"github.com/hebamio/midwife-api/pkg/logger"
)

type Service interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
	SendBookingConfirmation(ctx context.Context, email, name, serviceCode, date, startTime string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *logger.Logger
}

func NewSMTPService(cfg config.SMTPConfig, logger *logger.Logger) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (s *smtpService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpService) SendPasswordReset(ctx context.Context, email string, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.BaseURL, token)
	body := fmt.Sprintf(`
		<p>We received a request to reset your password.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>The link expires in one hour. If you did not request this, you can ignore this email.</p>
	`, resetURL)

	if err := s.send(email, "Reset your password", body); err != nil {
		s.logger.Error(err, "failed to send password reset email", "to", email)
		return err
	}
	return nil
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, email, name, serviceCode, date, startTime string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your booking for service %s on %s at %s has been received.</p>
		<p>Your midwife will confirm the appointment shortly.</p>
	`, name, serviceCode, date, startTime)

	if err := s.send(email, "Booking received", body); err != nil {
		s.logger.Error(err, "failed to send booking confirmation", "to", email)
		return err
	}
	return nil
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(to, subject, content)
}
