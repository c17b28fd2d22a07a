package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/chronicare/monitor-api/internal/config"
	"github.com/chronicare/monitor-api/pkg/logger"
)

// Service sends account mail. Clinical notification delivery is out of
// scope; this covers only the password-reset flow.
type Service interface {
	SendPasswordReset(ctx context.Context, to string, token string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPService(cfg config.SMTPConfig, logger *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to string, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset request")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset token: %s\n\n"+
			"The token expires in one hour. If you did not request this, ignore this mail.",
		token,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset mail: %w", err)
	}

	s.logger.Info("password reset mail sent", "to", to)
	return nil
}
