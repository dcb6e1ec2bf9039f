package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/marketplace-api/internal/config"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
)

type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Sender abstracts the SMTP dialer so tests can capture outgoing mail
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	sender Sender
	from   string
}

func NewSMTPService(cfg config.MailConfig) Service {
	return &smtpService{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func NewWithSender(sender Sender, from string) Service {
	return &smtpService{sender: sender, from: from}
}

func (s *smtpService) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// logService only logs; used when mail is disabled
type logService struct {
	logger *logger.Logger
}

func NewLogService(l *logger.Logger) Service {
	return &logService{logger: l.With("email")}
}

func (s *logService) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("mail disabled, dropping message", "to", to, "subject", subject)
	return nil
}
