// Package notification renders ledger events and delivers them to customers.
package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/config"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

// Sender renders and delivers one event.
type Sender interface {
	Send(ctx context.Context, event domain.Event) error
}

// LogSender writes rendered messages to the log instead of delivering them.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, event domain.Event) error {
	subject, body, err := Render(event)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"kind":        event.Kind,
		"customer_id": event.CustomerID,
		"to":          event.CustomerEmail,
		"subject":     subject,
	}).Info(body)
	return nil
}

// EmailSender delivers rendered messages over SMTP.
type EmailSender struct {
	cfg  config.NotificationConfig
	log  *logrus.Logger
	send func(e *email.Email) error
}

func NewEmailSender(cfg config.NotificationConfig, log *logrus.Logger) *EmailSender {
	s := &EmailSender{cfg: cfg, log: log}
	s.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
		auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
		return e.Send(addr, auth)
	}
	return s
}

func (s *EmailSender) Send(_ context.Context, event domain.Event) error {
	if event.CustomerEmail == "" {
		return fmt.Errorf("customer %s has no email address", event.CustomerID)
	}

	subject, body, err := Render(event)
	if err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{event.CustomerEmail}
	e.Subject = subject
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send %s email: %w", event.Kind, err)
	}

	s.log.Infof("Email sent to %s: %s", event.CustomerEmail, subject)
	return nil
}

// NewSender picks the delivery channel configured by NOTIFY_CHANNEL.
func NewSender(cfg config.NotificationConfig, log *logrus.Logger) Sender {
	if cfg.Channel == "email" {
		return NewEmailSender(cfg, log)
	}
	return NewLogSender(log)
}
