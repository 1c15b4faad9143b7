// Package mail delivers contact notifications over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

const implicitTLSPort = 465

// ErrMailNotConfigured is returned when the relay or admin mailbox is unset
var ErrMailNotConfigured = errors.New("mail is not configured")

// SMTPConfig holds the relay settings
// Required fields:
// - Host, AdminEmail, and From or User
// Optional fields:
// - Port (default: 587). Port 465 uses implicit TLS, any other port opportunistic STARTTLS.
// - User/Pass enable PLAIN authentication
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Pass       string
	From       string
	AdminEmail string
}

// SMTPMailer implements Mailer using go-mail
type SMTPMailer struct {
	config SMTPConfig
	logger *zap.Logger
}

var _ repositories.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer validates the settings and creates a mailer. No connection is
// opened until a notification is sent.
func NewSMTPMailer(config SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if config.From == "" {
		config.From = config.User
	}
	if config.Host == "" || config.AdminEmail == "" || config.From == "" {
		return nil, ErrMailNotConfigured
	}
	if config.Port == 0 {
		config.Port = 587
		logger.Info("Using default SMTP port", zap.Int("port", config.Port))
	}

	return &SMTPMailer{config: config, logger: logger}, nil
}

// SendContactNotification mails the captured contact details and transcript to the admin
func (m *SMTPMailer) SendContactNotification(ctx context.Context, n entities.ContactNotification) error {
	msg, err := m.message(n)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.config.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("Failed to send contact notification",
			zap.String("host", m.config.Host),
			zap.Int("port", m.config.Port),
			zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("Contact notification sent",
		zap.Bool("hasEmail", n.Email != ""),
		zap.Bool("hasPhone", n.Phone != ""))
	return nil
}

func (m *SMTPMailer) message(n entities.ContactNotification) (*gomail.Msg, error) {
	subject, text, html := RenderNotification(n)

	msg := gomail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return nil, fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(m.config.AdminEmail); err != nil {
		return nil, fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)
	return msg, nil
}

func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(m.config.Port)}
	if m.config.Port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.config.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.config.User),
			gomail.WithPassword(m.config.Pass))
	}
	return opts
}
