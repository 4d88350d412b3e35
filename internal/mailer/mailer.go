// Package mailer sends plain text mail over SMTP.
package mailer

import (
	"context"
	"errors"

	"github.com/wneessen/go-mail"
)

// ErrNoRecipients is returned when a send is attempted without addresses.
var ErrNoRecipients = errors.New("no recipients supplied")

// Sender delivers one message to a list of recipients.
type Sender interface {
	Send(ctx context.Context, subject string, body string, to []string) error
}

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates an SMTPSender from the given config.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	options := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, err
	}

	return &SMTPSender{
		client: client,
		from:   cfg.From,
	}, nil
}

// Send delivers one plain text message to all recipients.
func (s *SMTPSender) Send(ctx context.Context, subject string, body string, to []string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}

	msg := mail.NewMsg()

	if err := msg.From(s.from); err != nil {
		return err
	}

	if err := msg.To(to...); err != nil {
		return err
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return s.client.DialAndSendWithContext(ctx, msg)
}
