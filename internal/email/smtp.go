package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the connection settings for the SMTP provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (port 465) when true, STARTTLS otherwise
	Username string
	Password string
	FromAddr string
	FromName string
	Timeout  time.Duration
}

// smtpClient is the concrete Sender backed by an SMTP relay via go-mail.
type smtpClient struct {
	client   *mail.Client
	fromAddr string
	fromName string
}

// NewSMTPClient returns a Sender that delivers email over SMTP.
func NewSMTPClient(cfg SMTPConfig) (Sender, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: smtp client: %w", err)
	}

	return &smtpClient{
		client:   client,
		fromAddr: cfg.FromAddr,
		fromName: cfg.FromName,
	}, nil
}

func (c *smtpClient) Send(ctx context.Context, m Message) (string, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(c.fromName, c.fromAddr); err != nil {
		return "", fmt.Errorf("email: invalid from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return "", fmt.Errorf("email: invalid recipient %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	msg.SetMessageID()

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("email: smtp send: %w", err)
	}

	return msg.GetMessageID(), nil
}
