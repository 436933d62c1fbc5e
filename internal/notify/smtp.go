package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host string
	Port int

	// Username/Password are optional; empty username means the relay
	// accepts unauthenticated submission (typical for an internal relay).
	Username string
	Password string

	From          string
	To            []string
	SubjectPrefix string
}

// SMTPSink sends call summaries by email.
type SMTPSink struct {
	cfg    SMTPConfig
	client *mail.Client
}

func NewSMTPSink(cfg SMTPConfig) (*SMTPSink, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify: SMTP host is required")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("notify: from and to addresses are required")
	}

	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &SMTPSink{cfg: cfg, client: client}, nil
}

func (s *SMTPSink) Send(ctx context.Context, subject, body string) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return err
	}
	if err := m.To(s.cfg.To...); err != nil {
		return err
	}
	if s.cfg.SubjectPrefix != "" {
		subject = s.cfg.SubjectPrefix + " " + subject
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	return s.client.DialAndSendWithContext(ctx, m)
}
