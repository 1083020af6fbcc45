// Package mail implements the outbound email notifier over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

// Config captures the SMTP settings and the frontend base URL embedded in
// reset links.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
}

// SMTPNotifier sends transactional email through an SMTP relay.
type SMTPNotifier struct {
	client      *gomail.Client
	from        string
	frontendURL string
	log         zerolog.Logger
}

// NewSMTPNotifier builds the SMTP client. Credentials are optional for
// relays that accept unauthenticated local delivery.
func NewSMTPNotifier(cfg Config, log zerolog.Logger) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPNotifier{
		client:      client,
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
		log:         log,
	}, nil
}

// SendPasswordResetEmail delivers the reset link for the given token.
// Delivery failure is returned to the caller, not swallowed.
func (n *SMTPNotifier) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", n.frontendURL, url.QueryEscape(token))

	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("reset email from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("reset email to: %w", err)
	}
	msg.Subject("Password Reset Request")
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(
		`<p>You requested a password reset</p>
<p>Click this link to reset your password:</p>
<a href="%s">%s</a>`, link, link))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	n.log.Info().Str("to", to).Msg("password reset email sent")
	return nil
}
