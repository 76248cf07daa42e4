// Package messaging provides outbound WhatsApp delivery for scheduling
// follow-ups, backed by Twilio with a no-op fallback when credentials are
// absent.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Service sends outbound messages to leads.
type Service interface {
	// SendMessage delivers body to the canonicalized recipient.
	SendMessage(ctx context.Context, to, body string) error
	// ValidateAndCanonicalizeRecipient normalizes a phone number into the
	// form SendMessage expects.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)
}

// Opts holds configuration options for messaging services.
type Opts struct {
	// AccountSID is the Twilio account SID. Falls back to TWILIO_ACCOUNT_SID.
	AccountSID string
	// AuthToken is the Twilio auth token. Falls back to TWILIO_AUTH_TOKEN.
	AuthToken string
	// FromNumber is the WhatsApp sender number. Falls back to TWILIO_FROM_NUMBER.
	FromNumber string
}

// Option defines a configuration option for messaging services.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the WhatsApp sender number.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// New builds a messaging service: Twilio when credentials are configured,
// otherwise a no-op service that only logs.
func New(opts ...Option) Service {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		slog.Info("messaging.New: Twilio credentials not configured, using no-op service")
		return &NoopService{}
	}
	return NewTwilioService(cfg)
}

var nonDigits = regexp.MustCompile(`\D`)

// canonicalizePhone strips formatting characters and validates that enough
// digits remain to be a plausible number.
func canonicalizePhone(recipient string) (string, error) {
	cleaned := nonDigits.ReplaceAllString(strings.TrimSpace(recipient), "")
	if len(cleaned) < 6 {
		return "", fmt.Errorf("invalid phone number %q", recipient)
	}
	return "+" + cleaned, nil
}

// NoopService logs instead of sending. Used when Twilio is not configured.
type NoopService struct{}

func (s *NoopService) SendMessage(_ context.Context, to, body string) error {
	slog.Info("NoopService.SendMessage: message not sent (no provider configured)", "to", to, "bodyLength", len(body))
	return nil
}

func (s *NoopService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}
