package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioService delivers WhatsApp messages through the Twilio REST API.
type TwilioService struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioService creates a Twilio-backed messaging service from resolved
// options.
func NewTwilioService(cfg Opts) *TwilioService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	slog.Debug("TwilioService initialized", "from", cfg.FromNumber)
	return &TwilioService{client: client, from: cfg.FromNumber}
}

// SendMessage sends body to the recipient over WhatsApp. The recipient must
// already be canonicalized.
func (s *TwilioService) SendMessage(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom("whatsapp:" + s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioService.SendMessage: send failed", "to", to, "error", err)
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Info("TwilioService.SendMessage: message sent", "to", to, "sid", sid)
	return nil
}

// ValidateAndCanonicalizeRecipient normalizes a phone number into E.164-like
// form.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}
