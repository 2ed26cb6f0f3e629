package notify

import (
	"context"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio REST API the dispatcher needs.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Twilio sends reminders as SMS or WhatsApp messages.
type Twilio struct {
	api  messageCreator
	from string
	to   string
}

// NewTwilio creates a Twilio dispatcher. Numbers prefixed with "whatsapp:"
// are sent over WhatsApp; anything else goes out as SMS.
func NewTwilio(accountSID, authToken, from, to string) (*Twilio, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio credentials are not configured")
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("twilio sender and recipient numbers are required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	return &Twilio{api: client.Api, from: normalizeAddress(from), to: normalizeAddress(to)}, nil
}

func (t *Twilio) Notify(_ context.Context, title, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetBody(title + ": " + body)

	if _, err := t.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message: %w", err)
	}
	return nil
}

// normalizeAddress adds the leading "+" Twilio expects on phone numbers.
func normalizeAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	channel := ""
	if strings.HasPrefix(trimmed, "whatsapp:") {
		channel = "whatsapp:"
		trimmed = strings.TrimPrefix(trimmed, "whatsapp:")
	}
	if !strings.HasPrefix(trimmed, "+") {
		trimmed = "+" + trimmed
	}
	return channel + trimmed
}
