package messaging

import (
	"fmt"
	"net/http"
	"strings"
)

// TwilioWebhookRequest represents an incoming Twilio messaging webhook.
type TwilioWebhookRequest struct {
	MessageSid string
	AccountSid string
	From       string
	To         string
	Body       string
}

// ParseTwilioWebhook parses a Twilio webhook request. The body is trimmed
// here, before classification, so "  reset " and "reset" behave the same.
func ParseTwilioWebhook(r *http.Request) (*TwilioWebhookRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse form: %w", err)
	}

	return &TwilioWebhookRequest{
		MessageSid: r.FormValue("MessageSid"),
		AccountSid: r.FormValue("AccountSid"),
		From:       strings.TrimSpace(r.FormValue("From")),
		To:         strings.TrimSpace(r.FormValue("To")),
		Body:       strings.TrimSpace(r.FormValue("Body")),
	}, nil
}
