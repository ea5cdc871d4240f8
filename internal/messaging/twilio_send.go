package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/relayforge/chatrelay/internal/conversation"
	"github.com/relayforge/chatrelay/pkg/logging"
)

var twilioSendTracer = otel.Tracer("chatrelay.internal.messaging.twilio_send")

const twilioAPIBase = "https://api.twilio.com"

// TwilioSender posts outbound messages through the Twilio Messages API.
// It is the out-of-band reply path: media cannot ride the inline TwiML
// response, so it goes through the channel's dedicated send mechanism.
type TwilioSender struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioSender builds a sender for the Twilio Messages API.
func NewTwilioSender(accountSID, authToken string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ conversation.MediaSender = (*TwilioSender)(nil)

// SendMedia dispatches a single media message, retrying transient failures.
func (s *TwilioSender) SendMedia(ctx context.Context, media conversation.OutboundMedia) error {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	if media.To == "" {
		return errors.New("messaging: to required")
	}
	if media.From == "" {
		return errors.New("messaging: from required")
	}
	if media.MediaURL == "" {
		return errors.New("messaging: media url required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send_media")
	defer span.End()
	span.SetAttributes(
		attribute.String("chatrelay.to", media.To),
		attribute.String("chatrelay.from", media.From),
	)

	form := url.Values{}
	form.Set("From", media.From)
	form.Set("To", media.To)
	form.Set("Body", media.Body)
	form.Set("MediaUrl", media.MediaURL)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			lastErr = err
			break
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("twilio media message sent", "to", media.To, "from", media.From)
				return nil
			}
			lastErr = fmt.Errorf("twilio send failed: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			// Client errors won't heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
		}

		if attempt < 3 {
			time.Sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to send twilio media message", "error", lastErr, "to", media.To)
	}
	return lastErr
}
