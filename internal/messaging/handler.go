package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/relayforge/chatrelay/internal/conversation"
	"github.com/relayforge/chatrelay/internal/observability/metrics"
	"github.com/relayforge/chatrelay/pkg/logging"
)

var webhookTracer = otel.Tracer("chatrelay.internal.messaging.webhook")

// Responder is the conversation core behind the webhook.
type Responder interface {
	HandleInbound(ctx context.Context, msg conversation.InboundMessage) (conversation.Reply, error)
}

// Handler handles messaging webhook requests.
type Handler struct {
	responder Responder
	deduper   *Deduper
	metrics   *metrics.RelayMetrics
	logger    *logging.Logger
	timeout   time.Duration
}

// NewHandler creates a new messaging webhook handler. The deduper and
// metrics are optional; a nil deduper disables redelivery suppression.
func NewHandler(responder Responder, deduper *Deduper, m *metrics.RelayMetrics, timeout time.Duration, logger *logging.Logger) *Handler {
	if responder == nil {
		panic("messaging: responder cannot be nil")
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		responder: responder,
		deduper:   deduper,
		metrics:   m,
		logger:    logger,
		timeout:   timeout,
	}
}

// TwilioWebhook handles POST /webhooks/twilio requests. Every accepted
// event produces a TwiML reply: adapter and even store failures degrade to
// an inline apology rather than a 5xx, so the user always hears back.
func (h *Handler) TwilioWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.twilio.webhook")
	defer span.End()
	start := time.Now()

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	span.SetAttributes(
		attribute.String("chatrelay.twilio.message_sid", webhook.MessageSid),
		attribute.String("chatrelay.twilio.from", webhook.From),
	)

	if webhook.From == "" || webhook.Body == "" {
		err := errors.New("missing required twilio fields")
		h.logger.Error("invalid twilio payload", "error", err, "message_sid", webhook.MessageSid)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	intent := conversation.ClassifyIntent(webhook.Body).Kind.String()

	if h.deduper != nil && h.deduper.Seen(ctx, webhook.MessageSid) {
		h.logger.Info("duplicate webhook suppressed", "message_sid", webhook.MessageSid)
		h.metrics.ObserveInbound(intent, "duplicate")
		writeTwiML(w, "")
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	reply, err := h.responder.HandleInbound(handleCtx, conversation.InboundMessage{
		From: webhook.From,
		Body: webhook.Body,
	})
	if err != nil {
		// The reply contract outranks the error: answer with the fixed
		// apology instead of surfacing a 5xx to the channel.
		h.logger.Error("failed to handle inbound message", "error", err, "from", webhook.From, "message_sid", webhook.MessageSid)
		span.RecordError(err)
		h.metrics.ObserveInbound(intent, "error")
		h.metrics.ObserveReplyLatency(intent, time.Since(start).Seconds())
		writeTwiML(w, conversation.FallbackReplyText)
		return
	}

	h.logger.Info("webhook handled", "from", webhook.From, "intent", intent, "out_of_band", reply.OutOfBand)
	h.metrics.ObserveInbound(intent, "ok")
	h.metrics.ObserveReplyLatency(intent, time.Since(start).Seconds())
	writeTwiML(w, reply.Body)
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RenderTwiML(body)))
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
