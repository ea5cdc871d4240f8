package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/relayforge/chatrelay/internal/conversation"
	"github.com/relayforge/chatrelay/internal/http/handlers"
	"github.com/relayforge/chatrelay/internal/messaging"
	"github.com/relayforge/chatrelay/pkg/logging"
)

type okResponder struct{}

func (okResponder) HandleInbound(context.Context, conversation.InboundMessage) (conversation.Reply, error) {
	return conversation.Reply{Body: "ok"}, nil
}

type emptyTurnReader struct{}

func (emptyTurnReader) Recent(context.Context, string, int) ([]conversation.Turn, error) {
	return nil, nil
}

func testRouter() http.Handler {
	logger := logging.Default()
	return New(&Config{
		Logger:             logger,
		MessagingHandler:   messaging.NewHandler(okResponder{}, nil, nil, time.Second, logger),
		AdminConversations: handlers.NewAdminConversationsHandler(emptyTurnReader{}, logger),
		AdminJWTSecret:     "secret",
	})
}

func TestRouterHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterWebhookRoute(t *testing.T) {
	form := strings.NewReader("MessageSid=SM1&From=whatsapp%3A%2B15551234567&To=whatsapp%3A%2B15550001111&Body=Hello")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<Message>ok</Message>") {
		t.Fatalf("unexpected webhook response %q", rec.Body.String())
	}
}

func TestRouterAdminRequiresAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations/W1/turns", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
