package messaging

import (
	"strings"
	"testing"
)

func TestRenderTwiMLWithBody(t *testing.T) {
	doc := RenderTwiML("Hi there!")
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("expected xml declaration, got %q", doc)
	}
	if !strings.Contains(doc, "<Message>Hi there!</Message>") {
		t.Fatalf("expected message element, got %q", doc)
	}
}

func TestRenderTwiMLEmptyBody(t *testing.T) {
	doc := RenderTwiML("")
	if strings.Contains(doc, "<Message>") {
		t.Fatalf("expected no message element for empty body, got %q", doc)
	}
	if !strings.Contains(doc, "<Response></Response>") {
		t.Fatalf("expected empty response element, got %q", doc)
	}
}

func TestRenderTwiMLEscapesBody(t *testing.T) {
	doc := RenderTwiML(`tags <b> & "quotes"`)
	if strings.Contains(doc, "<b>") {
		t.Fatalf("expected escaped body, got %q", doc)
	}
	if !strings.Contains(doc, "&lt;b&gt;") || !strings.Contains(doc, "&amp;") {
		t.Fatalf("expected xml entities, got %q", doc)
	}
}
