package conversation

import "strings"

// IntentKind is the classified purpose of an inbound message.
type IntentKind int

const (
	IntentChat IntentKind = iota
	IntentReset
	IntentImage
)

func (k IntentKind) String() string {
	switch k {
	case IntentReset:
		return "reset"
	case IntentImage:
		return "image"
	default:
		return "chat"
	}
}

// Intent is the result of classifying a raw message body.
// For IntentImage, Keyword holds the requested search term (may be empty).
// For IntentChat, Text carries the message verbatim.
type Intent struct {
	Kind    IntentKind
	Keyword string
	Text    string
}

const (
	imagePrefixColon  = "image:"
	imagePrefixShowMe = "show me"
)

// ClassifyIntent maps a message body to an intent. Keywords are matched
// case-insensitively. The reset check runs before the image prefixes so
// classification stays deterministic.
func ClassifyIntent(text string) Intent {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if lower == "reset" {
		return Intent{Kind: IntentReset}
	}
	if strings.HasPrefix(lower, imagePrefixColon) {
		keyword := strings.TrimSpace(trimmed[len(imagePrefixColon):])
		return Intent{Kind: IntentImage, Keyword: keyword}
	}
	if strings.HasPrefix(lower, imagePrefixShowMe) {
		keyword := strings.TrimSpace(trimmed[len(imagePrefixShowMe):])
		return Intent{Kind: IntentImage, Keyword: keyword}
	}
	return Intent{Kind: IntentChat, Text: text}
}
