package conversation

import (
	"context"
	"fmt"

	"github.com/relayforge/chatrelay/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var orchestratorTracer = otel.Tracer("chatrelay.internal.conversation.orchestrator")

const systemPrompt = "You are a helpful AI chatbot."

// FallbackReplyText is the apology sent when a reply cannot be generated.
const FallbackReplyText = "Sorry, something went wrong. Please try again."

const resetConfirmationText = "Chat history reset. Let's start fresh!"

// InboundMessage is one webhook event: who sent it and what they said.
type InboundMessage struct {
	From string
	Body string
}

// Reply is the orchestrator's decision on how to answer. An out-of-band
// reply was already delivered through the channel's send API and leaves the
// inline body empty; the two paths are mutually exclusive.
type Reply struct {
	Body      string
	OutOfBand bool
}

// OutboundMedia carries a media reply pushed through the channel's send API.
type OutboundMedia struct {
	To       string
	From     string
	Body     string
	MediaURL string
}

// TurnStore is the durable conversation log the orchestrator drives.
type TurnStore interface {
	Append(ctx context.Context, userID, role, content string) (int64, error)
	Recent(ctx context.Context, userID string, limit int) ([]Turn, error)
	Reset(ctx context.Context, userID string) (int64, error)
}

// ImageSearcher looks up a single image URL for a keyword. found=false with
// a nil error means the provider had no results, which is not a failure.
type ImageSearcher interface {
	Search(ctx context.Context, keyword string) (url string, found bool, err error)
}

// MediaSender delivers out-of-band media replies.
type MediaSender interface {
	SendMedia(ctx context.Context, media OutboundMedia) error
}

// ProviderMetrics counts external provider failures.
type ProviderMetrics interface {
	ObserveProviderError(provider string)
}

// Orchestrator consumes one inbound event at a time: classify, drive the
// store and adapters, decide the reply path. All collaborators are injected;
// the orchestrator holds no per-user state and relies on the store's
// sequence assignment for ordering under concurrent requests.
type Orchestrator struct {
	store        TurnStore
	llm          LLMClient
	images       ImageSearcher
	sender       MediaSender
	fromAddress  string
	historyLimit int
	metrics      ProviderMetrics
	logger       *logging.Logger
}

// NewOrchestrator wires the conversation core together. Metrics are
// optional; a nil handle disables provider failure counting.
func NewOrchestrator(store TurnStore, llm LLMClient, images ImageSearcher, sender MediaSender, fromAddress string, historyLimit int, metrics ProviderMetrics, logger *logging.Logger) *Orchestrator {
	if store == nil {
		panic("conversation: store cannot be nil")
	}
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if images == nil {
		panic("conversation: image searcher cannot be nil")
	}
	if sender == nil {
		panic("conversation: media sender cannot be nil")
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		store:        store,
		llm:          llm,
		images:       images,
		sender:       sender,
		fromAddress:  fromAddress,
		historyLimit: historyLimit,
		metrics:      metrics,
		logger:       logger,
	}
}

func (o *Orchestrator) observeProviderError(provider string) {
	if o.metrics != nil {
		o.metrics.ObserveProviderError(provider)
	}
}

// HandleInbound processes one webhook event and returns the reply decision.
// Adapter failures degrade to user-facing text; only store failures
// propagate as errors.
func (o *Orchestrator) HandleInbound(ctx context.Context, msg InboundMessage) (Reply, error) {
	ctx, span := orchestratorTracer.Start(ctx, "conversation.handle_inbound")
	defer span.End()
	span.SetAttributes(attribute.String("chatrelay.user_id", msg.From))

	intent := ClassifyIntent(msg.Body)
	span.SetAttributes(attribute.String("chatrelay.intent", intent.Kind.String()))

	switch intent.Kind {
	case IntentReset:
		return o.handleReset(ctx, msg.From)
	case IntentImage:
		return o.handleImage(ctx, msg.From, msg.Body, intent.Keyword)
	default:
		return o.handleChat(ctx, msg.From, intent.Text)
	}
}

func (o *Orchestrator) handleReset(ctx context.Context, userID string) (Reply, error) {
	count, err := o.store.Reset(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	o.logger.Info("conversation reset", "user_id", userID, "turns_deleted", count)
	return Reply{Body: resetConfirmationText}, nil
}

func (o *Orchestrator) handleImage(ctx context.Context, userID, rawCommand, keyword string) (Reply, error) {
	url, found, err := o.images.Search(ctx, keyword)
	if err != nil {
		// Provider failure degrades to the not-found path for the user.
		o.logger.Error("image lookup failed", "error", err, "user_id", userID, "keyword", keyword)
		o.observeProviderError("unsplash")
		found = false
	}
	if !found {
		return Reply{Body: fmt.Sprintf("Sorry, I couldn't find an image for '%s'.", keyword)}, nil
	}

	caption := fmt.Sprintf("Here's an image of %s!", keyword)

	// The command and caption stay in history for future completion
	// context even though the image itself is not stored.
	if _, err := o.store.Append(ctx, userID, RoleUser, rawCommand); err != nil {
		return Reply{}, err
	}
	if _, err := o.store.Append(ctx, userID, RoleAssistant, caption); err != nil {
		return Reply{}, err
	}

	if err := o.sender.SendMedia(ctx, OutboundMedia{
		To:       userID,
		From:     o.fromAddress,
		Body:     caption,
		MediaURL: url,
	}); err != nil {
		o.logger.Error("out-of-band media send failed", "error", err, "user_id", userID, "keyword", keyword)
		o.observeProviderError("twilio")
		return Reply{Body: FallbackReplyText}, nil
	}

	o.logger.Info("image reply sent", "user_id", userID, "keyword", keyword)
	return Reply{OutOfBand: true}, nil
}

func (o *Orchestrator) handleChat(ctx context.Context, userID, text string) (Reply, error) {
	if _, err := o.store.Append(ctx, userID, RoleUser, text); err != nil {
		return Reply{}, err
	}

	// Read back after the append so the window includes the turn above.
	history, err := o.store.Recent(ctx, userID, o.historyLimit)
	if err != nil {
		return Reply{}, err
	}

	resp, err := o.llm.Complete(ctx, LLMRequest{
		System:   systemPrompt,
		Messages: historyMessages(history),
	})
	if err != nil {
		// Single attempt, no retry: the user turn stays persisted and the
		// reply degrades to the fixed apology.
		o.logger.Error("completion failed", "error", err, "user_id", userID)
		o.observeProviderError("openai")
		return Reply{Body: FallbackReplyText}, nil
	}

	if _, err := o.store.Append(ctx, userID, RoleAssistant, resp.Text); err != nil {
		// The generated text is still worth delivering; the missing
		// assistant turn only costs future context.
		o.logger.Error("failed to persist assistant turn", "error", err, "user_id", userID)
	}
	return Reply{Body: resp.Text}, nil
}
