package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements LLMClient using Google's Gemini API. It serves as
// the optional fallback behind FallbackLLMClient.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelID: modelID}, nil
}

var _ LLMClient = (*GeminiClient)(nil)

// Complete sends the conversation to Gemini. All but the last message become
// chat history; the last user message is sent as the live prompt.
func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := c.client.GenerativeModel(c.modelID)

	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	cs := model.StartChat()

	history, last := geminiHistory(req.Messages)
	cs.History = history
	if strings.TrimSpace(last) == "" {
		return LLMResponse{}, errors.New("conversation: gemini requires a non-empty prompt")
	}

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return LLMResponse{}, errors.New("conversation: gemini returned no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return LLMResponse{}, errors.New("conversation: gemini returned empty text")
	}
	return LLMResponse{Text: text}, nil
}

// geminiHistory splits the conversation for Gemini's chat API: all but the
// last message become prior history (assistant turns map to the "model"
// role, system and empty messages are dropped) and the last message is
// returned as the live prompt.
func geminiHistory(messages []ChatMessage) ([]*genai.Content, string) {
	if len(messages) == 0 {
		return nil, ""
	}

	last := messages[len(messages)-1].Content
	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.Role == ChatRoleSystem {
			continue
		}
		role := "user"
		if msg.Role == ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}
	return history, last
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
