package conversation

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMRequest struct {
	Model    string
	System   string
	Messages []ChatMessage
}

type LLMResponse struct {
	Text string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// historyMessages converts stored turns into provider messages, oldest-first.
func historyMessages(turns []Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := ChatRoleUser
		if turn.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	return messages
}
