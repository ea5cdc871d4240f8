package conversation

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one recorded message (user or assistant) in a conversation.
// Sequence is assigned by the store on insert and totally orders the
// turns of a single user; it is never mutated afterwards.
type Turn struct {
	ID        uuid.UUID
	UserID    string
	Role      string
	Content   string
	Sequence  int64
	CreatedAt time.Time
}
