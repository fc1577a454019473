package store

import (
	"context"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
)

// Store is the uniform conversation persistence contract. Callers never
// branch on which backing serves a call; the fallback tier hides that.
type Store interface {
	CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error)
	// CreateMessage appends to the conversation's log and bumps its UpdatedAt.
	CreateMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (chat.Message, error)
	// GetConversations lists an owner's conversations by UpdatedAt descending,
	// without their messages.
	GetConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error)
	// GetConversation returns a conversation with its messages in
	// chronological order; the bool reports existence.
	GetConversation(ctx context.Context, id string) (chat.Conversation, bool, error)
	UpdateConversationTitle(ctx context.Context, id, title string) (chat.Conversation, bool, error)
	DeleteConversation(ctx context.Context, id string) (bool, error)
}
