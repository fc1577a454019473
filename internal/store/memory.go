package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
)

// MemoryStore keeps conversations in process memory. It backs development
// runs on its own and mirrors the durable store when that is unreachable.
// It never fails.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	messages      map[string][]chat.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

func (s *MemoryStore) CreateConversation(_ context.Context, ownerID, title string) (chat.Conversation, error) {
	now := time.Now().UTC()
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations[conversation.ID] = conversation
	s.mu.Unlock()

	return conversation, nil
}

// CreateMessage appends even when the conversation id is unknown, so a turn
// addressed at a conversation created by the other backing still records its
// messages.
func (s *MemoryStore) CreateMessage(_ context.Context, conversationID, role, content string, metadata map[string]any) (chat.Message, error) {
	if !chat.ValidRole(role) {
		return chat.Message{}, fmt.Errorf("invalid message role %q", role)
	}

	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
		Metadata:       metadata,
	}

	s.mu.Lock()
	s.messages[conversationID] = append(s.messages[conversationID], message)
	if conversation, ok := s.conversations[conversationID]; ok {
		conversation.UpdatedAt = message.CreatedAt
		s.conversations[conversationID] = conversation
	}
	s.mu.Unlock()

	return message, nil
}

func (s *MemoryStore) GetConversations(_ context.Context, ownerID string) ([]chat.Conversation, error) {
	s.mu.RLock()
	conversations := make([]chat.Conversation, 0, len(s.conversations))
	for _, conversation := range s.conversations {
		if conversation.OwnerID == ownerID {
			conversations = append(conversations, conversation)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id string) (chat.Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return chat.Conversation{}, false, nil
	}

	messages := make([]chat.Message, len(s.messages[id]))
	copy(messages, s.messages[id])
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	conversation.Messages = messages
	return conversation, true, nil
}

func (s *MemoryStore) UpdateConversationTitle(_ context.Context, id, title string) (chat.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return chat.Conversation{}, false, nil
	}

	conversation.Title = title
	conversation.UpdatedAt = time.Now().UTC()
	s.conversations[id] = conversation
	return conversation, true, nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.conversations[id]
	delete(s.conversations, id)
	delete(s.messages, id)
	return ok, nil
}
