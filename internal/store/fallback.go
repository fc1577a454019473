package store

import (
	"context"
	"log"
	"sync"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
)

// FallbackStore routes every operation to the durable backing while it is
// reachable and to the in-process mirror otherwise. Durable failures are
// absorbed: the operation is retried once against the mirror and the backing
// is marked unhealthy. While unhealthy, each call lazily re-probes so a
// recovered backing is picked back up instead of being downgraded for the
// rest of the process lifetime. Callers never observe a storage error.
type FallbackStore struct {
	durable Store
	probe   func(ctx context.Context) error
	mirror  *MemoryStore

	mu      sync.Mutex
	probed  bool
	healthy bool
}

// NewFallbackStore wraps durable behind the degradation policy. A nil
// durable store (no database configured) routes everything to the mirror.
func NewFallbackStore(durable Store, probe func(ctx context.Context) error) *FallbackStore {
	return &FallbackStore{
		durable: durable,
		probe:   probe,
		mirror:  NewMemoryStore(),
	}
}

// Mirror exposes the in-process tier; useful for diagnostics and tests.
func (f *FallbackStore) Mirror() *MemoryStore { return f.mirror }

// useDurable reports whether this call should go to the durable backing. The
// cached healthy decision is kept until an operation fails; an unhealthy
// decision is re-checked on every call.
func (f *FallbackStore) useDurable(ctx context.Context) bool {
	if f.durable == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.probed && f.healthy {
		return true
	}

	err := f.probe(ctx)
	if err != nil {
		if !f.probed {
			log.Printf("[store] durable backend unreachable, using in-memory mirror: %v", err)
		}
	} else if f.probed {
		log.Printf("[store] durable backend recovered")
	}

	f.probed = true
	f.healthy = err == nil
	return f.healthy
}

func (f *FallbackStore) markUnhealthy(op string, err error) {
	log.Printf("[store] durable %s failed, retrying on in-memory mirror: %v", op, err)
	f.mu.Lock()
	f.healthy = false
	f.mu.Unlock()
}

func (f *FallbackStore) CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error) {
	if f.useDurable(ctx) {
		conversation, err := f.durable.CreateConversation(ctx, ownerID, title)
		if err == nil {
			return conversation, nil
		}
		f.markUnhealthy("createConversation", err)
	}
	return f.mirror.CreateConversation(ctx, ownerID, title)
}

func (f *FallbackStore) CreateMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (chat.Message, error) {
	if f.useDurable(ctx) {
		message, err := f.durable.CreateMessage(ctx, conversationID, role, content, metadata)
		if err == nil {
			return message, nil
		}
		f.markUnhealthy("createMessage", err)
	}
	return f.mirror.CreateMessage(ctx, conversationID, role, content, metadata)
}

func (f *FallbackStore) GetConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	if f.useDurable(ctx) {
		conversations, err := f.durable.GetConversations(ctx, ownerID)
		if err == nil {
			return conversations, nil
		}
		f.markUnhealthy("getConversations", err)
	}
	return f.mirror.GetConversations(ctx, ownerID)
}

func (f *FallbackStore) GetConversation(ctx context.Context, id string) (chat.Conversation, bool, error) {
	if f.useDurable(ctx) {
		conversation, ok, err := f.durable.GetConversation(ctx, id)
		if err == nil {
			return conversation, ok, nil
		}
		f.markUnhealthy("getConversation", err)
	}
	return f.mirror.GetConversation(ctx, id)
}

func (f *FallbackStore) UpdateConversationTitle(ctx context.Context, id, title string) (chat.Conversation, bool, error) {
	if f.useDurable(ctx) {
		conversation, ok, err := f.durable.UpdateConversationTitle(ctx, id, title)
		if err == nil {
			return conversation, ok, nil
		}
		f.markUnhealthy("updateConversationTitle", err)
	}
	return f.mirror.UpdateConversationTitle(ctx, id, title)
}

func (f *FallbackStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if f.useDurable(ctx) {
		deleted, err := f.durable.DeleteConversation(ctx, id)
		if err == nil {
			return deleted, nil
		}
		f.markUnhealthy("deleteConversation", err)
	}
	return f.mirror.DeleteConversation(ctx, id)
}
