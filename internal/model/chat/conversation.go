package chat

import "time"

// Conversation groups an owner's messages under a title. UpdatedAt is bumped
// on every appended message so conversation lists sort by recency.
type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages,omitempty"`
}
