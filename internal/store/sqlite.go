package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
)

// Fixed-width timestamps so lexicographic order in SQL equals chronological
// order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    metadata TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id, updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
`

// SQLiteStore is the durable conversation backing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn and ensures
// the schema exists.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Ping doubles as the reachability probe for the fallback tier.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error) {
	now := time.Now().UTC()
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, owner_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		conversation.ID, ownerID, title, now.Format(sqliteTimeLayout), now.Format(sqliteTimeLayout))
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}
	return conversation, nil
}

func (s *SQLiteStore) CreateMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (chat.Message, error) {
	if !chat.ValidRole(role) {
		return chat.Message{}, fmt.Errorf("invalid message role %q", role)
	}

	now := time.Now().UTC()
	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
		Metadata:       metadata,
	}

	var metadataJSON any
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return chat.Message{}, fmt.Errorf("marshal message metadata: %w", err)
		}
		metadataJSON = string(encoded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.Message{}, fmt.Errorf("begin message insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, conversationID, role, content, metadataJSON, now.Format(sqliteTimeLayout)); err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		now.Format(sqliteTimeLayout), conversationID); err != nil {
		return chat.Message{}, fmt.Errorf("bump conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chat.Message{}, fmt.Errorf("commit message insert: %w", err)
	}
	return message, nil
}

func (s *SQLiteStore) GetConversations(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE owner_id = ? ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]chat.Conversation, 0, 16)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (chat.Conversation, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE id = ?`, id)

	conversation, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return chat.Conversation{}, false, nil
	}
	if err != nil {
		return chat.Conversation{}, false, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, metadata, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`,
		id)
	if err != nil {
		return chat.Conversation{}, false, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var (
			message      chat.Message
			metadataJSON sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&message.ID, &message.ConversationID, &message.Role, &message.Content, &metadataJSON, &createdAt); err != nil {
			return chat.Conversation{}, false, fmt.Errorf("scan message: %w", err)
		}
		if message.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return chat.Conversation{}, false, fmt.Errorf("parse message timestamp: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &message.Metadata); err != nil {
				return chat.Conversation{}, false, fmt.Errorf("decode message metadata: %w", err)
			}
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return chat.Conversation{}, false, err
	}

	conversation.Messages = messages
	return conversation, true, nil
}

func (s *SQLiteStore) UpdateConversationTitle(ctx context.Context, id, title string) (chat.Conversation, bool, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, now.Format(sqliteTimeLayout), id)
	if err != nil {
		return chat.Conversation{}, false, fmt.Errorf("update conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return chat.Conversation{}, false, err
	}
	if affected == 0 {
		return chat.Conversation{}, false, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE id = ?`, id)
	conversation, err := scanConversation(row)
	if err != nil {
		return chat.Conversation{}, false, err
	}
	return conversation, true, nil
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete messages: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (chat.Conversation, error) {
	var (
		conversation chat.Conversation
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(&conversation.ID, &conversation.OwnerID, &conversation.Title, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return chat.Conversation{}, err
		}
		return chat.Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}

	var err error
	if conversation.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return chat.Conversation{}, fmt.Errorf("parse conversation created_at: %w", err)
	}
	if conversation.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return chat.Conversation{}, fmt.Errorf("parse conversation updated_at: %w", err)
	}
	return conversation, nil
}
