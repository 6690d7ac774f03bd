package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Coach names. Each coach keeps its own threads, discriminated by the
// linked application or contact.
const (
	CoachApplication = "application"
	CoachOutreach    = "outreach"
)

// ValidCoach reports whether c is a known coach name.
func ValidCoach(c string) bool {
	return c == CoachApplication || c == CoachOutreach
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents one message in a coaching thread
type ChatMessage struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Coach         string     `json:"coach"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	Role          string     `json:"role"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateChatMessage stores a chat message and returns its ID
func (db *DB) CreateChatMessage(ctx context.Context, m *ChatMessage) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (user_id, coach, application_id, contact_id, role, content)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		m.UserID, m.Coach, m.ApplicationID, m.ContactID, m.Role, m.Content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create chat message: %w", err)
	}
	return id, nil
}

// ChatThread identifies one coaching conversation.
type ChatThread struct {
	Coach         string
	ApplicationID *uuid.UUID
	ContactID     *uuid.UUID
}

// ListChatMessages retrieves the messages of a thread in chronological order.
// A zero limit means no limit.
func (db *DB) ListChatMessages(ctx context.Context, userID uuid.UUID, thread ChatThread, limit int) ([]ChatMessage, error) {
	query := `SELECT id, user_id, coach, application_id, contact_id, role, content, created_at
		FROM chat_messages
		WHERE user_id = $1 AND coach = $2`
	args := []any{userID, thread.Coach}
	argNum := 3

	if thread.ApplicationID != nil {
		query += fmt.Sprintf(" AND application_id = $%d", argNum)
		args = append(args, *thread.ApplicationID)
		argNum++
	}
	if thread.ContactID != nil {
		query += fmt.Sprintf(" AND contact_id = $%d", argNum)
		args = append(args, *thread.ContactID)
		argNum++
	}

	// Take the newest N by selecting in reverse and flipping afterwards.
	if limit > 0 {
		query = `SELECT * FROM (` + query +
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d) sub ORDER BY created_at ASC`, argNum)
		args = append(args, limit)
	} else {
		query += " ORDER BY created_at ASC"
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Coach, &m.ApplicationID, &m.ContactID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// DeleteChatThread removes every message in a thread
func (db *DB) DeleteChatThread(ctx context.Context, userID uuid.UUID, thread ChatThread) error {
	query := `DELETE FROM chat_messages WHERE user_id = $1 AND coach = $2`
	args := []any{userID, thread.Coach}
	argNum := 3

	if thread.ApplicationID != nil {
		query += fmt.Sprintf(" AND application_id = $%d", argNum)
		args = append(args, *thread.ApplicationID)
		argNum++
	}
	if thread.ContactID != nil {
		query += fmt.Sprintf(" AND contact_id = $%d", argNum)
		args = append(args, *thread.ContactID)
	}

	if _, err := db.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete chat thread: %w", err)
	}
	return nil
}
