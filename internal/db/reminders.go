package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Reminder represents a follow-up reminder tied to an application or contact
type Reminder struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	DueAt         time.Time  `json:"due_at"`
	Note          string     `json:"note,omitempty"`
	Done          bool       `json:"done"`
	CreatedAt     time.Time  `json:"created_at"`
}

const reminderColumns = `id, user_id, application_id, contact_id, due_at, note, done, created_at`

func scanReminder(row pgx.Row) (*Reminder, error) {
	var r Reminder
	err := row.Scan(&r.ID, &r.UserID, &r.ApplicationID, &r.ContactID, &r.DueAt, &r.Note, &r.Done, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReminder stores a reminder record and returns its ID
func (db *DB) CreateReminder(ctx context.Context, r *Reminder) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO reminders (user_id, application_id, contact_id, due_at, note)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		r.UserID, r.ApplicationID, r.ContactID, r.DueAt, r.Note,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return id, nil
}

// ReminderFilters holds optional filters for listing reminders
type ReminderFilters struct {
	Done    *bool
	DueOnly bool // only reminders whose due_at has passed
}

// ListReminders retrieves a user's reminders, soonest due first
func (db *DB) ListReminders(ctx context.Context, userID uuid.UUID, filters ReminderFilters) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if filters.Done != nil {
		query += fmt.Sprintf(" AND done = $%d", argNum)
		args = append(args, *filters.Done)
		argNum++
	}
	if filters.DueOnly {
		query += " AND due_at <= NOW()"
	}
	query += " ORDER BY due_at ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, nil
}

// UpdateReminder updates a reminder's due time, note and done flag
func (db *DB) UpdateReminder(ctx context.Context, r *Reminder) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE reminders SET due_at = $1, note = $2, done = $3
		 WHERE id = $4 AND user_id = $5`,
		r.DueAt, r.Note, r.Done, r.ID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("reminder %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// DeleteReminder deletes a reminder
func (db *DB) DeleteReminder(ctx context.Context, userID, reminderID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("reminder %s: %w", reminderID, ErrNotFound)
	}
	return nil
}
