package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Interaction kinds.
const (
	KindEmail  = "email"
	KindCall   = "call"
	KindCoffee = "coffee"
	KindDM     = "dm"
	KindOther  = "other"
)

// ValidKind reports whether k is a known interaction kind.
func ValidKind(k string) bool {
	switch k {
	case KindEmail, KindCall, KindCoffee, KindDM, KindOther:
		return true
	}
	return false
}

// Interaction represents a logged touchpoint with a contact
type Interaction struct {
	ID         uuid.UUID `json:"id"`
	ContactID  uuid.UUID `json:"contact_id"`
	UserID     uuid.UUID `json:"user_id"`
	Kind       string    `json:"kind"`
	HappenedAt time.Time `json:"happened_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateInteraction stores an interaction record and returns its ID
func (db *DB) CreateInteraction(ctx context.Context, i *Interaction) (uuid.UUID, error) {
	if i.Kind == "" {
		i.Kind = KindOther
	}
	if i.HappenedAt.IsZero() {
		i.HappenedAt = time.Now()
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO interactions (contact_id, user_id, kind, happened_at, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		i.ContactID, i.UserID, i.Kind, i.HappenedAt, i.Notes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create interaction: %w", err)
	}
	return id, nil
}

// ListInteractions retrieves all interactions for a contact, newest first
func (db *DB) ListInteractions(ctx context.Context, userID, contactID uuid.UUID) ([]Interaction, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, contact_id, user_id, kind, happened_at, notes, created_at
		 FROM interactions
		 WHERE contact_id = $1 AND user_id = $2
		 ORDER BY happened_at DESC`,
		contactID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var i Interaction
		if err := rows.Scan(&i.ID, &i.ContactID, &i.UserID, &i.Kind, &i.HappenedAt, &i.Notes, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	return interactions, nil
}

// DeleteInteraction deletes a single interaction
func (db *DB) DeleteInteraction(ctx context.Context, userID, interactionID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM interactions WHERE id = $1 AND user_id = $2`,
		interactionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("interaction %s: %w", interactionID, ErrNotFound)
	}
	return nil
}
