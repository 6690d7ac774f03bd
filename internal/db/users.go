package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User represents a local user profile keyed by the identity provider's
// subject. Credentials live in Cognito; only profile data is stored here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Headline  string    `json:"headline,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertUser inserts a user row on first sight of a Cognito subject,
// refreshing the email on conflict. Returns the stored user.
func (db *DB) UpsertUser(ctx context.Context, id uuid.UUID, email, name string) (*User, error) {
	var user User
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET email = $2, updated_at = NOW()
		 RETURNING id, email, name, headline, created_at, updated_at`,
		id, email, name,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Headline, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var user User
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, name, headline, created_at, updated_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Headline, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUser updates the mutable profile fields (name, headline)
func (db *DB) UpdateUser(ctx context.Context, user *User) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE users SET name = $1, headline = $2, updated_at = NOW() WHERE id = $3`,
		user.Name, user.Headline, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}
