package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Contact warmth levels.
const (
	WarmthCold   = "cold"
	WarmthWarm   = "warm"
	WarmthStrong = "strong"
)

// ValidWarmth reports whether w is a known warmth level.
func ValidWarmth(w string) bool {
	return w == WarmthCold || w == WarmthWarm || w == WarmthStrong
}

// Contact represents a networking contact
type Contact struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Company     string    `json:"company,omitempty"`
	RoleTitle   string    `json:"role_title,omitempty"`
	Email       string    `json:"email,omitempty"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	Warmth      string    `json:"warmth"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const contactColumns = `id, user_id, name, company, role_title, email,
	linkedin_url, warmth, notes, created_at, updated_at`

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &c.RoleTitle, &c.Email,
		&c.LinkedInURL, &c.Warmth, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact stores a contact record and returns its ID
func (db *DB) CreateContact(ctx context.Context, c *Contact) (uuid.UUID, error) {
	if c.Warmth == "" {
		c.Warmth = WarmthCold
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, company, role_title, email, linkedin_url, warmth, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		c.UserID, c.Name, c.Company, c.RoleTitle, c.Email, c.LinkedInURL, c.Warmth, c.Notes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return id, nil
}

// GetContact retrieves a contact owned by userID. Returns nil if the row does
// not exist or belongs to another user.
func (db *DB) GetContact(ctx context.Context, userID, contactID uuid.UUID) (*Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts retrieves a user's contacts, optionally filtered by company
func (db *DB) ListContacts(ctx context.Context, userID uuid.UUID, company string) ([]Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`
	args := []any{userID}
	if company != "" {
		query += " AND company ILIKE $2"
		args = append(args, "%"+company+"%")
	}
	query += " ORDER BY name ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, nil
}

// UpdateContact updates the mutable fields of a contact
func (db *DB) UpdateContact(ctx context.Context, c *Contact) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE contacts
		 SET name = $1, company = $2, role_title = $3, email = $4,
		     linkedin_url = $5, warmth = $6, notes = $7, updated_at = NOW()
		 WHERE id = $8 AND user_id = $9`,
		c.Name, c.Company, c.RoleTitle, c.Email,
		c.LinkedInURL, c.Warmth, c.Notes, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteContact deletes a contact and its interactions (via cascade)
func (db *DB) DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}
