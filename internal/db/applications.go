package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Application statuses, in rough pipeline order.
const (
	StatusSaved        = "saved"
	StatusApplied      = "applied"
	StatusInterviewing = "interviewing"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
	StatusAccepted     = "accepted"
)

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// Application represents a tracked job application
type Application struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Company     string     `json:"company"`
	RoleTitle   string     `json:"role_title"`
	PostingURL  string     `json:"posting_url,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	AppliedAt   *Date      `json:"applied_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ResumeID    *uuid.UUID `json:"resume_id,omitempty"`
	MatchReport JSONMap    `json:"match_report,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const applicationColumns = `id, user_id, company, role_title, posting_url, description,
	status, applied_at, notes, resume_id, match_report, created_at, updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.RoleTitle, &a.PostingURL, &a.Description,
		&a.Status, &a.AppliedAt, &a.Notes, &a.ResumeID, &a.MatchReport, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication stores an application record and returns its ID
func (db *DB) CreateApplication(ctx context.Context, a *Application) (uuid.UUID, error) {
	if a.Status == "" {
		a.Status = StatusSaved
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (user_id, company, role_title, posting_url, description,
		                           status, applied_at, notes, resume_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.UserID, a.Company, a.RoleTitle, a.PostingURL, a.Description,
		a.Status, a.AppliedAt, a.Notes, a.ResumeID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create application: %w", err)
	}
	return id, nil
}

// GetApplication retrieves an application owned by userID. Returns nil if the
// row does not exist or belongs to another user.
func (db *DB) GetApplication(ctx context.Context, userID, appID uuid.UUID) (*Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		appID, userID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// ApplicationFilters holds optional filters for listing applications
type ApplicationFilters struct {
	Status  string
	Company string
	Limit   int
}

// ListApplications retrieves a user's applications with optional filters
func (db *DB) ListApplications(ctx context.Context, userID uuid.UUID, filters ApplicationFilters) ([]Application, error) {
	if filters.Limit == 0 {
		filters.Limit = 100
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, nil
}

// UpdateApplication updates the mutable fields of an application
func (db *DB) UpdateApplication(ctx context.Context, a *Application) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE applications
		 SET company = $1, role_title = $2, posting_url = $3, description = $4,
		     status = $5, applied_at = $6, notes = $7, resume_id = $8, updated_at = NOW()
		 WHERE id = $9 AND user_id = $10`,
		a.Company, a.RoleTitle, a.PostingURL, a.Description,
		a.Status, a.AppliedAt, a.Notes, a.ResumeID, a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

// SaveMatchReport stores the LLM resume-to-job match report for an application
func (db *DB) SaveMatchReport(ctx context.Context, userID, appID uuid.UUID, report JSONMap) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE applications SET match_report = $1, updated_at = NOW()
		 WHERE id = $2 AND user_id = $3`,
		report, appID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to save match report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application %s: %w", appID, ErrNotFound)
	}
	return nil
}

// DeleteApplication deletes an application and its reminders/chat (via cascade)
func (db *DB) DeleteApplication(ctx context.Context, userID, appID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM applications WHERE id = $1 AND user_id = $2`,
		appID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application %s: %w", appID, ErrNotFound)
	}
	return nil
}
