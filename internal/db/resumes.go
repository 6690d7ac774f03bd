package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Resume represents an uploaded resume file and its extracted text
type Resume struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Label         string    `json:"label,omitempty"`
	FileName      string    `json:"file_name"`
	ContentType   string    `json:"content_type"`
	StorageKey    string    `json:"-"` // internal object key, never exposed
	SizeBytes     int64     `json:"size_bytes"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	TextExtracted bool      `json:"text_extracted"`
	ATSReport     JSONMap   `json:"ats_report,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const resumeColumns = `id, user_id, label, file_name, content_type, storage_key,
	size_bytes, extracted_text, text_extracted, ats_report, created_at`

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	err := row.Scan(&r.ID, &r.UserID, &r.Label, &r.FileName, &r.ContentType, &r.StorageKey,
		&r.SizeBytes, &r.ExtractedText, &r.TextExtracted, &r.ATSReport, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateResume stores a resume record and returns its ID
func (db *DB) CreateResume(ctx context.Context, r *Resume) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, label, file_name, content_type, storage_key,
		                      size_bytes, extracted_text, text_extracted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		r.UserID, r.Label, r.FileName, r.ContentType, r.StorageKey,
		r.SizeBytes, r.ExtractedText, r.TextExtracted,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return id, nil
}

// GetResume retrieves a resume owned by userID. Returns nil if the row does
// not exist or belongs to another user.
func (db *DB) GetResume(ctx context.Context, userID, resumeID uuid.UUID) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`,
		resumeID, userID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumes retrieves all resumes for a user, newest first
func (db *DB) ListResumes(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	return resumes, nil
}

// UpdateResumeLabel updates the user-facing label of a resume
func (db *DB) UpdateResumeLabel(ctx context.Context, userID, resumeID uuid.UUID, label string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET label = $1 WHERE id = $2 AND user_id = $3`,
		label, resumeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
	}
	return nil
}

// SaveATSReport stores the LLM score report for a resume
func (db *DB) SaveATSReport(ctx context.Context, userID, resumeID uuid.UUID, report JSONMap) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET ats_report = $1 WHERE id = $2 AND user_id = $3`,
		report, resumeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to save ATS report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
	}
	return nil
}

// DeleteResume deletes a resume row
func (db *DB) DeleteResume(ctx context.Context, userID, resumeID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM resumes WHERE id = $1 AND user_id = $2`,
		resumeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
	}
	return nil
}
