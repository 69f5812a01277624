// Package repository holds the persistence adapters for submission
// records and receipts. Both are optional; the engine runs fully
// in-memory when they are disabled.
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-nord/intake-api/internal/models"
)

// SubmissionRepository persists the audit trail of finalized sessions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Insert writes one submission record. A nil repository is a no-op so
// callers can wire it unconditionally.
func (r *SubmissionRepository) Insert(ctx context.Context, record *models.SubmissionRecord) error {
	if r == nil || r.db == nil {
		return nil
	}
	const query = `INSERT INTO submissions (id, session_id, email, export_key, export_url, file_count, submitted_at)
VALUES (:id, :session_id, :email, :export_key, :export_url, :file_count, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetBySessionID fetches the record for one session.
func (r *SubmissionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error) {
	const query = `SELECT id, session_id, email, export_key, export_url, file_count, submitted_at
FROM submissions WHERE session_id = $1`
	var record models.SubmissionRecord
	if err := r.db.GetContext(ctx, &record, query, sessionID); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecent returns the newest submissions, capped by limit.
func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]models.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, session_id, email, export_key, export_url, file_count, submitted_at
FROM submissions ORDER BY submitted_at DESC LIMIT $1`
	var records []models.SubmissionRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return records, nil
}
