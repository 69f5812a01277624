package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-nord/intake-api/internal/models"
)

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSubmissionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectExec("INSERT INTO submissions").
		WithArgs("rec-1", "sess-1", "client@example.com", "sess-1/20260101_120000/export.json",
			sqlmock.AnyArg(), 6, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.SubmissionRecord{
		ID:          "rec-1",
		SessionID:   "sess-1",
		Email:       "client@example.com",
		ExportKey:   "sess-1/20260101_120000/export.json",
		ExportURL:   "https://files.example.com/sess-1/20260101_120000/export.json",
		FileCount:   6,
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGetBySessionID(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "session_id", "email", "export_key", "export_url", "file_count", "submitted_at"}).
		AddRow("rec-1", "sess-1", "client@example.com", "k", "u", 6, time.Now())
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("sess-1").
		WillReturnRows(rows)

	record, err := repo.GetBySessionID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", record.Email)
	assert.Equal(t, 6, record.FileCount)
}

func TestSubmissionRepositoryListRecent(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "session_id", "email", "export_key", "export_url", "file_count", "submitted_at"}).
		AddRow("rec-2", "sess-2", "b@example.com", "k2", "u2", 5, time.Now()).
		AddRow("rec-1", "sess-1", "a@example.com", "k1", "u1", 6, time.Now().Add(-time.Hour))
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(10).
		WillReturnRows(rows)

	records, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sess-2", records[0].SessionID)
}
