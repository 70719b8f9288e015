package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/internal/repository/testutil"
)

func TestSendLogRepository_Record(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewSendLogRepository(db)
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := &domain.SendLogEntry{
		ID:          "log-1",
		Strategy:    domain.SendStrategyNetcoreV6,
		Recipient:   "qa@example.com",
		Subject:     "Quiz time",
		StatusCode:  200,
		Success:     true,
		DocumentSHA: "abc",
		CreatedAt:   createdAt,
	}

	t.Run("inserts the entry", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO send_logs \(id,strategy,recipient,subject,status_code,success,error,document_sha,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9\)`).
			WithArgs("log-1", "netcore_v6", "qa@example.com", "Quiz time", 200, true, "", "abc", createdAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Record(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO send_logs`).
			WillReturnError(errors.New("connection refused"))

		err := repo.Record(context.Background(), entry)
		assert.ErrorContains(t, err, "failed to insert send log")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSendLogRepository_ListRecent(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewSendLogRepository(db)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "strategy", "recipient", "subject", "status_code", "success", "error", "document_sha", "created_at"}

	t.Run("returns rows newest first", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("b", "smtp", "qa@example.com", "Second", 250, true, "", "sha-b", now).
			AddRow("a", "netcore_legacy", "qa@example.com", "First", 401, false, "API returned non-OK status code 401", "sha-a", now.Add(-time.Minute))

		mock.ExpectQuery(`SELECT id, strategy, recipient, subject, status_code, success, error, document_sha, created_at FROM send_logs ORDER BY created_at DESC LIMIT 2`).
			WillReturnRows(rows)

		entries, err := repo.ListRecent(context.Background(), 2)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b", entries[0].ID)
		assert.Equal(t, domain.SendStrategySMTP, entries[0].Strategy)
		assert.False(t, entries[1].Success)
		assert.Equal(t, 401, entries[1].StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM send_logs`).
			WillReturnRows(sqlmock.NewRows(columns))

		entries, err := repo.ListRecent(context.Background(), 10)

		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM send_logs`).
			WillReturnError(errors.New("relation does not exist"))

		_, err := repo.ListRecent(context.Background(), 10)
		assert.ErrorContains(t, err, "failed to query send logs")
	})

	t.Run("scan error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM send_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("x"))

		_, err := repo.ListRecent(context.Background(), 10)
		assert.ErrorContains(t, err, "failed to scan send log")
	})
}
