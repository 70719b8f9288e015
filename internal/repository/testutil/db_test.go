package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMockDB(t *testing.T) {
	t.Run("matches queries as regular expressions", func(t *testing.T) {
		db, mock, cleanup := SetupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .* FROM send_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		var count int
		require.NoError(t, db.QueryRow("SELECT count(*) FROM send_logs").Scan(&count))
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cleanup closes the database", func(t *testing.T) {
		db, mock, cleanup := SetupMockDB(t)

		cleanup()

		assert.Error(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
