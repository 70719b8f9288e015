package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Notifuse/ampmailer/internal/database/schema"
)

// InitializeDatabase creates the send log tables if they don't exist
func InitializeDatabase(ctx context.Context, db *sql.DB) error {
	for _, query := range schema.TableDefinitions {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
