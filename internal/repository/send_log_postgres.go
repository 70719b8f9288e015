package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Notifuse/ampmailer/internal/domain"
)

var sendLogColumns = []string{
	"id", "strategy", "recipient", "subject", "status_code", "success", "error", "document_sha", "created_at",
}

// SendLogRepository implements domain.SendLogRepository using PostgreSQL
type SendLogRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewSendLogRepository creates a new SendLogRepository
func NewSendLogRepository(db *sql.DB) *SendLogRepository {
	return &SendLogRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record inserts one send attempt
func (r *SendLogRepository) Record(ctx context.Context, entry *domain.SendLogEntry) error {
	query, args, err := r.psql.
		Insert("send_logs").
		Columns(sendLogColumns...).
		Values(
			entry.ID,
			string(entry.Strategy),
			entry.Recipient,
			entry.Subject,
			entry.StatusCode,
			entry.Success,
			entry.Error,
			entry.DocumentSHA,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert send log: %w", err)
	}
	return nil
}

// ListRecent returns up to limit entries, newest first
func (r *SendLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SendLogEntry, error) {
	query, args, err := r.psql.
		Select(sendLogColumns...).
		From("send_logs").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query send logs: %w", err)
	}
	defer rows.Close()

	entries := []*domain.SendLogEntry{}
	for rows.Next() {
		var entry domain.SendLogEntry
		var strategy string
		if err := rows.Scan(
			&entry.ID,
			&strategy,
			&entry.Recipient,
			&entry.Subject,
			&entry.StatusCode,
			&entry.Success,
			&entry.Error,
			&entry.DocumentSHA,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan send log: %w", err)
		}
		entry.Strategy = domain.SendStrategyKind(strategy)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate send logs: %w", err)
	}
	return entries, nil
}
