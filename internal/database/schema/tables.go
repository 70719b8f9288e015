package schema

// TableDefinitions contains the statements creating the send log tables.
// They are idempotent and run on every start.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS send_logs (
		id VARCHAR(36) PRIMARY KEY,
		strategy VARCHAR(32) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(998) NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL DEFAULT FALSE,
		error TEXT NOT NULL DEFAULT '',
		document_sha CHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_send_logs_created_at ON send_logs (created_at DESC)`,
}
