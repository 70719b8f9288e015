package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_send_log_repository.go -package mocks github.com/Notifuse/ampmailer/internal/domain SendLogRepository

// SendLogEntry records one send attempt
type SendLogEntry struct {
	ID          string           `json:"id"`
	Strategy    SendStrategyKind `json:"strategy"`
	Recipient   string           `json:"recipient"`
	Subject     string           `json:"subject"`
	StatusCode  int              `json:"status_code"`
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	DocumentSHA string           `json:"document_sha"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewSendLogEntry builds the log entry of result for the document sent
func NewSendLogEntry(id string, result *SendResult, subject, documentSHA string) *SendLogEntry {
	return &SendLogEntry{
		ID:          id,
		Strategy:    result.Strategy,
		Recipient:   result.Recipient,
		Subject:     subject,
		StatusCode:  result.StatusCode,
		Success:     result.Success,
		Error:       result.Error,
		DocumentSHA: documentSHA,
		CreatedAt:   result.SentAt,
	}
}

// SendLogRepository persists send attempts
type SendLogRepository interface {
	Record(ctx context.Context, entry *SendLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]*SendLogEntry, error)
}
