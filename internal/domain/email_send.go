package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_email_send_client.go -package mocks github.com/Notifuse/ampmailer/internal/domain EmailSendClient

// SendStrategyKind names a way of delivering the test email
type SendStrategyKind string

const (
	// SendStrategyNetcoreV6 posts per-recipient personalizations with a bearer token
	SendStrategyNetcoreV6 SendStrategyKind = "netcore_v6"
	// SendStrategyNetcoreLegacy posts a flat payload with an api_key header
	SendStrategyNetcoreLegacy SendStrategyKind = "netcore_legacy"
	SendStrategySMTP          SendStrategyKind = "smtp"
	SendStrategySES           SendStrategyKind = "ses"
)

// Validate checks the strategy is known
func (k SendStrategyKind) Validate() error {
	switch k {
	case SendStrategyNetcoreV6, SendStrategyNetcoreLegacy, SendStrategySMTP, SendStrategySES:
		return nil
	}
	return fmt.Errorf("unknown send strategy: %q", k)
}

// MIME types of the three alternative parts
const (
	ContentTypeTextPlain = "text/plain"
	ContentTypeAMPHTML   = "text/x-amp-html"
	ContentTypeHTML      = "text/html"
)

// ContentPart is one alternative body of the message
type ContentPart struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Sender is the from identity of the message
type Sender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SendEmailRequest is the structured message handed to an EmailSendClient
type SendEmailRequest struct {
	From      Sender `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Preheader string `json:"preheader,omitempty"`
	AMPHTML   string `json:"amp_html"`
	HTML      string `json:"html"`
}

// Validate fails fast on anything a send client would need before the network
func (r SendEmailRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return NewValidationError("recipient is required")
	}
	if !govalidator.IsEmail(r.To) {
		return NewValidationError(fmt.Sprintf("recipient is not a valid email: %s", r.To))
	}
	if strings.TrimSpace(r.Subject) == "" {
		return NewValidationError("subject is required")
	}
	if strings.TrimSpace(r.From.Email) == "" {
		return NewValidationError("sender email is required")
	}
	if !govalidator.IsEmail(r.From.Email) {
		return NewValidationError(fmt.Sprintf("sender email is not valid: %s", r.From.Email))
	}
	return nil
}

// PlainText returns the text/plain alternative: the subject, followed by a
// blank line and the preheader when one is set
func (r SendEmailRequest) PlainText() string {
	if r.Preheader == "" {
		return r.Subject
	}
	return r.Subject + "\n\n" + r.Preheader
}

// Parts returns the three alternatives in the order mail clients expect them
func (r SendEmailRequest) Parts() []ContentPart {
	return []ContentPart{
		{Type: ContentTypeTextPlain, Value: r.PlainText()},
		{Type: ContentTypeAMPHTML, Value: r.AMPHTML},
		{Type: ContentTypeHTML, Value: r.HTML},
	}
}

// SendResult reports the outcome of a send attempt. Network failures are
// captured here with StatusCode 0 instead of being returned as errors.
type SendResult struct {
	Strategy   SendStrategyKind `json:"strategy"`
	Recipient  string           `json:"recipient"`
	StatusCode int              `json:"status_code"`
	Body       string           `json:"body"`
	MessageID  string           `json:"message_id,omitempty"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
	// ErrorType classifies a failure as recipient, provider, content or unknown
	ErrorType string    `json:"error_type,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// EmailSendClient delivers a message using one strategy
type EmailSendClient interface {
	Kind() SendStrategyKind
	// Send validates req and performs a single delivery attempt. A non-nil
	// error is only returned for validation failures.
	Send(ctx context.Context, req SendEmailRequest) (*SendResult, error)
}
