package domain

import (
	"context"
	"net/http"
)

//go:generate mockgen -destination mocks/mock_http_client.go -package mocks github.com/Notifuse/ampmailer/internal/domain HTTPClient
//go:generate mockgen -destination mocks/mock_generator_service.go -package mocks github.com/Notifuse/ampmailer/internal/domain GeneratorService

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SendOptions carries the message fields of a send request
type SendOptions struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Preheader string `json:"preheader"`
}

// ServiceStatus summarises what the service is able to do right now
type ServiceStatus struct {
	AMPTemplateFound      bool             `json:"amp_template_found"`
	FallbackTemplateFound bool             `json:"fallback_template_found"`
	Host                  HostKind         `json:"host"`
	SendStrategy          SendStrategyKind `json:"send_strategy"`
	SendConfigured        bool             `json:"send_configured"`
	DefaultRecipient      string           `json:"default_recipient,omitempty"`
	Slots                 []ImageSlot      `json:"slots"`
	Vocabulary            []string         `json:"vocabulary"`
}

// GeneratorService builds AMP emails and sends test copies of them
type GeneratorService interface {
	// Status reports template availability and configured collaborators
	Status(ctx context.Context) (*ServiceStatus, error)

	// Generate runs one generation pass
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)

	// Send generates the document and sends it, returning both outcomes
	Send(ctx context.Context, req GenerationRequest, opts SendOptions) (*SessionView, error)

	// DiagnoseHosting uploads a 1x1 pixel to the configured image host
	DiagnoseHosting(ctx context.Context) (*HostingDiagnosis, error)

	// ListSends returns the most recent send attempts
	ListSends(ctx context.Context, limit int) ([]*SendLogEntry, error)
}
