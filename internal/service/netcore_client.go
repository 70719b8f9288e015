package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

type netcoreAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type netcoreRecipients struct {
	To      []netcoreAddress `json:"to"`
	Subject string           `json:"subject,omitempty"`
}

type netcorePayload struct {
	From             netcoreAddress       `json:"from"`
	Subject          string               `json:"subject,omitempty"`
	Content          []domain.ContentPart `json:"content"`
	Personalizations []netcoreRecipients  `json:"personalizations"`
}

// NetcoreClient sends through the Netcore email API. The v6 strategy nests
// the subject in each personalization and authenticates with a bearer token;
// the legacy strategy sends a flat payload with an api_key header.
type NetcoreClient struct {
	httpClient domain.HTTPClient
	strategy   domain.SendStrategyKind
	endpoint   string
	apiKey     string
	logger     logger.Logger
	now        func() time.Time
}

// NewNetcoreClient creates a client for strategy, which must be one of the
// two Netcore strategies
func NewNetcoreClient(httpClient domain.HTTPClient, strategy domain.SendStrategyKind, endpoint, apiKey string, logger logger.Logger) *NetcoreClient {
	return &NetcoreClient{
		httpClient: httpClient,
		strategy:   strategy,
		endpoint:   endpoint,
		apiKey:     apiKey,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *NetcoreClient) Kind() domain.SendStrategyKind {
	return c.strategy
}

func (c *NetcoreClient) payload(req domain.SendEmailRequest) netcorePayload {
	p := netcorePayload{
		From:    netcoreAddress{Email: req.From.Email, Name: req.From.Name},
		Content: req.Parts(),
	}
	if c.strategy == domain.SendStrategyNetcoreLegacy {
		p.Subject = req.Subject
		p.Personalizations = []netcoreRecipients{{To: []netcoreAddress{{Email: req.To}}}}
		return p
	}
	p.Personalizations = []netcoreRecipients{{
		To:      []netcoreAddress{{Email: req.To}},
		Subject: req.Subject,
	}}
	return p
}

// Send posts the message once. Transport failures are reported in the
// result with status code 0.
func (c *NetcoreClient) Send(ctx context.Context, req domain.SendEmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.endpoint == "" || c.apiKey == "" {
		return nil, domain.NewValidationError("send endpoint and API key are required")
	}

	result := &domain.SendResult{
		Strategy:  c.strategy,
		Recipient: req.To,
		SentAt:    c.now().UTC(),
	}

	jsonData, err := json.Marshal(c.payload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		c.logger.Error(fmt.Sprintf("Failed to create Netcore send request: %v", err))
		result.Body = err.Error()
		result.Error = err.Error()
		return result, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.strategy == domain.SendStrategyNetcoreLegacy {
		httpReq.Header.Set("api_key", c.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Failed to execute Netcore send request: %v", err))
		result.Body = err.Error()
		result.Error = err.Error()
		return result, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = []byte(err.Error())
	}

	result.StatusCode = resp.StatusCode
	result.Body = string(body)
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300

	if !result.Success {
		c.logger.Error(fmt.Sprintf("Netcore API returned non-OK status code %d: %s", resp.StatusCode, string(body)))
		result.Error = fmt.Sprintf("API returned non-OK status code %d", resp.StatusCode)
		if msg := gjson.GetBytes(body, "error.0.message").String(); msg != "" {
			result.Error += ": " + msg
		} else if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			result.Error += ": " + msg
		}
		return result, nil
	}

	result.MessageID = firstNonEmpty(
		gjson.GetBytes(body, "data.message_id").String(),
		gjson.GetBytes(body, "message_id").String(),
	)
	return result, nil
}
