package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// SESClientConfig holds the SES region and optional static credentials
type SESClientConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// SESSendClient sends the raw three-part MIME message with SendRawEmail,
// since the structured SendEmail API has no slot for an AMP part
type SESSendClient struct {
	client domain.SESClient
	logger logger.Logger
	now    func() time.Time
}

// NewSESSendClient creates a session for cfg and wraps an SES client
func NewSESSendClient(cfg SESClientConfig, logger logger.Logger) (*SESSendClient, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewSESSendClientWithClient(ses.New(sess), logger), nil
}

// NewSESSendClientWithClient wraps an existing SES client
func NewSESSendClientWithClient(client domain.SESClient, logger logger.Logger) *SESSendClient {
	return &SESSendClient{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func (c *SESSendClient) Kind() domain.SendStrategyKind {
	return domain.SendStrategySES
}

func (c *SESSendClient) Send(ctx context.Context, req domain.SendEmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	msg, err := buildMIMEMessage(req)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	raw, err := renderMIMEMessage(msg)
	if err != nil {
		return nil, err
	}

	result := &domain.SendResult{
		Strategy:  domain.SendStrategySES,
		Recipient: req.To,
		SentAt:    c.now().UTC(),
	}

	out, err := c.client.SendRawEmailWithContext(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(req.From.Email),
		Destinations: []*string{aws.String(req.To)},
		RawMessage:   &ses.RawMessage{Data: raw},
	})
	if err != nil {
		c.logger.Error(fmt.Sprintf("Failed to send raw email with SES: %v", err))
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) {
			result.StatusCode = reqErr.StatusCode()
		}
		result.Body = err.Error()
		result.Error = err.Error()
		return result, nil
	}

	result.StatusCode = 200
	result.Success = true
	if out != nil && out.MessageId != nil {
		result.MessageID = *out.MessageId
		result.Body = *out.MessageId
	}
	return result, nil
}
