package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// SMTPClientConfig holds the SMTP relay settings
type SMTPClientConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string
	Timeout   time.Duration
}

// smtpDeliverFunc hands a built message to the relay
type smtpDeliverFunc func(ctx context.Context, cfg SMTPClientConfig, msg *mail.Msg) error

// SMTPSendClient sends the three-part message through an SMTP relay
type SMTPSendClient struct {
	cfg     SMTPClientConfig
	deliver smtpDeliverFunc
	logger  logger.Logger
	now     func() time.Time
}

// NewSMTPSendClient creates a client that delivers with go-mail
func NewSMTPSendClient(cfg SMTPClientConfig, logger logger.Logger) *SMTPSendClient {
	return &SMTPSendClient{
		cfg:     cfg,
		deliver: dialAndSend,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *SMTPSendClient) Kind() domain.SendStrategyKind {
	return domain.SendStrategySMTP
}

func (c *SMTPSendClient) Send(ctx context.Context, req domain.SendEmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.cfg.Host == "" {
		return nil, domain.NewValidationError("SMTP host is required")
	}

	msg, err := buildMIMEMessage(req)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	result := &domain.SendResult{
		Strategy:  domain.SendStrategySMTP,
		Recipient: req.To,
		MessageID: messageID(msg),
		SentAt:    c.now().UTC(),
	}

	if err := c.deliver(ctx, c.cfg, msg); err != nil {
		c.logger.Error(fmt.Sprintf("Failed to send email over SMTP: %v", err))
		result.Body = err.Error()
		result.Error = err.Error()
		return result, nil
	}

	result.StatusCode = 250
	result.Body = "accepted by " + c.cfg.Host
	result.Success = true
	return result, nil
}

func dialAndSend(ctx context.Context, cfg SMTPClientConfig, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
