package service

import (
	"fmt"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// NewEmailSendClient returns the client of the configured send strategy
func NewEmailSendClient(cfg config.SendConfig, httpClient domain.HTTPClient, logger logger.Logger) (domain.EmailSendClient, error) {
	strategy := domain.SendStrategyKind(cfg.Strategy)
	log := logger.WithField("strategy", cfg.Strategy)

	switch strategy {
	case domain.SendStrategyNetcoreV6, domain.SendStrategyNetcoreLegacy:
		return NewNetcoreClient(httpClient, strategy, cfg.Endpoint, cfg.APIKey, log), nil
	case domain.SendStrategySMTP:
		return NewSMTPSendClient(SMTPClientConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			TLSPolicy: cfg.SMTP.TLSPolicy,
			Timeout:   cfg.Timeout,
		}, log), nil
	case domain.SendStrategySES:
		client, err := NewSESSendClient(SESClientConfig{
			Region:    cfg.SES.Region,
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
		}, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown send strategy: %q", cfg.Strategy)
	}
}
