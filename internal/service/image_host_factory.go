package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// NewImageHost returns the host selected by cfg.Kind, or nil for "none"
func NewImageHost(ctx context.Context, cfg config.HostingConfig, httpClient *http.Client, logger logger.Logger) (domain.ImageHost, error) {
	switch domain.HostKind(cfg.Kind) {
	case domain.HostKindCloudinary:
		return NewCloudinaryHost(httpClient, cfg.Cloudinary.Endpoint, cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset, logger), nil
	case domain.HostKindS3:
		host, err := NewS3Host(ctx, S3HostConfig{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Endpoint:      cfg.S3.Endpoint,
			PublicBaseURL: cfg.S3.PublicBaseURL,
			Prefix:        cfg.S3.Prefix,
		}, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return host, nil
	case domain.HostKindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown image host kind: %q", cfg.Kind)
	}
}
