package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/imagedim"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// S3PutObjectAPI is the part of the S3 client the host needs
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3HostConfig holds the bucket settings of an S3 or S3-compatible store
type S3HostConfig struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
	Prefix        string
}

// S3Host stores images in a bucket. S3 does not report image dimensions, so
// they are measured locally when the bytes are a supported raster format.
type S3Host struct {
	client S3PutObjectAPI
	cfg    S3HostConfig
	logger logger.Logger
}

// NewS3Host builds an S3 client from cfg. A nil httpClient uses the SDK default.
func NewS3Host(ctx context.Context, cfg S3HostConfig, httpClient *http.Client, logger logger.Logger) (*S3Host, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return &S3Host{cfg: cfg, logger: logger}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3HostWithClient(client, cfg, logger), nil
}

// NewS3HostWithClient creates a host around an existing client
func NewS3HostWithClient(client S3PutObjectAPI, cfg S3HostConfig, logger logger.Logger) *S3Host {
	return &S3Host{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (h *S3Host) Kind() domain.HostKind {
	return domain.HostKindS3
}

// Upload puts the image under prefix+identifier with a sniffed content type
func (h *S3Host) Upload(ctx context.Context, data []byte, identifier string) (*domain.UploadResult, error) {
	if h.client == nil {
		return nil, domain.NewConfigurationError("s3", "S3_BUCKET and S3_REGION are required")
	}

	key := h.cfg.Prefix + identifier
	contentType := http.DetectContentType(data)
	if imagedim.Format(data) == "svg" {
		contentType = "image/svg+xml"
	}

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(h.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			h.logger.Error(fmt.Sprintf("S3 rejected upload of %s: %s: %s", key, apiErr.ErrorCode(), apiErr.ErrorMessage()))
			return nil, &domain.TransportError{Op: "s3 upload", Body: apiErr.ErrorCode(), Err: err}
		}
		h.logger.Error(fmt.Sprintf("Failed to upload %s to S3: %v", key, err))
		return nil, &domain.TransportError{Op: "s3 upload", Err: err}
	}

	result := &domain.UploadResult{URL: h.publicURL(key)}
	if w, hgt, derr := imagedim.Decode(data); derr == nil {
		result.Width, result.Height = w, hgt
	}
	return result, nil
}

func (h *S3Host) publicURL(key string) string {
	base := h.cfg.PublicBaseURL
	if base == "" {
		if h.cfg.Endpoint != "" {
			base = fmt.Sprintf("%s/%s", strings.TrimSuffix(h.cfg.Endpoint, "/"), h.cfg.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", h.cfg.Bucket, h.cfg.Region)
		}
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
