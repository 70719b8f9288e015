package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// CloudinaryHost uploads images to Cloudinary with an unsigned upload preset
type CloudinaryHost struct {
	httpClient   domain.HTTPClient
	endpoint     string
	cloudName    string
	uploadPreset string
	logger       logger.Logger
}

// NewCloudinaryHost creates a Cloudinary host. endpoint is the API base,
// usually https://api.cloudinary.com/v1_1.
func NewCloudinaryHost(httpClient domain.HTTPClient, endpoint, cloudName, uploadPreset string, logger logger.Logger) *CloudinaryHost {
	return &CloudinaryHost{
		httpClient:   httpClient,
		endpoint:     endpoint,
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		logger:       logger,
	}
}

func (h *CloudinaryHost) Kind() domain.HostKind {
	return domain.HostKindCloudinary
}

// Upload posts the image as multipart form data with identifier as public_id
func (h *CloudinaryHost) Upload(ctx context.Context, data []byte, identifier string) (*domain.UploadResult, error) {
	if h.cloudName == "" || h.uploadPreset == "" {
		return nil, domain.NewConfigurationError("cloudinary", "CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET are required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.WriteField("upload_preset", h.uploadPreset); err != nil {
		return nil, fmt.Errorf("failed to write upload_preset: %w", err)
	}
	if err := writer.WriteField("public_id", identifier); err != nil {
		return nil, fmt.Errorf("failed to write public_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", h.endpoint, h.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		h.logger.Error(fmt.Sprintf("Failed to create Cloudinary upload request: %v", err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error(fmt.Sprintf("Failed to execute Cloudinary upload request: %v", err))
		return nil, &domain.TransportError{Op: "cloudinary upload", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: "cloudinary upload", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := gjson.GetBytes(respBody, "error.message").String()
		h.logger.Error(fmt.Sprintf("Cloudinary API returned non-OK status code %d: %s", resp.StatusCode, string(respBody)))
		return nil, &domain.TransportError{Op: "cloudinary upload", StatusCode: resp.StatusCode, Body: firstNonEmpty(message, string(respBody))}
	}

	if !gjson.ValidBytes(respBody) {
		return nil, &domain.TransportError{Op: "cloudinary upload", StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid JSON response")}
	}

	parsed := gjson.ParseBytes(respBody)
	result := &domain.UploadResult{
		URL:    firstNonEmpty(parsed.Get("secure_url").String(), parsed.Get("url").String()),
		Width:  int(parsed.Get("width").Int()),
		Height: int(parsed.Get("height").Int()),
	}
	if result.URL == "" {
		return nil, &domain.TransportError{Op: "cloudinary upload", StatusCode: resp.StatusCode, Err: fmt.Errorf("response has no secure_url")}
	}

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
