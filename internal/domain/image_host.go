package domain

import (
	"context"
	"fmt"
)

//go:generate mockgen -destination mocks/mock_image_host.go -package mocks github.com/Notifuse/ampmailer/internal/domain ImageHost

// HostKind names an image hosting backend
type HostKind string

const (
	HostKindCloudinary HostKind = "cloudinary"
	HostKindS3         HostKind = "s3"
	HostKindNone       HostKind = "none"
)

func (k HostKind) Validate() error {
	switch k {
	case HostKindCloudinary, HostKindS3, HostKindNone:
		return nil
	}
	return fmt.Errorf("unknown image host kind: %q", k)
}

// UploadResult is what a host reports after storing an image. Width and
// Height are zero when the host did not report them.
type UploadResult struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ImageHost stores image bytes under identifier and returns a public url.
// Implementations fail with *ConfigurationError when they lack settings and
// with *TransportError on network or HTTP failures.
type ImageHost interface {
	Kind() HostKind
	Upload(ctx context.Context, data []byte, identifier string) (*UploadResult, error)
}

// HostingDiagnosis reports the outcome of a test upload
type HostingDiagnosis struct {
	Host       HostKind `json:"host"`
	Identifier string   `json:"identifier"`
	Success    bool     `json:"success"`
	URL        string   `json:"url,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	StatusCode int      `json:"status_code,omitempty"`
	Error      string   `json:"error,omitempty"`
}
