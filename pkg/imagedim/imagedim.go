// Package imagedim measures raster images without decoding their pixels.
package imagedim

import (
	"bytes"
	"fmt"
	"image"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError is returned when data is not a supported raster image.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("cannot measure %s image: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("cannot measure image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode returns the pixel width and height of a PNG, JPEG, GIF, WebP, BMP
// or TIFF image. Vector formats such as SVG are rejected.
func Decode(data []byte) (width, height int, err error) {
	if len(data) == 0 {
		return 0, 0, &DecodeError{Err: fmt.Errorf("empty input")}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, &DecodeError{Format: sniffFormat(data), Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, &DecodeError{Format: format, Err: fmt.Errorf("non-positive dimensions %dx%d", cfg.Width, cfg.Height)}
	}
	return cfg.Width, cfg.Height, nil
}

// Format reports the registered format name of data, or "" if unknown.
func Format(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return sniffFormat(data)
	}
	return format
}

func sniffFormat(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimSpace(head)
	if bytes.HasPrefix(trimmed, []byte("<svg")) || (bytes.HasPrefix(trimmed, []byte("<?xml")) && bytes.Contains(head, []byte("<svg"))) {
		return "svg"
	}
	return ""
}
