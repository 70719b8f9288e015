package imagedim

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Run("one pixel png", func(t *testing.T) {
		w, h, err := Decode(encodePNG(t, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, 1, w)
		assert.Equal(t, 1, h)
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 200)), nil))

		w, h, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 320, w)
		assert.Equal(t, 200, h)
	})

	t.Run("gif", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 16, 9), []color.Color{color.White, color.Black}), nil))

		w, h, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 16, w)
		assert.Equal(t, 9, h)
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := Decode(nil)
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
	})

	t.Run("svg is rejected", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="160" height="48"></svg>`)
		_, _, err := Decode(svg)

		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "svg", decodeErr.Format)
		assert.Contains(t, err.Error(), "svg")
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := Decode([]byte("definitely not an image"))
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "", decodeErr.Format)
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "png", Format(encodePNG(t, 2, 2)))
	assert.Equal(t, "svg", Format([]byte(`<?xml version="1.0"?><svg></svg>`)))
	assert.Equal(t, "", Format([]byte("nope")))
}
