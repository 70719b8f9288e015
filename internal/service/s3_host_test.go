package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/internal/domain"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Host_Upload(t *testing.T) {
	ctx := context.Background()
	cfg := S3HostConfig{Bucket: "assets", Region: "eu-west-1", Prefix: "amp-assets/"}

	t.Run("uploads png and measures it", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fake := &fakeS3{}
		host := NewS3HostWithClient(fake, cfg, newMockLogger(ctrl))
		data := encodePNG(t, 120, 40)

		res, err := host.Upload(ctx, data, "logo-abc")

		require.NoError(t, err)
		assert.Equal(t, "https://assets.s3.eu-west-1.amazonaws.com/amp-assets/logo-abc", res.URL)
		assert.Equal(t, 120, res.Width)
		assert.Equal(t, 40, res.Height)
		assert.Equal(t, "assets", aws.ToString(fake.input.Bucket))
		assert.Equal(t, "amp-assets/logo-abc", aws.ToString(fake.input.Key))
		assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
		assert.Equal(t, data, fake.body)
		assert.Equal(t, domain.HostKindS3, host.Kind())
	})

	t.Run("svg gets its content type and no dimensions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fake := &fakeS3{}
		host := NewS3HostWithClient(fake, cfg, newMockLogger(ctrl))

		res, err := host.Upload(ctx, []byte(testSVG), "logo-svg")

		require.NoError(t, err)
		assert.Equal(t, "image/svg+xml", aws.ToString(fake.input.ContentType))
		assert.Zero(t, res.Width)
		assert.Zero(t, res.Height)
	})

	t.Run("public base url and custom endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		withBase := NewS3HostWithClient(&fakeS3{}, S3HostConfig{Bucket: "b", Region: "r", PublicBaseURL: "https://cdn.example.com/"}, newMockLogger(ctrl))
		res, err := withBase.Upload(ctx, encodePNG(t, 1, 1), "k")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/k", res.URL)

		withEndpoint := NewS3HostWithClient(&fakeS3{}, S3HostConfig{Bucket: "b", Region: "r", Endpoint: "http://localhost:9000/"}, newMockLogger(ctrl))
		res, err = withEndpoint.Upload(ctx, encodePNG(t, 1, 1), "k")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/b/k", res.URL)
	})

	t.Run("api error is a transport error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fake := &fakeS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}
		host := NewS3HostWithClient(fake, cfg, newMockLogger(ctrl))

		_, err := host.Upload(ctx, encodePNG(t, 1, 1), "k")

		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "AccessDenied", te.Body)
	})

	t.Run("network error is a transport error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		host := NewS3HostWithClient(&fakeS3{err: errors.New("dial tcp: refused")}, cfg, newMockLogger(ctrl))

		_, err := host.Upload(ctx, encodePNG(t, 1, 1), "k")

		assert.True(t, domain.IsHostingUnavailable(err))
	})

	t.Run("missing bucket leaves the host unconfigured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		host, err := NewS3Host(ctx, S3HostConfig{Region: "eu-west-1"}, nil, newMockLogger(ctrl))
		require.NoError(t, err)

		_, err = host.Upload(ctx, encodePNG(t, 1, 1), "k")

		var ce *domain.ConfigurationError
		require.ErrorAs(t, err, &ce)
	})
}
