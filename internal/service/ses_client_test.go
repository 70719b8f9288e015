package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/internal/domain/mocks"
)

func setupSESTest(t *testing.T) (*SESSendClient, *mocks.MockSESClient) {
	ctrl := gomock.NewController(t)
	sesClient := mocks.NewMockSESClient(ctrl)
	client := NewSESSendClientWithClient(sesClient, newMockLogger(ctrl))
	client.now = func() time.Time { return fixedNow }
	return client, sesClient
}

func TestSESSendClient_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the raw message", func(t *testing.T) {
		client, sesClient := setupSESTest(t)

		sesClient.EXPECT().
			SendRawEmailWithContext(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ aws.Context, input *ses.SendRawEmailInput, _ ...request.Option) (*ses.SendRawEmailOutput, error) {
				assert.Equal(t, "sender@example.com", aws.StringValue(input.Source))
				require.Len(t, input.Destinations, 1)
				assert.Equal(t, "someone@example.com", aws.StringValue(input.Destinations[0]))
				raw := string(input.RawMessage.Data)
				assert.True(t, strings.Contains(raw, "text/x-amp-html"))
				return &ses.SendRawEmailOutput{MessageId: aws.String("ses-123")}, nil
			})

		result, err := client.Send(ctx, testSendRequest)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 200, result.StatusCode)
		assert.Equal(t, "ses-123", result.MessageID)
		assert.Equal(t, domain.SendStrategySES, client.Kind())
	})

	t.Run("request failure keeps the status code", func(t *testing.T) {
		client, sesClient := setupSESTest(t)

		reqErr := awserr.NewRequestFailure(awserr.New("MessageRejected", "Email address is not verified", nil), 400, "req-1")
		sesClient.EXPECT().
			SendRawEmailWithContext(gomock.Any(), gomock.Any()).
			Return(nil, reqErr)

		result, err := client.Send(ctx, testSendRequest)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 400, result.StatusCode)
		assert.Contains(t, result.Error, "not verified")
	})

	t.Run("network failure", func(t *testing.T) {
		client, sesClient := setupSESTest(t)

		sesClient.EXPECT().
			SendRawEmailWithContext(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("dial tcp: timeout"))

		result, err := client.Send(ctx, testSendRequest)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, result.StatusCode)
	})

	t.Run("invalid sender", func(t *testing.T) {
		client, _ := setupSESTest(t)

		req := testSendRequest
		req.From.Email = ""
		_, err := client.Send(ctx, req)

		assert.True(t, domain.IsValidationError(err))
	})
}
