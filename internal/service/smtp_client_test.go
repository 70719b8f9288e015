package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/Notifuse/ampmailer/internal/domain"
)

func setupSMTPTest(t *testing.T, deliver smtpDeliverFunc) *SMTPSendClient {
	ctrl := gomock.NewController(t)
	client := NewSMTPSendClient(SMTPClientConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "user",
		Password:  "pass",
		TLSPolicy: "mandatory",
		Timeout:   5 * time.Second,
	}, newMockLogger(ctrl))
	client.deliver = deliver
	client.now = func() time.Time { return fixedNow }
	return client
}

func TestSMTPSendClient_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers a three part message", func(t *testing.T) {
		var raw string
		client := setupSMTPTest(t, func(ctx context.Context, cfg SMTPClientConfig, msg *mail.Msg) error {
			assert.Equal(t, "smtp.example.com", cfg.Host)
			data, err := renderMIMEMessage(msg)
			require.NoError(t, err)
			raw = string(data)
			return nil
		})

		result, err := client.Send(ctx, testSendRequest)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 250, result.StatusCode)
		assert.Equal(t, "accepted by smtp.example.com", result.Body)
		assert.NotEmpty(t, result.MessageID)
		assert.Equal(t, fixedNow, result.SentAt)

		assert.Contains(t, raw, "Subject: Take the quiz")
		assert.Contains(t, raw, "multipart/alternative")
		plain := strings.Index(raw, "Content-Type: text/plain")
		amp := strings.Index(raw, "Content-Type: text/x-amp-html")
		html := strings.Index(raw, "Content-Type: text/html")
		require.True(t, plain >= 0 && amp >= 0 && html >= 0, raw)
		assert.Less(t, plain, amp)
		assert.Less(t, amp, html)
	})

	t.Run("relay failure is reported in the result", func(t *testing.T) {
		client := setupSMTPTest(t, func(ctx context.Context, cfg SMTPClientConfig, msg *mail.Msg) error {
			return errors.New("535 authentication failed")
		})

		result, err := client.Send(ctx, testSendRequest)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, result.StatusCode)
		assert.Contains(t, result.Error, "535")
		assert.Equal(t, domain.SendStrategySMTP, result.Strategy)
	})

	t.Run("invalid request", func(t *testing.T) {
		client := setupSMTPTest(t, func(ctx context.Context, cfg SMTPClientConfig, msg *mail.Msg) error {
			t.Fatal("deliver must not be called")
			return nil
		})

		req := testSendRequest
		req.Subject = ""
		_, err := client.Send(ctx, req)

		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("missing host", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := NewSMTPSendClient(SMTPClientConfig{}, newMockLogger(ctrl))

		_, err := client.Send(ctx, testSendRequest)

		assert.True(t, domain.IsValidationError(err))
	})
}

func TestTLSPolicy(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("mandatory"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy("opportunistic"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy(""))
}
