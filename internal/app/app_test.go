package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/internal/domain/mocks"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

const testAMPTemplate = `<!doctype html><html ⚡4email><head><meta charset="utf-8">
<script async src="https://cdn.ampproject.org/v0.js"></script>
<style amp4email-boilerplate>body{visibility:hidden}</style></head><body>
<div class="logo"><amp-img src="{{logo_img_url}}" width="{{logo_width}}" height="{{logo_height}}"></amp-img></div>
<p>{{quiz_question}}</p>
</body></html>`

// createTestConfig returns a configuration that needs no network access
func createTestConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.AMPTemplateFile), []byte(testAMPTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.FallbackTemplateFile), []byte(`<html><body>{{quiz_question}}</body></html>`), 0o644))

	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
		},
		Templates: config.TemplatesConfig{Dir: dir},
		Hosting: config.HostingConfig{
			Kind:     "none",
			Timeout:  time.Second,
			CacheTTL: time.Minute,
		},
		Send: config.SendConfig{
			Strategy:  "netcore_v6",
			FromEmail: "qa@example.com",
			Timeout:   time.Second,
		},
		RateLimit: config.RateLimitConfig{
			SendLimit:  5,
			SendWindow: time.Minute,
		},
	}
}

func quietLogger() logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard, "error")
}

func TestNewApp(t *testing.T) {
	cfg := createTestConfig(t)
	log := quietLogger()

	a := NewApp(cfg, WithLogger(log))

	assert.Equal(t, cfg, a.GetConfig())
	assert.Equal(t, log, a.GetLogger())
	assert.NotNil(t, a.GetMux())
	assert.Nil(t, a.GetDB())
	assert.False(t, a.IsServerCreated())
	assert.NotNil(t, a.GetShutdownContext())
}

func TestApp_Initialize(t *testing.T) {
	t.Run("runs without database or image host", func(t *testing.T) {
		a := NewApp(createTestConfig(t), WithLogger(quietLogger()))
		require.NoError(t, a.Initialize())
		t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

		require.NotNil(t, a.GetGeneratorService())
		assert.Nil(t, a.GetDB())

		rec := httptest.NewRecorder()
		a.GetMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/amp.status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var status domain.ServiceStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.True(t, status.AMPTemplateFound)
		assert.True(t, status.FallbackTemplateFound)
		assert.Equal(t, domain.HostKindNone, status.Host)
		assert.Equal(t, domain.SendStrategyNetcoreV6, status.SendStrategy)
		// SEND_ENDPOINT and SEND_API_KEY are missing
		assert.False(t, status.SendConfigured)
	})

	t.Run("generates through the mux", func(t *testing.T) {
		a := NewApp(createTestConfig(t), WithLogger(quietLogger()))
		require.NoError(t, a.Initialize())
		t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

		req := httptest.NewRequest(http.MethodPost, "/api/amp.preview", nil)
		rec := httptest.NewRecorder()
		a.GetMux().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "⚡4email")
		assert.NotContains(t, rec.Body.String(), "{{quiz_question}}")
	})

	t.Run("uses the injected image host", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		host := mocks.NewMockImageHost(ctrl)
		host.EXPECT().Kind().Return(domain.HostKindCloudinary).AnyTimes()

		a := NewApp(createTestConfig(t), WithLogger(quietLogger()), WithImageHost(host))
		require.NoError(t, a.Initialize())
		t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

		status, err := a.GetGeneratorService().Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.HostKindCloudinary, status.Host)
	})

	t.Run("unknown send strategy fails", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Send.Strategy = "pigeon"

		a := NewApp(cfg, WithLogger(quietLogger()))
		err := a.Initialize()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create send client")
	})

	t.Run("unknown image host fails", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Hosting.Kind = "ftp"

		a := NewApp(cfg, WithLogger(quietLogger()))
		err := a.Initialize()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create image host")
	})
}

func TestApp_InitDB_WithMockDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	a := NewApp(createTestConfig(t), WithLogger(quietLogger()), WithMockDB(db))
	require.NoError(t, a.Initialize())
	assert.Equal(t, db, a.GetDB())

	require.NoError(t, a.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_InitDB_CloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose().WillReturnError(errors.New("close failed"))

	a := NewApp(createTestConfig(t), WithLogger(quietLogger()), WithMockDB(db))
	require.NoError(t, a.Initialize())

	err = a.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
}

func TestApp_Handler(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.Server.CORSAllowOrigin = "https://console.example.com"

	a := NewApp(cfg, WithLogger(quietLogger()))
	require.NoError(t, a.Initialize())
	handler := a.(*App).Handler()

	t.Run("sets CORS headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://console.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("refuses requests once shutting down", func(t *testing.T) {
		require.NoError(t, a.Shutdown(context.Background()))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, int64(0), a.GetActiveRequestCount())
	})
}

func TestApp_StartAndShutdown(t *testing.T) {
	a := NewApp(createTestConfig(t), WithLogger(quietLogger()))
	require.NoError(t, a.Initialize())
	a.SetShutdownTimeout(5 * time.Second)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, a.WaitForServerStart(ctx))
	assert.True(t, a.IsServerCreated())

	require.NoError(t, a.Shutdown(ctx))

	select {
	case err := <-serverErr:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_WaitForServerStart_Timeout(t *testing.T) {
	a := NewApp(createTestConfig(t), WithLogger(quietLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.False(t, a.WaitForServerStart(ctx))
}
