package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/app"
	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

func createTestConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.AMPTemplateFile), []byte(`<!doctype html><html ⚡4email><body>{{quiz_question}}</body></html>`), 0o644))

	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Templates:   config.TemplatesConfig{Dir: dir},
		Hosting:     config.HostingConfig{Kind: "none", Timeout: time.Second, CacheTTL: time.Minute},
		Send:        config.SendConfig{Strategy: "netcore_v6", Timeout: time.Second},
	}
}

// notifyAfter replaces signalNotify so the first registered channel receives
// an interrupt after delay
func notifyAfter(t *testing.T, delay time.Duration) {
	original := signalNotify
	t.Cleanup(func() { signalNotify = original })

	first := true
	signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {
		if !first {
			return
		}
		first = false
		go func() {
			time.Sleep(delay)
			c <- os.Interrupt
		}()
	}
}

func TestRunServer_GracefulShutdown(t *testing.T) {
	notifyAfter(t, 100*time.Millisecond)

	err := runServer(createTestConfig(t), logger.NewLoggerWithWriter(io.Discard, "error"), app.NewApp)

	assert.NoError(t, err)
}

func TestRunServer_InitializeError(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.Send.Strategy = "pigeon"

	err := runServer(cfg, logger.NewLoggerWithWriter(io.Discard, "error"), app.NewApp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "send client")
}

// notifySequence replaces signalNotify so the registered channel receives
// each signal in turn, gap apart
func notifySequence(t *testing.T, gap time.Duration, sigs ...os.Signal) {
	original := signalNotify
	t.Cleanup(func() { signalNotify = original })

	signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {
		go func() {
			for _, sig := range sigs {
				time.Sleep(gap)
				c <- sig
			}
		}()
	}
}

// blockingApp serves until Shutdown, and Shutdown only returns once its
// context is done
type blockingApp struct {
	app.AppInterface
	startErr error
	stopped  chan struct{}
}

func newBlockingApp() *blockingApp {
	return &blockingApp{stopped: make(chan struct{})}
}

func (b *blockingApp) Initialize() error { return nil }

func (b *blockingApp) Start() error {
	if b.startErr != nil {
		return b.startErr
	}
	<-b.stopped
	return http.ErrServerClosed
}

func (b *blockingApp) Shutdown(ctx context.Context) error {
	<-ctx.Done()
	close(b.stopped)
	return ctx.Err()
}

func (b *blockingApp) SetShutdownTimeout(time.Duration) {}

func (b *blockingApp) GetActiveRequestCount() int64 { return 1 }

func (b *blockingApp) factory() NewAppFunc {
	return func(*config.Config, ...app.AppOption) app.AppInterface { return b }
}

func TestRunServer_SecondSignalAbandonsDrain(t *testing.T) {
	notifySequence(t, 50*time.Millisecond, os.Interrupt, syscall.SIGTERM)
	testLogger := logger.NewTestLogger(t)

	started := time.Now()
	err := runServer(createTestConfig(t), testLogger, newBlockingApp().factory())

	assert.ErrorIs(t, err, errShutdownAbandoned)
	assert.Less(t, time.Since(started), shutdownTimeout)

	var warned bool
	for _, entry := range testLogger.Entries() {
		if strings.Contains(entry, "abandoning in-flight sends") && strings.Contains(entry, "signal=terminated") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning for the second signal")
}

func TestRunServer_StartError(t *testing.T) {
	notifySequence(t, time.Hour)
	b := newBlockingApp()
	b.startErr = errors.New("listen tcp: address already in use")

	err := runServer(createTestConfig(t), logger.NewLoggerWithWriter(io.Discard, "error"), b.factory())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
}

func TestLogStartup(t *testing.T) {
	cfg := createTestConfig(t)
	testLogger := logger.NewTestLogger(t)

	logStartup(cfg, testLogger)

	entries := testLogger.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "Starting AMP mailer API")
	assert.Contains(t, entries[0], "templates_dir="+cfg.Templates.Dir)
	assert.Contains(t, entries[0], "image_host=none")
	assert.Contains(t, entries[0], "send_strategy=netcore_v6")
	assert.Contains(t, entries[0], "send_log=false")
}
