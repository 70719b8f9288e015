// Command api serves the AMP mailer HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/app"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// replaced in tests
var (
	osExit       = os.Exit
	signalNotify = signal.Notify
)

// NewAppFunc builds the application; tests swap in their own
type NewAppFunc func(cfg *config.Config, opts ...app.AppOption) app.AppInterface

const (
	// shutdownTimeout leaves room for a send that is already talking to
	// the provider
	shutdownTimeout = 30 * time.Second
	// abandonGrace is how long a second signal waits for Shutdown to return
	abandonGrace = 2 * time.Second
)

var errShutdownAbandoned = errors.New("shutdown abandoned on second signal")

// logStartup records what this instance will generate with and send through
func logStartup(cfg *config.Config, appLogger logger.Logger) {
	appLogger.WithFields(map[string]interface{}{
		"addr":          fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"templates_dir": cfg.Templates.Dir,
		"image_host":    cfg.Hosting.Kind,
		"send_strategy": cfg.Send.Strategy,
		"send_log":      cfg.Database.Enabled(),
		"tracing":       cfg.Tracing.Enabled,
	}).Info("Starting AMP mailer API")
}

func runServer(cfg *config.Config, appLogger logger.Logger, newApp NewAppFunc) error {
	mailer := newApp(cfg, app.WithLogger(appLogger))
	if err := mailer.Initialize(); err != nil {
		appLogger.WithField("error", err.Error()).Error("AMP mailer API could not be initialized")
		return err
	}

	// a second signal while draining abandons the drain
	signals := make(chan os.Signal, 2)
	signalNotify(signals, os.Interrupt, syscall.SIGTERM)

	served := make(chan error, 1)
	go func() { served <- mailer.Start() }()

	select {
	case err := <-served:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		appLogger.WithField("error", err.Error()).Error("AMP mailer API stopped unexpectedly")
		return err
	case sig := <-signals:
		appLogger.WithFields(map[string]interface{}{
			"signal":    sig.String(),
			"in_flight": mailer.GetActiveRequestCount(),
		}).Info("Draining in-flight generate and send requests")
		return drain(mailer, signals, appLogger)
	}
}

// drain shuts the app down, giving in-flight sends up to shutdownTimeout
func drain(mailer app.AppInterface, signals <-chan os.Signal, appLogger logger.Logger) error {
	mailer.SetShutdownTimeout(shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- mailer.Shutdown(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			appLogger.WithField("error", err.Error()).Error("AMP mailer API did not drain cleanly")
			return err
		}
		appLogger.Info("AMP mailer API stopped")
		return nil
	case sig := <-signals:
		appLogger.WithFields(map[string]interface{}{
			"signal":    sig.String(),
			"in_flight": mailer.GetActiveRequestCount(),
		}).Warn("Second signal received, abandoning in-flight sends")
		cancel()
		select {
		case <-done:
		case <-time.After(abandonGrace):
		}
		return errShutdownAbandoned
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLoggerWithLevel(cfg.LogLevel)
	logStartup(cfg, appLogger)

	if err := runServer(cfg, appLogger, app.NewApp); err != nil {
		osExit(1)
	}
}
