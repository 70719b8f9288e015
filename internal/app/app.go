package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/database"
	"github.com/Notifuse/ampmailer/internal/domain"
	httpHandler "github.com/Notifuse/ampmailer/internal/http"
	"github.com/Notifuse/ampmailer/internal/http/middleware"
	"github.com/Notifuse/ampmailer/internal/repository"
	"github.com/Notifuse/ampmailer/internal/service"
	"github.com/Notifuse/ampmailer/pkg/cache"
	"github.com/Notifuse/ampmailer/pkg/logger"
	"github.com/Notifuse/ampmailer/pkg/ratelimiter"
	"github.com/Notifuse/ampmailer/pkg/tracing"
)

// uploadCacheCleanupInterval is how often expired upload results are swept
const uploadCacheCleanupInterval = 5 * time.Minute

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetGeneratorService() domain.GeneratorService

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitDB() error
	InitCollaborators() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	// Collaborators
	httpClient *http.Client
	imageHost  domain.ImageHost
	sendClient domain.EmailSendClient
	sendLog    domain.SendLogRepository
	uploads    *cache.TTLCache[*domain.UploadResult]
	limiter    *ratelimiter.Limiter

	// Services
	generatorService domain.GeneratorService

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	stopDBStats func()

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64
	requestWg       sync.WaitGroup
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithImageHost overrides the image host built from the configuration
func WithImageHost(host domain.ImageHost) AppOption {
	return func(a *App) {
		a.imageHost = host
	}
}

// WithSendClient overrides the send client built from the configuration
func WithSendClient(client domain.EmailSendClient) AppOption {
	return func(a *App) {
		a.sendClient = client
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing and metrics
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.Init(tracingConfig, a.logger); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if tracingConfig.Enabled {
		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitDB connects the send log database when one is configured
func (a *App) InitDB() error {
	if a.db != nil {
		a.sendLog = repository.NewSendLogRepository(a.db)
		return nil
	}

	if !a.config.Database.Enabled() {
		a.logger.Info("No database configured, send attempts will not be recorded")
		return nil
	}

	password := a.config.Database.Password
	maskedPassword := ""
	if len(password) > 0 {
		maskedPassword = fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
	}
	a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, user %s, sslmode %s, password: %s, dbname: %s", a.config.Database.Host, a.config.Database.Port, a.config.Database.User, a.config.Database.SSLMode, maskedPassword, a.config.Database.DBName))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, &a.config.Database, a.config.Environment, a.config.Tracing.Enabled)
	if err != nil {
		return err
	}

	if a.config.Tracing.Enabled {
		a.stopDBStats = ocsql.RecordStats(db, 5*time.Second)
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	a.db = db
	a.sendLog = repository.NewSendLogRepository(db)
	return nil
}

// InitCollaborators builds the image host and the send client selected by
// the configuration. Options passed to NewApp take precedence.
func (a *App) InitCollaborators() error {
	a.httpClient = tracing.NewHTTPClient(a.config.Hosting.Timeout)

	if a.imageHost == nil {
		host, err := service.NewImageHost(context.Background(), a.config.Hosting, a.httpClient, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create image host: %w", err)
		}
		a.imageHost = host
	}
	if a.imageHost != nil {
		a.logger.WithField("host", string(a.imageHost.Kind())).Info("Image hosting enabled")
	} else {
		a.logger.Info("Image hosting disabled, uploads are measured locally only")
	}

	if a.sendClient == nil {
		client, err := service.NewEmailSendClient(a.config.Send, tracing.NewHTTPClient(a.config.Send.Timeout), a.logger)
		if err != nil {
			return fmt.Errorf("failed to create send client: %w", err)
		}
		a.sendClient = client
	}
	if missing := a.config.Send.MissingSettings(); len(missing) > 0 {
		a.logger.WithField("missing", missing).Warn("Email sending is not fully configured")
	}

	return nil
}

// InitServices wires the generator service
func (a *App) InitServices() error {
	a.uploads = cache.NewTTLCache[*domain.UploadResult](uploadCacheCleanupInterval)
	resolver := service.NewAssetResolver(a.imageHost, a.uploads, a.config.Hosting.CacheTTL, a.config.Hosting.Timeout, a.logger)
	templates := service.NewFileTemplateLoader(a.config.Templates.Dir, a.logger)

	generator, err := service.NewGeneratorService(
		templates,
		resolver,
		a.imageHost,
		a.sendClient,
		a.sendLog,
		domain.DefaultSlots,
		service.SendSettings{
			From: domain.Sender{
				Email: a.config.Send.FromEmail,
				Name:  a.config.Send.FromName,
			},
			DefaultRecipient: a.config.Send.DefaultRecipient,
			Timeout:          a.config.Send.Timeout,
			Missing:          a.config.Send.MissingSettings(),
		},
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create generator service: %w", err)
	}
	a.generatorService = generator
	return nil
}

// InitHandlers registers the HTTP routes
func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	a.limiter = ratelimiter.New(ratelimiter.Policy{
		Limit:  a.config.RateLimit.SendLimit,
		Window: a.config.RateLimit.SendWindow,
	})

	generatorHandler := httpHandler.NewGeneratorHandler(
		a.generatorService,
		domain.DefaultSlots,
		a.config.Security.JWTSecret,
		a.limiter,
		a.logger,
	)
	generatorHandler.RegisterRoutes(a.mux)

	if a.config.Security.JWTSecret == "" {
		a.logger.Warn("JWT_SECRET is not set, the send endpoints are unauthenticated")
	}

	return nil
}

// Handler returns the mux wrapped in the server middleware chain
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
		a.logger.Info("OpenCensus tracing middleware enabled")
	}

	return middleware.CORSMiddleware(a.config.Server.CORSAllowOrigin)(handler)
}

// Start starts the HTTP server
func (a *App) Start() error {
	handler := a.Handler()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("port", a.config.Server.Port).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = max(remaining-time.Second, 0)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	var shutdownErr error
	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

// cleanupResources stops background sweepers and closes the database
func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.uploads != nil {
		a.uploads.Stop()
	}
	if a.stopDBStats != nil {
		a.stopDBStats()
	}

	if a.db != nil {
		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created. It returns false
// if ctx expires first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		a.logger.Error("serverStarted channel is nil - server initialization error")
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting AMP mailer")

	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.InitDB(); err != nil {
		return err
	}

	if err := a.InitCollaborators(); err != nil {
		return err
	}

	if err := a.InitServices(); err != nil {
		return err
	}

	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection, nil when no database is configured
func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetGeneratorService() domain.GeneratorService {
	return a.generatorService
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout).Info("Shutdown timeout configured")
}

// GetShutdownContext returns the context cancelled when shutdown starts
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and refuses new ones
// once shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
