package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.0"

type Config struct {
	Server      ServerConfig
	Templates   TemplatesConfig
	Hosting     HostingConfig
	Send        SendConfig
	Security    SecurityConfig
	RateLimit   RateLimitConfig
	Database    DatabaseConfig
	Tracing     TracingConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
	SSL  SSLConfig
	// CORSAllowOrigin is sent as Access-Control-Allow-Origin
	CORSAllowOrigin string
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type TemplatesConfig struct {
	Dir string
}

type HostingConfig struct {
	// Kind is cloudinary, s3 or none
	Kind       string
	Timeout    time.Duration
	CacheTTL   time.Duration
	Cloudinary CloudinaryConfig
	S3         S3Config
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	Endpoint     string
}

type S3Config struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
	Prefix        string
}

type SendConfig struct {
	// Strategy is netcore_v6, netcore_legacy, smtp or ses
	Strategy         string
	Endpoint         string
	APIKey           string
	FromEmail        string
	FromName         string
	DefaultRecipient string
	Timeout          time.Duration
	SMTP             SMTPConfig
	SES              SESConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSPolicy is mandatory, opportunistic or none
	TLSPolicy string
}

type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

type SecurityConfig struct {
	// JWTSecret signs tokens accepted by the send endpoint; empty disables auth
	JWTSecret string
}

type RateLimitConfig struct {
	SendLimit  int
	SendWindow time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether the optional send log database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64
	Environment         string

	// jaeger, zipkin, stackdriver, datadog, xray or none
	TraceExporter string

	JaegerEndpoint       string
	ZipkinEndpoint       string
	StackdriverProjectID string
	DatadogAgentAddress  string
	DatadogAPIKey        string
	XRayRegion           string

	// Comma separated list of prometheus, stackdriver, datadog
	MetricsExporter string
	PrometheusPort  int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SSL_ENABLED", false)
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("TEMPLATES_DIR", "templates")

	v.SetDefault("HOSTING_KIND", "cloudinary")
	v.SetDefault("HOSTING_TIMEOUT", "15s")
	v.SetDefault("UPLOAD_CACHE_TTL", "1h")
	v.SetDefault("CLOUDINARY_ENDPOINT", "https://api.cloudinary.com/v1_1")
	v.SetDefault("S3_PREFIX", "amp-assets/")

	v.SetDefault("SEND_STRATEGY", "netcore_v6")
	v.SetDefault("SEND_TIMEOUT", "15s")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TLS_POLICY", "opportunistic")

	v.SetDefault("SEND_RATE_LIMIT", 10)
	v.SetDefault("SEND_RATE_WINDOW", "1m")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "ampmailer")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "ampmailer")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")
	v.SetDefault("TRACING_PROMETHEUS_PORT", 9464)

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	environment := v.GetString("ENVIRONMENT")

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
			CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		Templates: TemplatesConfig{
			Dir: v.GetString("TEMPLATES_DIR"),
		},
		Hosting: HostingConfig{
			Kind:     strings.ToLower(v.GetString("HOSTING_KIND")),
			Timeout:  v.GetDuration("HOSTING_TIMEOUT"),
			CacheTTL: v.GetDuration("UPLOAD_CACHE_TTL"),
			Cloudinary: CloudinaryConfig{
				CloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
				UploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
				Endpoint:     strings.TrimRight(v.GetString("CLOUDINARY_ENDPOINT"), "/"),
			},
			S3: S3Config{
				Bucket:        v.GetString("S3_BUCKET"),
				Region:        v.GetString("S3_REGION"),
				AccessKey:     v.GetString("S3_ACCESS_KEY"),
				SecretKey:     v.GetString("S3_SECRET_KEY"),
				Endpoint:      v.GetString("S3_ENDPOINT"),
				PublicBaseURL: strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
				Prefix:        v.GetString("S3_PREFIX"),
			},
		},
		Send: SendConfig{
			Strategy:         strings.ToLower(v.GetString("SEND_STRATEGY")),
			Endpoint:         firstNonEmpty(v.GetString("SEND_ENDPOINT"), v.GetString("NETCORE_SEND_URL")),
			APIKey:           firstNonEmpty(v.GetString("SEND_API_KEY"), v.GetString("NETCORE_API_KEY")),
			FromEmail:        v.GetString("FROM_EMAIL"),
			FromName:         v.GetString("FROM_NAME"),
			DefaultRecipient: firstNonEmpty(v.GetString("SEND_DEFAULT_TEST_TO"), v.GetString("DEFAULT_TEST_TO")),
			Timeout:          v.GetDuration("SEND_TIMEOUT"),
			SMTP: SMTPConfig{
				Host:      v.GetString("SMTP_HOST"),
				Port:      v.GetInt("SMTP_PORT"),
				Username:  v.GetString("SMTP_USERNAME"),
				Password:  v.GetString("SMTP_PASSWORD"),
				TLSPolicy: strings.ToLower(v.GetString("SMTP_TLS_POLICY")),
			},
			SES: SESConfig{
				Region:    v.GetString("SES_REGION"),
				AccessKey: v.GetString("SES_ACCESS_KEY"),
				SecretKey: v.GetString("SES_SECRET_KEY"),
			},
		},
		Security: SecurityConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			SendLimit:  v.GetInt("SEND_RATE_LIMIT"),
			SendWindow: v.GetDuration("SEND_RATE_WINDOW"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			Environment:         environment,

			TraceExporter: v.GetString("TRACING_TRACE_EXPORTER"),

			JaegerEndpoint:       v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:       v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			StackdriverProjectID: v.GetString("TRACING_STACKDRIVER_PROJECT_ID"),
			DatadogAgentAddress:  v.GetString("TRACING_DATADOG_AGENT_ADDRESS"),
			DatadogAPIKey:        v.GetString("TRACING_DATADOG_API_KEY"),
			XRayRegion:           v.GetString("TRACING_XRAY_REGION"),

			MetricsExporter: v.GetString("TRACING_METRICS_EXPORTER"),
			PrometheusPort:  v.GetInt("TRACING_PROMETHEUS_PORT"),
		},
		Environment: environment,
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     VERSION,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects unknown collaborator kinds. Missing credentials are not
// an error here: they surface when the collaborator is used.
func (c *Config) Validate() error {
	switch c.Hosting.Kind {
	case "cloudinary", "s3", "none":
	default:
		return fmt.Errorf("HOSTING_KIND must be one of cloudinary, s3, none, got %q", c.Hosting.Kind)
	}
	switch c.Send.Strategy {
	case "netcore_v6", "netcore_legacy", "smtp", "ses":
	default:
		return fmt.Errorf("SEND_STRATEGY must be one of netcore_v6, netcore_legacy, smtp, ses, got %q", c.Send.Strategy)
	}
	switch c.Send.SMTP.TLSPolicy {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("SMTP_TLS_POLICY must be one of mandatory, opportunistic, none, got %q", c.Send.SMTP.TLSPolicy)
	}
	if c.Hosting.Timeout <= 0 || c.Send.Timeout <= 0 {
		return fmt.Errorf("HOSTING_TIMEOUT and SEND_TIMEOUT must be positive")
	}
	return nil
}

// MissingSettings lists the settings the selected send strategy still needs
func (s SendConfig) MissingSettings() []string {
	var missing []string
	if s.FromEmail == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	switch s.Strategy {
	case "netcore_v6", "netcore_legacy":
		if s.Endpoint == "" {
			missing = append(missing, "SEND_ENDPOINT")
		}
		if s.APIKey == "" {
			missing = append(missing, "SEND_API_KEY")
		}
	case "smtp":
		if s.SMTP.Host == "" {
			missing = append(missing, "SMTP_HOST")
		}
	case "ses":
		if s.SES.Region == "" {
			missing = append(missing, "SES_REGION")
		}
	}
	return missing
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
