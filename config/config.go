package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Zoom            ZoomConfig
	Mail            MailConfig
	DocumentStorage DocumentStorageConfig
	ReCAPTCHA       ReCAPTCHAConfig
	Session         SessionConfig
	Notifications   NotificationsConfig
	Reminders       RemindersConfig
	Logging         LoggingConfig
	Observability   ObservabilityConfig
	Profiling       ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// ZoomConfig holds the Server-to-Server OAuth credentials for the meeting
// provider. All three credentials are required; confirmation cannot provision
// meetings without them.
type ZoomConfig struct {
	ClientID        string
	ClientSecret    string
	AccountID       string
	APIBaseURL      string
	DefaultTimezone string
}

type MailConfig struct {
	APIKey      string
	APIBaseURL  string
	SenderEmail string
	SenderName  string
	QueueSize   int
	Workers     int
}

type DocumentStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type ReCAPTCHAConfig struct {
	SecretKey string
	SiteKey   string
}

type SessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

type NotificationsConfig struct {
	DedupTTLSeconds int
}

type RemindersConfig struct {
	Enabled      bool
	CronSchedule string
	LeadMinutes  int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://conectamentor.cl")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://conectamentor.cl,https://www.conectamentor.cl")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("ZOOM_API_BASE_URL", "https://api.zoom.us")
	v.SetDefault("ZOOM_DEFAULT_TIMEZONE", "America/Santiago")
	v.SetDefault("MAIL_API_BASE_URL", "https://api.brevo.com")
	v.SetDefault("MAIL_QUEUE_SIZE", 256)
	v.SetDefault("MAIL_QUEUE_WORKERS", 2)
	v.SetDefault("NOTIFICATION_DEDUP_TTL_SECONDS", 120)
	v.SetDefault("REMINDERS_ENABLED", true)
	v.SetDefault("REMINDERS_CRON", "*/5 * * * *")
	v.SetDefault("REMINDERS_LEAD_MINUTES", 60)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_BE_SERVICE_NAME", "mentoria-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "conectamentor")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "mentoria-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Session defaults
	v.SetDefault("JWT_ISSUER", "mentoria-api")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		Zoom: ZoomConfig{
			ClientID:        v.GetString("ZOOM_CLIENT_ID"),
			ClientSecret:    v.GetString("ZOOM_CLIENT_SECRET"),
			AccountID:       v.GetString("ZOOM_ACCOUNT_ID"),
			APIBaseURL:      v.GetString("ZOOM_API_BASE_URL"),
			DefaultTimezone: v.GetString("ZOOM_DEFAULT_TIMEZONE"),
		},
		Mail: MailConfig{
			APIKey:      v.GetString("MAIL_API_KEY"),
			APIBaseURL:  v.GetString("MAIL_API_BASE_URL"),
			SenderEmail: v.GetString("MAIL_SENDER_EMAIL"),
			SenderName:  v.GetString("MAIL_SENDER_NAME"),
			QueueSize:   v.GetInt("MAIL_QUEUE_SIZE"),
			Workers:     v.GetInt("MAIL_QUEUE_WORKERS"),
		},
		DocumentStorage: DocumentStorageConfig{
			AccessKeyID:     v.GetString("DOCS_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("DOCS_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("DOCS_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("DOCS_STORAGE_ENDPOINT"),
			Region:          v.GetString("DOCS_STORAGE_REGION"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_V2_SECRET_KEY"),
			SiteKey:   v.GetString("NEXT_PUBLIC_RECAPTCHA_V2_SITE_KEY"),
		},
		Session: SessionConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		Notifications: NotificationsConfig{
			DedupTTLSeconds: v.GetInt("NOTIFICATION_DEDUP_TTL_SECONDS"),
		},
		Reminders: RemindersConfig{
			Enabled:      v.GetBool("REMINDERS_ENABLED"),
			CronSchedule: v.GetString("REMINDERS_CRON"),
			LeadMinutes:  v.GetInt("REMINDERS_LEAD_MINUTES"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Meeting provider credentials. Confirmation provisions real Zoom
	// meetings, so an incomplete credential set is a startup failure naming
	// every missing variable, not a first-request surprise.
	var missing []string
	if c.Zoom.ClientID == "" {
		missing = append(missing, "ZOOM_CLIENT_ID")
	}
	if c.Zoom.ClientSecret == "" {
		missing = append(missing, "ZOOM_CLIENT_SECRET")
	}
	if c.Zoom.AccountID == "" {
		missing = append(missing, "ZOOM_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing meeting provider credentials: %s", strings.Join(missing, ", "))
	}
	if c.Zoom.APIBaseURL == "" {
		return fmt.Errorf("ZOOM_API_BASE_URL is required")
	}

	// ReCAPTCHA configuration
	if c.ReCAPTCHA.SecretKey == "" {
		return fmt.Errorf("RECAPTCHA_V2_SECRET_KEY is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Mail.QueueSize <= 0 || c.Mail.Workers <= 0 {
		return fmt.Errorf("MAIL_QUEUE_SIZE and MAIL_QUEUE_WORKERS must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// DedupTTL returns the notification dedup window as a duration.
func (c *Config) DedupTTL() time.Duration {
	return time.Duration(c.Notifications.DedupTTLSeconds) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
