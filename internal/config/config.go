// Package config loads dashboard settings from environment variables.
// Every setting has a default except the user list; Load validates the whole
// configuration and reports every problem at once.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Upload   UploadConfig
	Session  SessionConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Charts   ChartConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"5000"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight uploads.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by the chi Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DataConfig locates datasets on disk.
type DataConfig struct {
	// DefaultPath is the bundled sample used when no upload is active.
	DefaultPath string `env:"DATA_DEFAULT_PATH" default:"data/dowry_cases_sample.csv"`

	// UploadDir receives uploaded CSV files. Created on startup.
	UploadDir string `env:"DATA_UPLOAD_DIR" envAlt:"UPLOAD_FOLDER" default:"uploads"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix (default: 16MB).
	MaxFileSize ByteSize `env:"UPLOAD_MAX_FILE_SIZE" default:"16MB"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"10s"`
	Timeout       time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	Lifetime    time.Duration `env:"SESSION_LIFETIME" default:"12h"`
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"1h"`
	CookieName  string        `env:"SESSION_COOKIE_NAME" default:"dowry_session"`

	// Secure marks the cookie HTTPS-only. Enable behind TLS.
	Secure bool `env:"SESSION_SECURE" default:"false"`
}

// AuthConfig lists dashboard accounts.
type AuthConfig struct {
	// Users is a comma-separated list of username:role:bcrypt-hash entries.
	Users string `env:"AUTH_USERS" required:"true"`
}

// DatabaseConfig holds optional PostgreSQL settings. When URL is empty,
// sessions and the activity log are kept in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit applies to POST /upload.
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`

	// LoginLimit applies to POST /login.
	LoginLimit int `env:"RATE_LIMIT_LOGIN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// APIKeys, when set, lets /api/* be called with an X-API-Key header
	// instead of a login session.
	APIKeys []string `env:"API_KEYS"`
}

// ChartConfig sets rendered chart size in pixels.
type ChartConfig struct {
	Width  int `env:"CHART_WIDTH" default:"720"`
	Height int `env:"CHART_HEIGHT" default:"400"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
