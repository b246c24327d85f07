// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
	_ "time/tzdata"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Sheet     SheetConfig
	Telegram  TelegramConfig
	Assistant AssistantConfig
	Admin     AdminConfig
	Shop      ShopConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 90s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 75s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"75s"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StoreConfig selects and configures the key-value state backend.
type StoreConfig struct {
	// Backend is memory, postgres or redis (default: memory)
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// DatabaseURL is the PostgreSQL connection string, required for postgres.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RedisURL is the Redis connection URL, required for redis
	RedisURL string `env:"REDIS_URL"`

	// KeyPrefix namespaces Redis keys (default: none)
	KeyPrefix string `env:"STORE_KEY_PREFIX"`

	// PurgeInterval is how often expired Postgres rows are deleted (default: 1h)
	PurgeInterval time.Duration `env:"STORE_PURGE_INTERVAL" default:"1h"`
}

// SheetConfig holds the catalog spreadsheet source settings.
type SheetConfig struct {
	// URL is the published CSV export of the catalog spreadsheet
	URL string `env:"SHEET_URL" default:"https://docs.google.com/spreadsheets/d/e/2PACX-1vT4TzjApZN_N7cAGmI7W-6t_J1OLlt_PCD9nAOxK0yKcUMmrfGSXfAPi14_E0G2sxgfxjdfblPr3LV-/pub?output=csv"`

	// SyncOnStart runs a catalog sync at startup (default: true)
	SyncOnStart bool `env:"SHEET_SYNC_ON_START" default:"true"`

	// SyncInterval is how often to re-sync the catalog; 0 disables (default: 0)
	SyncInterval time.Duration `env:"SHEET_SYNC_INTERVAL" default:"0s"`

	// MaxBytes caps the downloaded sheet size (default: 10MB)
	MaxBytes int64 `env:"SHEET_MAX_BYTES" default:"10485760"`

	// Timeout bounds one download (default: 30s)
	Timeout time.Duration `env:"SHEET_TIMEOUT" default:"30s"`

	// KeywordsFile overrides the built-in header keyword table (YAML)
	KeywordsFile string `env:"SHEET_KEYWORDS_FILE"`
}

// TelegramConfig holds the messaging bot settings.
type TelegramConfig struct {
	// APIURL is the Bot API base URL (default: https://api.telegram.org)
	APIURL string `env:"TELEGRAM_API_URL" default:"https://api.telegram.org"`

	// Token and ChatID seed the shop settings when none are saved yet
	Token  string `env:"TELEGRAM_TOKEN"`
	ChatID string `env:"TELEGRAM_CHAT_ID"`

	// SyncInterval is how often to import orders from the bot; 0 disables (default: 0)
	SyncInterval time.Duration `env:"TELEGRAM_SYNC_INTERVAL" default:"0s"`

	// Timeout bounds one Bot API call (default: 15s)
	Timeout time.Duration `env:"TELEGRAM_TIMEOUT" default:"15s"`
}

// AssistantConfig holds the generative AI settings.
type AssistantConfig struct {
	APIURL    string        `env:"GEMINI_API_URL" default:"https://generativelanguage.googleapis.com"`
	APIKey    string        `env:"GEMINI_API_KEY" envAlt:"API_KEY"`
	TextModel string        `env:"GEMINI_TEXT_MODEL" default:"gemini-3-flash-preview"`
	TTSModel  string        `env:"GEMINI_TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	Voice     string        `env:"GEMINI_VOICE" default:"Kore"`
	Timeout   time.Duration `env:"GEMINI_TIMEOUT" default:"60s"`
}

// AdminConfig holds back-office credentials and session settings.
type AdminConfig struct {
	// Login and Password are the admin credentials (default: 1 / 1).
	// Password may be given as a bcrypt hash.
	Login    string `env:"ADMIN_LOGIN" default:"1"`
	Password string `env:"ADMIN_PASSWORD" default:"1"`

	// SessionSecret signs session tokens; random per process when empty
	SessionSecret string `env:"ADMIN_SESSION_SECRET"`

	// SessionTTL is how long a login stays valid (default: 12h)
	SessionTTL time.Duration `env:"ADMIN_SESSION_TTL" default:"12h"`
}

// ShopConfig holds storefront settings.
type ShopConfig struct {
	// Timezone is the IANA zone order dates are shown in (default: Europe/Kyiv)
	Timezone string `env:"SHOP_TIMEZONE" default:"Europe/Kyiv"`

	// PageSize is the storefront page size (default: 12)
	PageSize int `env:"SHOP_PAGE_SIZE" default:"12"`

	// SyncMaxWait is how long a sync waits for a running one (default: 10s)
	SyncMaxWait time.Duration `env:"SYNC_MAX_WAIT" default:"10s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is the bucket size per IP (default: 30)
	Burst int `env:"RATE_LIMIT_BURST" default:"30"`

	// AssistantPerMinute is the rate per IP for AI endpoints (default: 10)
	AssistantPerMinute int `env:"RATE_LIMIT_ASSISTANT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// CORSAllowedOrigins is a comma-separated list of storefront origins (default: *)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location loads the shop time zone.
func (c *ShopConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
