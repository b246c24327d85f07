package config

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc returns the value of a named setting and whether it is set.
type LookupFunc func(name string) (string, bool)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup, so settings can come from a
// map in tests or tools. Empty values count as unset.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields using their env tags:
//
//	env      primary variable name
//	envAlt   fallback variable name
//	default  value used when neither is set
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value := lookupValue(lookup, name, field.Tag.Get("envAlt"))
		if value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

// lookupValue returns the trimmed value of name, falling back to alt.
func lookupValue(lookup LookupFunc, name, alt string) string {
	for _, key := range []string{name, alt} {
		if key == "" {
			continue
		}
		if v, ok := lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

	case field.Kind() == reflect.String:
		field.SetString(value)

	case field.Kind() == reflect.Int, field.Kind() == reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		field.Set(reflect.ValueOf(splitList(value)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Store validation
	switch strings.ToLower(c.Store.Backend) {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when STORE_BACKEND is postgres")
		}
		if c.Store.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Store.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Store.MaxConns < c.Store.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Store.MaxConns, c.Store.MinConns))
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, "REDIS_URL is required when STORE_BACKEND is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND (%q) must be one of: memory, postgres, redis", c.Store.Backend))
	}

	// Sheet validation
	if c.Sheet.MaxBytes <= 0 {
		errs = append(errs, "SHEET_MAX_BYTES must be positive")
	}
	if c.Sheet.Timeout <= 0 {
		errs = append(errs, "SHEET_TIMEOUT must be positive")
	}
	if c.Sheet.SyncInterval < 0 {
		errs = append(errs, "SHEET_SYNC_INTERVAL must be non-negative")
	}

	// Telegram validation
	if c.Telegram.SyncInterval < 0 {
		errs = append(errs, "TELEGRAM_SYNC_INTERVAL must be non-negative")
	}
	if c.Telegram.Timeout <= 0 {
		errs = append(errs, "TELEGRAM_TIMEOUT must be positive")
	}

	// Assistant validation
	if c.Assistant.Timeout <= 0 {
		errs = append(errs, "GEMINI_TIMEOUT must be positive")
	}

	// Admin validation
	if c.Admin.Login == "" || c.Admin.Password == "" {
		errs = append(errs, "ADMIN_LOGIN and ADMIN_PASSWORD must not be empty")
	}
	if c.Admin.SessionTTL <= 0 {
		errs = append(errs, "ADMIN_SESSION_TTL must be positive")
	}

	// Shop validation
	if _, err := c.Shop.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("SHOP_TIMEZONE (%q) is not a known time zone", c.Shop.Timezone))
	}
	if c.Shop.PageSize <= 0 {
		errs = append(errs, "SHOP_PAGE_SIZE must be positive")
	}
	if c.Shop.SyncMaxWait <= 0 {
		errs = append(errs, "SYNC_MAX_WAIT must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled {
		if c.Rate.RequestsPerMinute <= 0 {
			errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		}
		if c.Rate.Burst <= 0 {
			errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
		}
		if c.Rate.AssistantPerMinute <= 0 {
			errs = append(errs, "RATE_LIMIT_ASSISTANT must be positive when rate limiting is enabled")
		}
	}

	// Security validation
	for _, cidr := range c.Security.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is not a CIDR", cidr))
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Warnings lists settings that are valid but unsafe for production.
func (c *Config) Warnings() []string {
	var warns []string
	if c.Admin.Login == "1" && c.Admin.Password == "1" {
		warns = append(warns, "ADMIN_LOGIN and ADMIN_PASSWORD use the built-in defaults")
	}
	if c.Admin.SessionSecret == "" {
		warns = append(warns, "ADMIN_SESSION_SECRET is empty; admin sessions end on restart")
	}
	if strings.ToLower(c.Store.Backend) == BackendMemory {
		warns = append(warns, "STORE_BACKEND is memory; shop state is lost on restart")
	}
	return warns
}

// String returns a safe string representation of the config for logging.
// Sensitive values like URLs with credentials, tokens and passwords are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Store: {Backend: %q, DatabaseURL: %s, RedisURL: %s, MaxConns: %d}, ",
		c.Store.Backend, mask(c.Store.DatabaseURL), mask(c.Store.RedisURL), c.Store.MaxConns))
	b.WriteString(fmt.Sprintf("Sheet: {URL: %q, SyncOnStart: %v, SyncInterval: %s}, ",
		c.Sheet.URL, c.Sheet.SyncOnStart, c.Sheet.SyncInterval))
	b.WriteString(fmt.Sprintf("Telegram: {Token: %s, ChatID: %q, SyncInterval: %s}, ",
		mask(c.Telegram.Token), c.Telegram.ChatID, c.Telegram.SyncInterval))
	b.WriteString(fmt.Sprintf("Assistant: {APIKey: %s, TextModel: %q, TTSModel: %q}, ",
		mask(c.Assistant.APIKey), c.Assistant.TextModel, c.Assistant.TTSModel))
	b.WriteString(fmt.Sprintf("Admin: {Login: %q, Password: %s, SessionTTL: %s}, ",
		c.Admin.Login, mask(c.Admin.Password), c.Admin.SessionTTL))
	b.WriteString(fmt.Sprintf("Shop: {Timezone: %q, PageSize: %d}, ", c.Shop.Timezone, c.Shop.PageSize))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d, Burst: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[EMPTY]"
	}
	return "[MASKED]"
}
