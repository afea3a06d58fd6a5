package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Rate limit store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	// App
	Env       string
	LogLevel  string
	LogFormat string

	// Server
	ServerPort         int
	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	// Rate limiting
	RateLimitStore string
	Contact        LimitConfig
	Quote          LimitConfig

	// Redis
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Lead store (empty DatabaseURL keeps leads in memory)
	DatabaseURL  string
	DBMaxRetries int

	// Mail (empty SMTPHost disables notifications)
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	MailFrom          string
	MailTo            string
	MailRatePerSecond float64
	MailBurst         int

	// Admin (empty hash disables the admin API)
	AdminTokenHash string
}

// LimitConfig is the per-endpoint rate limit policy
type LimitConfig struct {
	Limit  int
	Window time.Duration
}

// IsProduction reports whether the app runs with production defaults
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) AdminEnabled() bool {
	return c.AdminTokenHash != ""
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_BODY_BYTES", 64*1024)
	v.SetDefault("RATE_LIMIT_STORE", StoreMemory)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONTACT_RATE_LIMIT", 5)
	v.SetDefault("CONTACT_RATE_WINDOW", "1m")
	v.SetDefault("QUOTE_RATE_LIMIT", 5)
	v.SetDefault("QUOTE_RATE_WINDOW", "15m")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_RATE_PER_SECOND", 2)
	v.SetDefault("MAIL_BURST", 5)
}

// Load reads an optional .env file and the environment
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the given env file if it exists, then the environment.
// Environment variables win over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Tenta ler .env (ignora erro se não existir, usa env vars)
	_ = v.ReadInConfig()

	contactWindow, err := parseDuration(v, "CONTACT_RATE_WINDOW")
	if err != nil {
		return nil, err
	}
	quoteWindow, err := parseDuration(v, "QUOTE_RATE_WINDOW")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		ServerPort:         v.GetInt("SERVER_PORT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MaxBodyBytes:       v.GetInt64("MAX_BODY_BYTES"),
		RateLimitStore:     strings.ToLower(strings.TrimSpace(v.GetString("RATE_LIMIT_STORE"))),
		Contact: LimitConfig{
			Limit:  v.GetInt("CONTACT_RATE_LIMIT"),
			Window: contactWindow,
		},
		Quote: LimitConfig{
			Limit:  v.GetInt("QUOTE_RATE_LIMIT"),
			Window: quoteWindow,
		},
		RedisHost:         v.GetString("REDIS_HOST"),
		RedisPort:         v.GetInt("REDIS_PORT"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBMaxRetries:      v.GetInt("DB_MAX_RETRIES"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUsername:      v.GetString("SMTP_USERNAME"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		MailFrom:          v.GetString("MAIL_FROM"),
		MailTo:            v.GetString("MAIL_TO"),
		MailRatePerSecond: v.GetFloat64("MAIL_RATE_PER_SECOND"),
		MailBurst:         v.GetInt("MAIL_BURST"),
		AdminTokenHash:    v.GetString("ADMIN_TOKEN_HASH"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and cross-field rules
func (c *Config) Validate() error {
	if c.ServerPort <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if c.Contact.Limit <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT must be positive")
	}
	if c.Contact.Window <= 0 {
		return fmt.Errorf("CONTACT_RATE_WINDOW must be positive")
	}
	if c.Quote.Limit <= 0 {
		return fmt.Errorf("QUOTE_RATE_LIMIT must be positive")
	}
	if c.Quote.Window <= 0 {
		return fmt.Errorf("QUOTE_RATE_WINDOW must be positive")
	}

	switch c.RateLimitStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required when RATE_LIMIT_STORE=redis")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.RateLimitStore)
	}

	if c.DBMaxRetries < 0 {
		return fmt.Errorf("DB_MAX_RETRIES cannot be negative")
	}

	if c.MailEnabled() {
		if c.MailFrom == "" || c.MailTo == "" {
			return fmt.Errorf("MAIL_FROM and MAIL_TO are required when SMTP_HOST is set")
		}
		if c.SMTPPort <= 0 {
			return fmt.Errorf("SMTP_PORT must be positive")
		}
		if c.MailRatePerSecond <= 0 || c.MailBurst <= 0 {
			return fmt.Errorf("MAIL_RATE_PER_SECOND and MAIL_BURST must be positive")
		}
	}
	return nil
}

// parseDuration rejects values time.ParseDuration cannot read instead of
// silently falling back to zero
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 1m or 900s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
